package notify

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the Postgres-backed Store.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects a pool to databaseURL and verifies it with a ping.
func NewPGStore(ctx context.Context, databaseURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// Migrate creates the subscribers table if it does not exist.
func (s *PGStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS subscribers (
			fid        BIGINT PRIMARY KEY,
			token      TEXT,
			url        TEXT,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("creating subscribers table: %w", err)
	}
	return nil
}

func (s *PGStore) Upsert(ctx context.Context, sub Subscriber) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO subscribers (fid, token, url, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (fid) DO UPDATE
		SET token = EXCLUDED.token, url = EXCLUDED.url, updated_at = now()`,
		sub.FID, sub.Token, sub.URL)
	if err != nil {
		return fmt.Errorf("upserting subscriber %d: %w", sub.FID, err)
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, fid int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM subscribers WHERE fid = $1`, fid)
	if err != nil {
		return fmt.Errorf("deleting subscriber %d: %w", fid, err)
	}
	return nil
}

func (s *PGStore) List(ctx context.Context) ([]Subscriber, error) {
	rows, err := s.pool.Query(ctx, `SELECT fid, token, url FROM subscribers ORDER BY fid`)
	if err != nil {
		return nil, fmt.Errorf("listing subscribers: %w", err)
	}
	defer rows.Close()

	var out []Subscriber
	for rows.Next() {
		var sub Subscriber
		var token, url *string
		if err := rows.Scan(&sub.FID, &token, &url); err != nil {
			return nil, fmt.Errorf("scanning subscriber: %w", err)
		}
		if token != nil {
			sub.Token = *token
		}
		if url != nil {
			sub.URL = *url
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// Close releases the pool.
func (s *PGStore) Close() {
	s.pool.Close()
}
