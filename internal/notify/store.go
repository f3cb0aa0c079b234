// Package notify keeps the notification subscriber list and pushes
// reminder notifications to each subscriber's stored callback URL.
package notify

import (
	"context"
	"sort"
	"sync"
)

// Subscriber is one opted-in user: the Farcaster fid plus the
// notification token and callback URL delivered by the enable webhook.
type Subscriber struct {
	FID   int64
	Token string
	URL   string
}

// Store persists subscribers.
type Store interface {
	Upsert(ctx context.Context, sub Subscriber) error
	Delete(ctx context.Context, fid int64) error
	List(ctx context.Context) ([]Subscriber, error)
}

// MemStore is an in-memory Store (tests and local runs without a database).
type MemStore struct {
	mu   sync.Mutex
	subs map[int64]Subscriber
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{subs: make(map[int64]Subscriber)}
}

func (s *MemStore) Upsert(_ context.Context, sub Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.FID] = sub
	return nil
}

func (s *MemStore) Delete(_ context.Context, fid int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, fid)
	return nil
}

func (s *MemStore) List(_ context.Context) ([]Subscriber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FID < out[j].FID })
	return out, nil
}
