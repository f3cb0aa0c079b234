package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"

	"github.com/google/uuid"

	"github.com/wardenlabs/warden/internal/config"
)

// reminderMessages is the fixed pool the cron reminder picks from.
var reminderMessages = []struct {
	Title string
	Body  string
}{
	{"Approval checkup time", "Scan your wallet for risky token approvals before they bite."},
	{"Your trust score misses you", "It's been a while — rescan and revoke what you no longer use."},
	{"Spring-clean your approvals", "Unlimited allowances pile up. Two taps to revoke them."},
	{"Stay ahead of drainers", "Old approvals are an open door. Check yours now."},
}

// pushPayload is the notification body POSTed to a subscriber callback.
type pushPayload struct {
	NotificationID string   `json:"notificationId"`
	Title          string   `json:"title"`
	Body           string   `json:"body"`
	TargetURL      string   `json:"targetUrl"`
	Tokens         []string `json:"tokens"`
}

// Outcome aggregates one reminder run.
type Outcome struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Notifier pushes reminder notifications to subscribers.
type Notifier struct {
	store  Store
	client *http.Client
	log    *slog.Logger

	appURL string // notification tap target
	bulk   bool   // one provider call with all tokens instead of per-subscriber posts
}

// NewNotifier creates a notifier. In bulk mode every token goes out in
// a single request to the first subscriber's URL (the provider endpoint
// is shared); the default is one post per subscriber.
func NewNotifier(store Store, appURL string, bulk bool, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{
		store:  store,
		client: &http.Client{Timeout: config.PushTimeout},
		log:    log,
		appURL: appURL,
		bulk:   bulk,
	}
}

// Remind picks one message from the pool and pushes it to every
// subscriber. Subscribers without a stored token or URL are skipped;
// a failed post is counted and logged, never fatal.
func (n *Notifier) Remind(ctx context.Context) (*Outcome, error) {
	subs, err := n.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing subscribers: %w", err)
	}

	msg := reminderMessages[rand.IntN(len(reminderMessages))]
	out := &Outcome{}

	ready := make([]Subscriber, 0, len(subs))
	for _, sub := range subs {
		if sub.Token == "" || sub.URL == "" {
			out.Skipped++
			continue
		}
		ready = append(ready, sub)
	}
	if len(ready) == 0 {
		return out, nil
	}

	if n.bulk {
		tokens := make([]string, len(ready))
		for i, sub := range ready {
			tokens[i] = sub.Token
		}
		if err := n.post(ctx, ready[0].URL, ready[0].Token, msg.Title, msg.Body, tokens); err != nil {
			n.log.Warn("bulk push failed", "err", err, "subscribers", len(ready))
			out.Failed = len(ready)
		} else {
			out.Sent = len(ready)
		}
		return out, nil
	}

	for _, sub := range ready {
		if err := n.post(ctx, sub.URL, sub.Token, msg.Title, msg.Body, []string{sub.Token}); err != nil {
			n.log.Warn("push failed", "fid", sub.FID, "err", err)
			out.Failed++
			continue
		}
		out.Sent++
	}
	return out, nil
}

func (n *Notifier) post(ctx context.Context, url, bearer, title, body string, tokens []string) error {
	payload, err := json.Marshal(pushPayload{
		NotificationID: uuid.NewString(),
		Title:          title,
		Body:           body,
		TargetURL:      n.appURL,
		Tokens:         tokens,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("push endpoint returned HTTP %d", resp.StatusCode)
	}
	return nil
}
