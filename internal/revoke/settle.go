package revoke

import (
	"context"
	"strings"
	"time"

	"github.com/wardenlabs/warden/internal/approvals"
	"github.com/wardenlabs/warden/internal/scan"
)

// Rescanner re-runs a wallet scan (satisfied by *scan.Scanner).
type Rescanner interface {
	Scan(ctx context.Context, address string) (*scan.Result, error)
}

// WaitSettled polls the index until none of the revoked approvals show
// up anymore, or retries are exhausted. Index lag right after a
// broadcast is normal, so every attempt (including the first) waits
// delay before scanning. It returns the freshest scan result and
// whether the revocations settled; scan errors count as an attempt and
// keep the previous result.
func WaitSettled(ctx context.Context, sc Rescanner, address string, revoked []approvals.Item, delay time.Duration, retries int) (*scan.Result, bool) {
	keys := make(map[string]struct{}, len(revoked))
	for _, it := range revoked {
		keys[settleKey(it)] = struct{}{}
	}

	var last *scan.Result
	for attempt := 0; attempt < retries; attempt++ {
		select {
		case <-ctx.Done():
			return last, false
		case <-time.After(delay):
		}

		res, err := sc.Scan(ctx, address)
		if err != nil {
			continue
		}
		last = res

		settled := true
		for _, it := range res.Items {
			if _, ok := keys[settleKey(it)]; ok {
				settled = false
				break
			}
		}
		if settled {
			return res, true
		}
	}
	return last, false
}

// settleKey identifies an approval across rescans. Item ids are scoped
// to one scan result, so the stable (token, spender) pair is the match
// key instead.
func settleKey(it approvals.Item) string {
	return strings.ToLower(it.TokenAddress) + "|" + strings.ToLower(it.SpenderAddr)
}
