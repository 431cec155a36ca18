package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var errNoKeys = errors.New("no Gemini API keys available")

// keyRing rotates calls across one client per API key. A key that fails is
// benched for cooldown; benched keys are only tried when every key is benched.
type keyRing struct {
	mu       sync.Mutex
	clients  []*GeminiClient
	benched  []time.Time
	next     int
	cooldown time.Duration
	now      func() time.Time
}

func newKeyRing(clients []*GeminiClient, cooldown time.Duration) *keyRing {
	return &keyRing{
		clients:  clients,
		benched:  make([]time.Time, len(clients)),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// order returns every key index once, healthy keys first, starting at the
// rotation cursor.
func (r *keyRing) order() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.clients)
	now := r.now()
	healthy := make([]int, 0, n)
	var resting []int
	for i := 0; i < n; i++ {
		idx := (r.next + i) % n
		if now.Before(r.benched[idx]) {
			resting = append(resting, idx)
			continue
		}
		healthy = append(healthy, idx)
	}
	if n > 0 {
		r.next = (r.next + 1) % n
	}
	return append(healthy, resting...)
}

func (r *keyRing) bench(idx int) {
	r.mu.Lock()
	r.benched[idx] = r.now().Add(r.cooldown)
	r.mu.Unlock()
}

func (r *keyRing) restore(idx int) {
	r.mu.Lock()
	r.benched[idx] = time.Time{}
	r.mu.Unlock()
}

// do stops at the first success. Cancellation is returned as is and does not
// bench the key that was in use.
func (r *keyRing) do(ctx context.Context, call func(*GeminiClient) error) error {
	indexes := r.order()
	if len(indexes) == 0 {
		return errNoKeys
	}

	var lastErr error
	for attempt, idx := range indexes {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := call(r.clients[idx])
		if err == nil {
			r.restore(idx)
			return nil
		}
		if ctx.Err() != nil {
			return err
		}

		lastErr = err
		r.bench(idx)
		slog.Warn("Gemini key failed, rotating",
			"key_index", idx,
			"attempt", attempt+1,
			"error", err)
	}

	return fmt.Errorf("all %d Gemini keys failed: %w", len(indexes), lastErr)
}

func (r *keyRing) each(fn func(*GeminiClient)) {
	for _, c := range r.clients {
		fn(c)
	}
}
