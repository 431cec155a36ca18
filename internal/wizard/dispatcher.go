package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/FelipeCgrillo/liquidapp/internal/models"

	"github.com/google/uuid"
)

type inflight struct {
	seq    uint64
	cancel context.CancelFunc
}

// Dispatcher sends queued analysis requests in the background. A newer
// dispatch for the same evidence id cancels the older request; the server
// may still finish the older job, the client just stops waiting for it.
type Dispatcher struct {
	analyzer Analyzer
	base     context.Context
	onError  func(evidenceID uuid.UUID, err error)

	mu       sync.Mutex
	seq      uint64
	inflight map[uuid.UUID]inflight
	wg       sync.WaitGroup
}

// NewDispatcher binds dispatches to base. onError receives failures of
// requests that were not superseded; it may be nil.
func NewDispatcher(base context.Context, analyzer Analyzer, onError func(evidenceID uuid.UUID, err error)) *Dispatcher {
	return &Dispatcher{
		analyzer: analyzer,
		base:     base,
		onError:  onError,
		inflight: make(map[uuid.UUID]inflight),
	}
}

func (d *Dispatcher) Dispatch(req models.AnalyzeEvidenceRequest) error {
	evidenceID, err := uuid.Parse(req.EvidenceID)
	if err != nil {
		return fmt.Errorf("invalid evidence id %q: %w", req.EvidenceID, err)
	}
	if err := d.base.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(d.base)

	d.mu.Lock()
	if prev, ok := d.inflight[evidenceID]; ok {
		prev.cancel()
		slog.Debug("Superseded queued analysis", "evidence_id", evidenceID)
	}
	d.seq++
	seq := d.seq
	d.inflight[evidenceID] = inflight{seq: seq, cancel: cancel}
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()

		err := d.analyzer.AnalyzeQueued(ctx, req)

		d.mu.Lock()
		current := d.inflight[evidenceID].seq == seq
		if current {
			delete(d.inflight, evidenceID)
		}
		d.mu.Unlock()

		if err == nil || !current || errors.Is(err, context.Canceled) {
			return
		}
		if d.onError != nil {
			d.onError(evidenceID, err)
		}
	}()

	return nil
}

// InFlight is the number of requests still waiting for the server.
func (d *Dispatcher) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inflight)
}

// Wait blocks until every dispatched request returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
