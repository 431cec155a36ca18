// Package wizard is the field-capture side of the evidence pipeline: it
// uploads each photo step by step, dispatches the analysis and tracks every
// item until its result is known.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/FelipeCgrillo/liquidapp/internal/event"
	"github.com/FelipeCgrillo/liquidapp/internal/models"

	"github.com/google/uuid"
)

type SlotKind int

const (
	SlotPending SlotKind = iota
	SlotNoResult
	SlotResolved
)

// AnalysisSlot is the analysis state of one item. Pending and NoResult are
// distinct: only the latter means the model ran and produced nothing usable.
type AnalysisSlot struct {
	kind   SlotKind
	result *models.AnalysisResult
}

func Pending() AnalysisSlot  { return AnalysisSlot{kind: SlotPending} }
func NoResult() AnalysisSlot { return AnalysisSlot{kind: SlotNoResult} }

// Resolved wraps a result. A nil result is treated as NoResult.
func Resolved(result *models.AnalysisResult) AnalysisSlot {
	if result == nil {
		return NoResult()
	}
	return AnalysisSlot{kind: SlotResolved, result: result}
}

func (s AnalysisSlot) Kind() SlotKind { return s.kind }

func (s AnalysisSlot) Result() (*models.AnalysisResult, bool) {
	return s.result, s.kind == SlotResolved
}

type ItemStatus string

const (
	StatusPendingUpload ItemStatus = "pending-upload"
	StatusAnalyzing     ItemStatus = "uploaded-analyzing"
	StatusResolved      ItemStatus = "resolved"
	StatusNoResult      ItemStatus = "no-result"
)

// EvidenceItem is the client view of one capture.
type EvidenceItem struct {
	LocalID    string
	Evidence   *models.Evidence
	Tag        string
	PreviewRef string
	Analyzing  bool
	Analysis   AnalysisSlot
}

func (i EvidenceItem) Status() ItemStatus {
	switch {
	case i.Evidence == nil:
		return StatusPendingUpload
	case i.Analysis.Kind() == SlotResolved:
		return StatusResolved
	case i.Analysis.Kind() == SlotNoResult:
		return StatusNoResult
	default:
		return StatusAnalyzing
	}
}

// Update is an analysis outcome for one evidence id. The synchronous HTTP
// response and the realtime channel both produce it.
type Update struct {
	EvidenceID uuid.UUID
	Slot       AnalysisSlot
}

// UpdateFromResponse converts a synchronous answer. A nil result becomes NoResult.
func UpdateFromResponse(evidenceID uuid.UUID, result *models.AnalysisResult) Update {
	return Update{EvidenceID: evidenceID, Slot: Resolved(result)}
}

func UpdateFromEvent(evt event.AnalysisEvent) Update {
	if evt.Type == event.AnalysisInserted && evt.Analysis != nil {
		return Update{EvidenceID: evt.EvidenceID, Slot: Resolved(evt.Analysis)}
	}
	return Update{EvidenceID: evt.EvidenceID, Slot: NoResult()}
}

var ErrUnknownItem = errors.New("unknown evidence item")

// StateMachine tracks the visible evidence set of one claim keyed by id, so
// several items can be in flight at once.
type StateMachine struct {
	mu        sync.Mutex
	items     []*EvidenceItem
	nextLocal int
	early     map[uuid.UUID]AnalysisSlot
	removed   map[uuid.UUID]bool
}

func NewStateMachine() *StateMachine {
	return &StateMachine{
		early:   make(map[uuid.UUID]AnalysisSlot),
		removed: make(map[uuid.UUID]bool),
	}
}

// Capture inserts the optimistic placeholder and returns its local id.
func (m *StateMachine) Capture(tag, previewRef string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextLocal++
	localID := fmt.Sprintf("temp-%d", m.nextLocal)
	m.items = append(m.items, &EvidenceItem{
		LocalID:    localID,
		Tag:        tag,
		PreviewRef: previewRef,
		Analyzing:  true,
		Analysis:   Pending(),
	})
	return localID
}

// UploadSucceeded swaps the placeholder for the server record. The preview
// reference is kept and any result that arrived first is applied.
func (m *StateMachine) UploadSucceeded(localID string, evidence *models.Evidence) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := m.findLocked(localID)
	if item == nil || item.Evidence != nil {
		return fmt.Errorf("%w: %s", ErrUnknownItem, localID)
	}

	item.Evidence = evidence
	if slot, ok := m.early[evidence.ID]; ok {
		delete(m.early, evidence.ID)
		m.applyLocked(item, slot)
	}
	return nil
}

// UploadFailed drops the placeholder so no phantom entry stays visible.
func (m *StateMachine) UploadFailed(localID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked(localID)
}

// ApplyAnalysis merges an outcome into the item with that server id. Later
// values win, except that NoResult never replaces a resolved analysis.
// Outcomes for ids not yet known are held until the upload completes.
func (m *StateMachine) ApplyAnalysis(evidenceID uuid.UUID, slot AnalysisSlot) bool {
	if slot.Kind() == SlotPending {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.removed[evidenceID] {
		return false
	}
	for _, item := range m.items {
		if item.Evidence != nil && item.Evidence.ID == evidenceID {
			m.applyLocked(item, slot)
			return true
		}
	}

	if prev, ok := m.early[evidenceID]; !ok || !(prev.Kind() == SlotResolved && slot.Kind() == SlotNoResult) {
		m.early[evidenceID] = slot
	}
	return false
}

func (m *StateMachine) Apply(u Update) bool {
	return m.ApplyAnalysis(u.EvidenceID, u.Slot)
}

func (m *StateMachine) applyLocked(item *EvidenceItem, slot AnalysisSlot) {
	if item.Analysis.Kind() == SlotResolved && slot.Kind() == SlotNoResult {
		return
	}
	item.Analysis = slot
	item.Analyzing = false
}

// Remove drops an item by local or server id (retake). The server row is kept.
func (m *StateMachine) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked(id)
}

func (m *StateMachine) removeLocked(id string) bool {
	for i, item := range m.items {
		if item.LocalID == id || (item.Evidence != nil && item.Evidence.ID.String() == id) {
			if item.Evidence != nil {
				m.removed[item.Evidence.ID] = true
			}
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true
		}
	}
	return false
}

func (m *StateMachine) findLocked(localID string) *EvidenceItem {
	for _, item := range m.items {
		if item.LocalID == localID {
			return item
		}
	}
	return nil
}

// Items returns a snapshot in capture order.
func (m *StateMachine) Items() []EvidenceItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]EvidenceItem, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, *item)
	}
	return out
}

// CanAdvance holds when every required tag has at least one item and every
// visible item carrying that tag is resolved. A duplicate capture still
// analyzing or without result blocks the gate until it settles or is removed.
func (m *StateMachine) CanAdvance(requiredTags []string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, tag := range requiredTags {
		found := false
		for _, item := range m.items {
			if item.Tag != tag {
				continue
			}
			if item.Status() != StatusResolved {
				return false
			}
			found = true
		}
		if !found {
			return false
		}
	}
	return true
}

// Unsettled reports how many items have no final analysis state yet.
func (m *StateMachine) Unsettled() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, item := range m.items {
		if s := item.Status(); s == StatusPendingUpload || s == StatusAnalyzing {
			n++
		}
	}
	return n
}

// Run applies updates until the channel closes or ctx ends.
func (m *StateMachine) Run(ctx context.Context, updates <-chan Update) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			m.Apply(u)
		}
	}
}

// RequiredViews are the four photos a claim needs before the wizard moves on.
var RequiredViews = []string{"frontal", "lateral_derecho", "trasera", "lateral_izquierdo"}
