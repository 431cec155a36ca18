package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/event"
	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/FelipeCgrillo/liquidapp/internal/utils"
	"github.com/FelipeCgrillo/liquidapp/internal/wizard"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// FAKE API
// ============================================================================

type fakeAPI struct {
	mu              sync.Mutex
	tags            map[uuid.UUID]string
	failMetadata    map[string]bool
	failSyncAnalyze map[string]bool
	queued          chan uuid.UUID
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		tags:            map[uuid.UUID]string{},
		failMetadata:    map[string]bool{},
		failSyncAnalyze: map[string]bool{},
		queued:          make(chan uuid.UUID, 16),
	}
}

func (f *fakeAPI) tagOf(id uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tags[id]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func resultFor(evidenceID uuid.UUID) *models.AnalysisResult {
	return &models.AnalysisResult{
		ID:         uuid.New(),
		EvidenceID: evidenceID,
		Severity:   models.SeverityModerate,
		FraudScore: 0.1,
		FraudLevel: models.FraudLow,
		CostMin:    120000,
		CostMax:    180000,
	}
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/storage/evidencias/{claim}/{name}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.StoreObjectResponse{Key: r.PathValue("claim") + "/" + r.PathValue("name")})
	})
	mux.HandleFunc("POST /api/evidencias", func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateEvidenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Description == nil {
			writeJSON(w, http.StatusBadRequest, utils.CreateErrorResponse("VALIDATION_ERROR", "bad request"))
			return
		}
		tag := *req.Description

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failMetadata[tag] {
			writeJSON(w, http.StatusInternalServerError, utils.CreateErrorResponse("PERSISTENCE_FAILED", "db down"))
			return
		}
		id := uuid.New()
		f.tags[id] = tag
		writeJSON(w, http.StatusCreated, models.CreateEvidenceResponse{Evidence: &models.Evidence{ID: id, StoragePath: req.StoragePath}})
	})
	mux.HandleFunc("GET /api/storage/signed-url", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.SignedURLResponse{SignedURL: "https://signed/" + r.URL.Query().Get("key"), ExpiresIn: 3600})
	})
	mux.HandleFunc("POST /api/analizar-evidencia", func(w http.ResponseWriter, r *http.Request) {
		var req models.AnalyzeEvidenceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		id := uuid.MustParse(req.EvidenceID)

		f.mu.Lock()
		fail := f.failSyncAnalyze[f.tags[id]]
		f.mu.Unlock()
		if fail {
			writeJSON(w, http.StatusInternalServerError, utils.CreateErrorResponse("AI_RESPONSE_UNPARSEABLE", "Respuesta de IA no parseable"))
			return
		}
		writeJSON(w, http.StatusOK, models.AnalyzeEvidenceResponse{Success: true, Analysis: resultFor(id)})
	})
	mux.HandleFunc("POST /api/queue-analisis", func(w http.ResponseWriter, r *http.Request) {
		var req models.AnalyzeEvidenceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.queued <- uuid.MustParse(req.EvidenceID)
		writeJSON(w, http.StatusAccepted, models.QueuedAnalysisResponse{Success: true, Message: "Análisis completado en background"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// pushEvents plays the server side of the realtime channel: every queued
// evidence settles with an inserted event, or a failed one for failTags.
func (f *fakeAPI) pushEvents(failTags ...string) eventFollower {
	return func(ctx context.Context, claimID uuid.UUID, updates chan<- wizard.Update) error {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case id := <-f.queued:
					evt := event.AnalysisEvent{Type: event.AnalysisInserted, EvidenceID: id, ClaimID: claimID, Analysis: resultFor(id)}
					for _, tag := range failTags {
						if f.tagOf(id) == tag {
							evt = event.AnalysisEvent{Type: event.AnalysisFailed, EvidenceID: id, ClaimID: claimID, Error: "timeout"}
						}
					}
					select {
					case updates <- wizard.UpdateFromEvent(evt):
					case <-ctx.Done():
						return
					}
				}
			}
		}()
		return nil
	}
}

func noEvents(context.Context, uuid.UUID, chan<- wizard.Update) error {
	return errors.New("redis unavailable")
}

// ============================================================================
// HELPERS
// ============================================================================

func writeCaptures(t *testing.T, tags ...string) []string {
	t.Helper()
	dir := t.TempDir()
	args := make([]string, 0, len(tags))
	for _, tag := range tags {
		path := filepath.Join(dir, tag+".jpg")
		require.NoError(t, os.WriteFile(path, []byte{0xFF, 0xD8, 0xFF, 0xE0}, 0o644))
		args = append(args, tag+"="+path)
	}
	return args
}

func useAPI(t *testing.T, server *httptest.Server) {
	t.Helper()
	viper.Set("api-url", server.URL)
	viper.Set("timeout", 5*time.Second)
}

// parseReport returns the status column per view and the gate line.
func parseReport(out string) (map[string]string, string) {
	states := map[string]string{}
	var gate string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "", strings.HasPrefix(line, "VISTA"):
		case strings.HasPrefix(line, "Las cuatro"), strings.HasPrefix(line, "Faltan"):
			gate = line
		default:
			fields := strings.Fields(line)
			if len(fields) >= 3 {
				states[fields[0]] = fields[2]
			}
		}
	}
	return states, gate
}

const gateOpen = "Las cuatro vistas requeridas están analizadas."

// ============================================================================
// SYNC MODE
// ============================================================================

func TestRunUpload_SyncAllViewsResolved(t *testing.T) {
	api := newFakeAPI()
	api.failMetadata["extra"] = true
	useAPI(t, api.server(t))

	args := writeCaptures(t, wizard.RequiredViews...)
	args = append(args, writeCaptures(t, "extra")...)
	args = append(args, "perdida="+filepath.Join(t.TempDir(), "no-existe.jpg"))

	var out bytes.Buffer
	opts := uploadOptions{claimID: uuid.NewString(), mode: "sync", concurrency: 3, wait: time.Second}
	require.NoError(t, runUpload(context.Background(), &out, opts, args, noEvents))

	states, gate := parseReport(out.String())
	assert.Equal(t, map[string]string{
		"frontal":           "resolved",
		"lateral_derecho":   "resolved",
		"trasera":           "resolved",
		"lateral_izquierdo": "resolved",
	}, states)
	assert.Equal(t, gateOpen, gate)
}

func TestRunUpload_SyncNoResultBlocksGate(t *testing.T) {
	api := newFakeAPI()
	api.failSyncAnalyze["trasera"] = true
	useAPI(t, api.server(t))

	var out bytes.Buffer
	opts := uploadOptions{claimID: uuid.NewString(), mode: "sync", concurrency: 2, wait: time.Second}
	require.NoError(t, runUpload(context.Background(), &out, opts, writeCaptures(t, wizard.RequiredViews...), noEvents))

	states, gate := parseReport(out.String())
	assert.Equal(t, "no-result", states["trasera"])
	assert.Equal(t, "resolved", states["frontal"])
	assert.True(t, strings.HasPrefix(gate, "Faltan vistas"), gate)
}

func TestRunUpload_RejectsBadInput(t *testing.T) {
	var out bytes.Buffer
	err := runUpload(context.Background(), &out, uploadOptions{claimID: "123", mode: "sync"}, []string{"a.jpg"}, noEvents)
	assert.Error(t, err)

	err = runUpload(context.Background(), &out, uploadOptions{claimID: uuid.NewString(), mode: "batch"}, []string{"a.jpg"}, noEvents)
	assert.Error(t, err)
	assert.Empty(t, out.String())
}

// ============================================================================
// QUEUED MODE
// ============================================================================

func TestRunUpload_QueuedSettlesFromEvents(t *testing.T) {
	api := newFakeAPI()
	useAPI(t, api.server(t))

	var out bytes.Buffer
	opts := uploadOptions{claimID: uuid.NewString(), mode: "queued", concurrency: 4, wait: 5 * time.Second}
	require.NoError(t, runUpload(context.Background(), &out, opts, writeCaptures(t, wizard.RequiredViews...), api.pushEvents("lateral_izquierdo")))

	states, gate := parseReport(out.String())
	assert.Equal(t, map[string]string{
		"frontal":           "resolved",
		"lateral_derecho":   "resolved",
		"trasera":           "resolved",
		"lateral_izquierdo": "no-result",
	}, states)
	assert.True(t, strings.HasPrefix(gate, "Faltan vistas"), gate)
}

func TestRunUpload_QueuedWithoutEventsStopsWaiting(t *testing.T) {
	api := newFakeAPI()
	useAPI(t, api.server(t))

	var out bytes.Buffer
	opts := uploadOptions{claimID: uuid.NewString(), mode: "queued", concurrency: 2, wait: 300 * time.Millisecond}
	require.NoError(t, runUpload(context.Background(), &out, opts, writeCaptures(t, "frontal", "trasera"), noEvents))

	states, gate := parseReport(out.String())
	assert.Equal(t, map[string]string{
		"frontal": "uploaded-analyzing",
		"trasera": "uploaded-analyzing",
	}, states)
	assert.True(t, strings.HasPrefix(gate, "Faltan vistas"), gate)
}
