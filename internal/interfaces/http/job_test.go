package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"brisa/internal/domain/category"
	"brisa/internal/domain/job"
	"brisa/internal/domain/ledger"
	"brisa/internal/domain/transaction"
	"brisa/internal/events"
	"brisa/internal/shared/middleware"
	"brisa/internal/store"
)

func TestJobCompletionOverHTTPWritesLedger(t *testing.T) {
	st := store.NewMemory()
	bus := events.NewBus()
	bus.Subscribe(ledger.NewSynchronizer(st, category.NewResolver(st), zerolog.Nop()).HandleEvent)
	handler := NewJobHandler(job.NewService(st, bus))

	mux := http.NewServeMux()
	mux.HandleFunc("/api/jobs", handler.HandleJobs)
	mux.HandleFunc("/api/jobs/{id}", handler.HandleJobByID)

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			json.NewEncoder(&buf).Encode(body)
		}
		req := httptest.NewRequest(method, path, &buf)
		req = req.WithContext(context.WithValue(req.Context(), middleware.OwnerIDKey, int64(1)))
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		return rr
	}

	rr := do(http.MethodPost, "/api/jobs", map[string]any{
		"client_id":   "c1",
		"amount":      150,
		"date":        time.Now().UTC().Format(time.RFC3339),
		"description": "Weekly clean",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var created job.Job
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}

	rr = do(http.MethodPut, "/api/jobs/"+created.ID, map[string]any{"status": "completed"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	data, err := st.FindWhere(context.Background(), transaction.Table, store.Filter{"job_id": created.ID})
	if err != nil {
		t.Fatalf("listing transactions failed: %v", err)
	}
	txs, err := store.Decode[transaction.Transaction](data)
	if err != nil {
		t.Fatalf("decoding transactions failed: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 derived transaction, got %d", len(txs))
	}
	if txs[0].Type != transaction.TypeIncome || !txs[0].Derived {
		t.Errorf("unexpected derived transaction: %+v", txs[0])
	}

	// Unknown status is rejected up front.
	rr = do(http.MethodPut, "/api/jobs/"+created.ID, map[string]any{"status": "paused"})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
