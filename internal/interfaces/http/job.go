package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"brisa/internal/domain/job"
	"brisa/internal/shared/middleware"
)

type JobHandler struct {
	jobs *job.Service
}

func NewJobHandler(jobs *job.Service) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// Request/Response DTOs

type CreateJobRequest struct {
	ClientID    string          `json:"client_id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status,omitempty"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Location    string          `json:"location,omitempty"`
}

type UpdateJobRequest struct {
	ClientID    *string          `json:"client_id,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Status      *string          `json:"status,omitempty"`
	Date        *time.Time       `json:"date,omitempty"`
	Description *string          `json:"description,omitempty"`
	Location    *string          `json:"location,omitempty"`
}

// HandleJobs routes collection requests based on method.
func (h *JobHandler) HandleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListJobs(w, r)
	case http.MethodPost:
		h.handleCreateJob(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleJobByID routes requests for a specific job.
func (h *JobHandler) HandleJobByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGetJob(w, r)
	case http.MethodPut:
		h.handleUpdateJob(w, r)
	case http.MethodDelete:
		h.handleDeleteJob(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *JobHandler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	status := job.Status(r.URL.Query().Get("status"))
	jobs, err := h.jobs.List(r.Context(), ownerID, status)
	if err != nil {
		if errors.Is(err, job.ErrInvalidStatus) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Int64("owner_id", ownerID).Msg("failed to list jobs")
		http.Error(w, "Failed to list jobs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

func (h *JobHandler) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.jobs.Create(r.Context(), job.CreateParams{
		OwnerID:     ownerID,
		ClientID:    req.ClientID,
		Amount:      req.Amount,
		Status:      job.Status(req.Status),
		Date:        req.Date,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		if errors.Is(err, job.ErrInvalidStatus) || errors.Is(err, job.ErrInvalidAmount) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error().Err(err).Int64("owner_id", ownerID).Msg("failed to create job")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *JobHandler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	j, err := h.jobs.Get(r.Context(), r.PathValue("id"), ownerID)
	if err != nil {
		writeJobError(w, err, ownerID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(j)
}

func (h *JobHandler) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	params := job.UpdateParams{
		ClientID:    req.ClientID,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
		Location:    req.Location,
	}
	if req.Status != nil {
		status := job.Status(*req.Status)
		params.Status = &status
	}

	updated, err := h.jobs.Update(r.Context(), r.PathValue("id"), ownerID, params)
	if err != nil {
		if errors.Is(err, job.ErrInvalidStatus) || errors.Is(err, job.ErrInvalidAmount) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJobError(w, err, ownerID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *JobHandler) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.jobs.Delete(r.Context(), r.PathValue("id"), ownerID); err != nil {
		writeJobError(w, err, ownerID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJobError(w http.ResponseWriter, err error, ownerID int64) {
	switch {
	case errors.Is(err, job.ErrJobNotFound):
		http.Error(w, "Job not found", http.StatusNotFound)
	case errors.Is(err, job.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		log.Error().Err(err).Int64("owner_id", ownerID).Msg("job request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
