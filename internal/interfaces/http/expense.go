package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"brisa/internal/domain/expense"
	"brisa/internal/shared/middleware"
)

type ExpenseHandler struct {
	expenses *expense.Service
}

func NewExpenseHandler(expenses *expense.Service) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses}
}

// Request/Response DTOs

type CreateExpenseRequest struct {
	JobID       string          `json:"job_id"`
	CategoryID  string          `json:"category_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
}

type UpdateExpenseRequest struct {
	CategoryID  *string          `json:"category_id,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Date        *time.Time       `json:"date,omitempty"`
	Description *string          `json:"description,omitempty"`
}

// HandleExpenses routes collection requests based on method.
func (h *ExpenseHandler) HandleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListExpenses(w, r)
	case http.MethodPost:
		h.handleCreateExpense(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleExpenseByID routes requests for a specific expense.
func (h *ExpenseHandler) HandleExpenseByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGetExpense(w, r)
	case http.MethodPut:
		h.handleUpdateExpense(w, r)
	case http.MethodDelete:
		h.handleDeleteExpense(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ExpenseHandler) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	expenses, err := h.expenses.List(r.Context(), ownerID, r.URL.Query().Get("job_id"))
	if err != nil {
		log.Error().Err(err).Int64("owner_id", ownerID).Msg("failed to list expenses")
		http.Error(w, "Failed to list expenses", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(expenses)
}

func (h *ExpenseHandler) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.expenses.Create(r.Context(), expense.CreateParams{
		JobID:       req.JobID,
		OwnerID:     ownerID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, expense.ErrForbidden) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *ExpenseHandler) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	e, err := h.expenses.Get(r.Context(), r.PathValue("id"), ownerID)
	if err != nil {
		writeExpenseError(w, err, ownerID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(e)
}

func (h *ExpenseHandler) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.expenses.Update(r.Context(), r.PathValue("id"), ownerID, expense.UpdateParams{
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, expense.ErrInvalidAmount) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeExpenseError(w, err, ownerID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *ExpenseHandler) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.expenses.Delete(r.Context(), r.PathValue("id"), ownerID); err != nil {
		writeExpenseError(w, err, ownerID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeExpenseError(w http.ResponseWriter, err error, ownerID int64) {
	switch {
	case errors.Is(err, expense.ErrExpenseNotFound):
		http.Error(w, "Expense not found", http.StatusNotFound)
	case errors.Is(err, expense.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		log.Error().Err(err).Int64("owner_id", ownerID).Msg("expense request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
