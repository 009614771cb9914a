package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"brisa/internal/domain/category"
	"brisa/internal/shared/middleware"
)

type CategoryHandler struct {
	categories *category.Service
}

func NewCategoryHandler(categories *category.Service) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// HandleCategories routes collection requests based on method.
func (h *CategoryHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListCategories(w, r)
	case http.MethodPost:
		h.handleCreateCategory(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleCategoryByID routes requests for a specific category.
func (h *CategoryHandler) HandleCategoryByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGetCategory(w, r)
	case http.MethodDelete:
		h.handleDeleteCategory(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CategoryHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	categories, err := h.categories.List(r.Context(), ownerID)
	if err != nil {
		log.Error().Err(err).Int64("owner_id", ownerID).Msg("failed to list categories")
		http.Error(w, "Failed to list categories", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(categories)
}

func (h *CategoryHandler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.categories.Create(r.Context(), category.CreateParams{
		OwnerID: ownerID,
		Name:    req.Name,
		Type:    category.Type(req.Type),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *CategoryHandler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	c, err := h.categories.Get(r.Context(), r.PathValue("id"), ownerID)
	if err != nil {
		writeCategoryError(w, err, ownerID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

func (h *CategoryHandler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.categories.Delete(r.Context(), r.PathValue("id"), ownerID); err != nil {
		writeCategoryError(w, err, ownerID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeCategoryError(w http.ResponseWriter, err error, ownerID int64) {
	switch {
	case errors.Is(err, category.ErrCategoryNotFound):
		http.Error(w, "Category not found", http.StatusNotFound)
	case errors.Is(err, category.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		log.Error().Err(err).Int64("owner_id", ownerID).Msg("category request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
