package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"brisa/internal/domain/client"
	"brisa/internal/shared/middleware"
)

type ClientHandler struct {
	clients *client.Service
}

func NewClientHandler(clients *client.Service) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// Request/Response DTOs

type CreateClientRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type UpdateClientRequest struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// HandleClients routes collection requests based on method.
func (h *ClientHandler) HandleClients(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListClients(w, r)
	case http.MethodPost:
		h.handleCreateClient(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleClientByID routes requests for a specific client.
func (h *ClientHandler) HandleClientByID(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGetClient(w, r)
	case http.MethodPut:
		h.handleUpdateClient(w, r)
	case http.MethodDelete:
		h.handleDeleteClient(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ClientHandler) handleListClients(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	clients, err := h.clients.List(r.Context(), ownerID)
	if err != nil {
		log.Error().Err(err).Int64("owner_id", ownerID).Msg("failed to list clients")
		http.Error(w, "Failed to list clients", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(clients)
}

func (h *ClientHandler) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.clients.Create(r.Context(), client.CreateParams{
		OwnerID: ownerID,
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *ClientHandler) handleGetClient(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	c, err := h.clients.Get(r.Context(), r.PathValue("id"), ownerID)
	if err != nil {
		writeClientError(w, err, ownerID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(c)
}

func (h *ClientHandler) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.clients.Update(r.Context(), r.PathValue("id"), ownerID, client.UpdateParams{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Notes:   req.Notes,
	})
	if err != nil {
		writeClientError(w, err, ownerID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *ClientHandler) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.clients.Delete(r.Context(), r.PathValue("id"), ownerID); err != nil {
		writeClientError(w, err, ownerID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeClientError(w http.ResponseWriter, err error, ownerID int64) {
	switch {
	case errors.Is(err, client.ErrClientNotFound):
		http.Error(w, "Client not found", http.StatusNotFound)
	case errors.Is(err, client.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	default:
		log.Error().Err(err).Int64("owner_id", ownerID).Msg("client request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
