package client

import (
	"errors"
	"time"
)

// Table is the record store table for clients.
const Table = "clients"

// Domain errors
var (
	ErrClientNotFound = errors.New("client not found")
	ErrForbidden      = errors.New("access forbidden")
)

// Client is an entry in the owner's client book. Jobs reference clients
// by ID; deleting a client leaves its jobs in place.
type Client struct {
	ID        string    `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateParams contains parameters for creating a client.
type CreateParams struct {
	OwnerID int64
	Name    string
	Phone   string
	Email   string
	Address string
	Notes   string
}

func (p CreateParams) Validate() error {
	if p.OwnerID <= 0 {
		return errors.New("valid owner ID is required")
	}
	if p.Name == "" {
		return errors.New("client name is required")
	}
	return nil
}

// UpdateParams contains the fields that may change on a client.
type UpdateParams struct {
	Name    *string
	Phone   *string
	Email   *string
	Address *string
	Notes   *string
}

func (p UpdateParams) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return errors.New("client name must not be empty")
	}
	return nil
}
