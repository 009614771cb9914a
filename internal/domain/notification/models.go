package notification

import (
	"context"
	"errors"
	"time"
)

// Table is the record store table for device tokens.
const Table = "device_tokens"

var ErrInvalidToken = errors.New("device token is required")

// DeviceToken is one registered push target for an owner. Owners can
// hold several, one per signed-in device.
type DeviceToken struct {
	ID        string    `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Token     string    `json:"token"`
	Platform  string    `json:"platform,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Messenger delivers push notifications. The Firebase client satisfies
// this; tests substitute their own.
type Messenger interface {
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}
