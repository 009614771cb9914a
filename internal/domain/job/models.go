package job

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Table is the record store table for jobs.
const Table = "jobs"

// Status is the lifecycle state of a job. Transitions are owner-driven;
// there is no automatic expiry.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCanceled   Status = "canceled"
)

// Domain errors
var (
	ErrJobNotFound   = errors.New("job not found")
	ErrForbidden     = errors.New("access forbidden")
	ErrInvalidStatus = errors.New("invalid job status")
	ErrInvalidAmount = errors.New("job amount must not be negative")
)

// Job represents a unit of paid work for a client.
type Job struct {
	ID          string          `json:"id"`
	OwnerID     int64           `json:"owner_id"`
	ClientID    string          `json:"client_id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      Status          `json:"status"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Location    string          `json:"location,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StatusChangedEvent is published after every persisted job write.
// Previous is empty on creation. Subscribers decide whether the
// transition concerns them.
type StatusChangedEvent struct {
	Job      Job
	Previous Status
}

// CreateParams contains parameters for creating a job.
type CreateParams struct {
	OwnerID     int64
	ClientID    string
	Amount      decimal.Decimal
	Status      Status
	Date        time.Time
	Description string
	Location    string
}

func (p CreateParams) Validate() error {
	if p.OwnerID <= 0 {
		return errors.New("valid owner ID is required")
	}
	if p.ClientID == "" {
		return errors.New("client ID is required")
	}
	if p.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if p.Status != "" && !IsValidStatus(p.Status) {
		return ErrInvalidStatus
	}
	if p.Date.IsZero() {
		return errors.New("job date is required")
	}
	return nil
}

// UpdateParams contains the fields that may change on a job.
type UpdateParams struct {
	ClientID    *string
	Amount      *decimal.Decimal
	Status      *Status
	Date        *time.Time
	Description *string
	Location    *string
}

func (p UpdateParams) Validate() error {
	if p.Amount != nil && p.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if p.Status != nil && !IsValidStatus(*p.Status) {
		return ErrInvalidStatus
	}
	return nil
}

func IsValidStatus(s Status) bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}
