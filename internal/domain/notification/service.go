package notification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"brisa/internal/domain/job"
	"brisa/internal/store"
)

// Service registers device tokens and pushes a note to the owner's
// devices when a job is marked completed. Push delivery is best-effort;
// a messenger failure never reaches the caller.
type Service struct {
	store     store.Store
	messenger Messenger
	log       zerolog.Logger
}

// NewService accepts a nil messenger, in which case pushes are skipped.
// Device registration keeps working so tokens are ready once push
// credentials are configured.
func NewService(st store.Store, messenger Messenger, log zerolog.Logger) *Service {
	return &Service{store: st, messenger: messenger, log: log}
}

// RegisterDevice stores a push token for the owner. Re-registering the
// same token replaces the old row instead of stacking duplicates.
func (s *Service) RegisterDevice(ctx context.Context, ownerID int64, token, platform string) (*DeviceToken, error) {
	if ownerID <= 0 {
		return nil, fmt.Errorf("valid owner ID is required")
	}
	if token == "" {
		return nil, ErrInvalidToken
	}

	existing, err := s.tokensFor(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, dt := range existing {
		if dt.Token == token {
			if _, err := s.store.Delete(ctx, Table, dt.ID); err != nil {
				return nil, fmt.Errorf("failed to replace device token: %w", err)
			}
		}
	}

	dt := DeviceToken{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Token:     token,
		Platform:  platform,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.store.Create(ctx, Table, dt); err != nil {
		return nil, fmt.Errorf("failed to register device token: %w", err)
	}
	return &dt, nil
}

// UnregisterDevice drops a token, typically on sign-out.
func (s *Service) UnregisterDevice(ctx context.Context, ownerID int64, token string) error {
	existing, err := s.tokensFor(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, dt := range existing {
		if dt.Token == token {
			if _, err := s.store.Delete(ctx, Table, dt.ID); err != nil {
				return fmt.Errorf("failed to unregister device token: %w", err)
			}
		}
	}
	return nil
}

// HandleEvent pushes a completion note when a job transitions into
// completed. Edits to an already completed job stay quiet.
func (s *Service) HandleEvent(ctx context.Context, event any) {
	e, ok := event.(job.StatusChangedEvent)
	if !ok {
		return
	}
	if e.Job.Status != job.StatusCompleted || e.Previous == job.StatusCompleted {
		return
	}
	if s.messenger == nil {
		return
	}

	tokens, err := s.tokensFor(ctx, e.Job.OwnerID)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load device tokens")
		return
	}
	if len(tokens) == 0 {
		return
	}

	values := make([]string, len(tokens))
	for i, dt := range tokens {
		values[i] = dt.Token
	}

	body := fmt.Sprintf("%s was completed for %s", e.Job.Description, e.Job.Amount.StringFixed(2))
	if e.Job.Description == "" {
		body = "A job was completed for " + e.Job.Amount.StringFixed(2)
	}
	data := map[string]string{
		"job_id": e.Job.ID,
		"amount": e.Job.Amount.String(),
	}
	if err := s.messenger.SendMulticast(ctx, values, "Job completed", body, data); err != nil {
		s.log.Error().Err(err).Str("job_id", e.Job.ID).Msg("failed to push completion notification")
	}
}

func (s *Service) tokensFor(ctx context.Context, ownerID int64) ([]DeviceToken, error) {
	data, err := s.store.FindWhere(ctx, Table, store.Filter{
		"owner_id": strconv.FormatInt(ownerID, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	return store.Decode[DeviceToken](data)
}
