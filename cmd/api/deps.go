package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"brisa/internal/domain/category"
	"brisa/internal/domain/client"
	"brisa/internal/domain/expense"
	"brisa/internal/domain/job"
	"brisa/internal/domain/ledger"
	"brisa/internal/domain/notification"
	"brisa/internal/domain/report"
	"brisa/internal/domain/transaction"
	"brisa/internal/events"
	"brisa/internal/infrastructure/firebase"
	"brisa/internal/infrastructure/postgres"
	"brisa/internal/infrastructure/supabase"
	httphandlers "brisa/internal/interfaces/http"
	"brisa/internal/shared/auth"
	"brisa/internal/shared/config"
	"brisa/internal/store"
)

// Dependencies holds all initialized application components.
type Dependencies struct {
	DB    *postgres.DB
	Store store.Store
	Bus   *events.Bus

	// Handlers
	JobHandler          *httphandlers.JobHandler
	ExpenseHandler      *httphandlers.ExpenseHandler
	TransactionHandler  *httphandlers.TransactionHandler
	CategoryHandler     *httphandlers.CategoryHandler
	ClientHandler       *httphandlers.ClientHandler
	ReportHandler       *httphandlers.ReportHandler
	NotificationHandler *httphandlers.NotificationHandler

	// Auth
	JWT *auth.JWT
}

// NewDependencies initializes the record store, the event bus, every
// domain service and the HTTP handlers, and subscribes the ledger
// synchronizer and the push notifier to the bus.
func NewDependencies(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Bus: events.NewBus()}

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		db, err := postgres.New(cfg.Store.Postgres.ConnectionString())
		if err != nil {
			return nil, err
		}
		deps.DB = db
		deps.Store = postgres.NewStore(db)
		logger.Info().Msg("Connected to Postgres store")
	case config.DriverSupabase:
		st, err := supabase.NewStore(cfg.Store.Supabase.URL, cfg.Store.Supabase.Key)
		if err != nil {
			return nil, err
		}
		deps.Store = st
		logger.Info().Msg("Connected to Supabase store")
	case config.DriverMemory:
		deps.Store = store.NewMemory()
		logger.Warn().Msg("Using in-memory store, data will not survive restarts")
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	// Push delivery is optional; without credentials the notification
	// service only manages device tokens.
	var messenger notification.Messenger
	if cfg.Firebase.CredentialsFile != "" {
		fcm, err := firebase.NewClient(ctx, cfg.Firebase.CredentialsFile)
		if err != nil {
			return nil, err
		}
		messenger = fcm
		logger.Info().Msg("Firebase messaging initialized")
	}

	// Domain services
	jobs := job.NewService(deps.Store, deps.Bus)
	expenses := expense.NewService(deps.Store, deps.Bus)
	transactions := transaction.NewService(deps.Store)
	categories := category.NewService(deps.Store)
	clients := client.NewService(deps.Store)
	reports := report.NewService(deps.Store)
	notifications := notification.NewService(deps.Store, messenger, logger)

	// Bus subscribers. The synchronizer goes first so the ledger is
	// already consistent when the push notifier reads it.
	sync := ledger.NewSynchronizer(deps.Store, category.NewResolver(deps.Store), logger)
	deps.Bus.Subscribe(sync.HandleEvent)
	deps.Bus.Subscribe(notifications.HandleEvent)

	deps.JWT = auth.NewJWT(cfg.JWT.Secret)

	deps.JobHandler = httphandlers.NewJobHandler(jobs)
	deps.ExpenseHandler = httphandlers.NewExpenseHandler(expenses)
	deps.TransactionHandler = httphandlers.NewTransactionHandler(transactions)
	deps.CategoryHandler = httphandlers.NewCategoryHandler(categories)
	deps.ClientHandler = httphandlers.NewClientHandler(clients)
	deps.ReportHandler = httphandlers.NewReportHandler(reports)
	deps.NotificationHandler = httphandlers.NewNotificationHandler(notifications)

	return deps, nil
}

// Close releases all resources held by dependencies.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
