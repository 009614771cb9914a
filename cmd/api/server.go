package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"brisa/internal/shared/config"
)

// StartServer creates and starts the HTTP (or HTTPS) server in a
// background goroutine.
func StartServer(handler http.Handler, cfg *config.Config) *http.Server {
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if cfg.TLS.Enabled {
			log.Info().Str("addr", addr).Msg("HTTPS server starting")
			if err := srv.ListenAndServeTLS(cfg.TLS.CertPath, cfg.TLS.KeyPath); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("HTTPS server error")
			}
		} else {
			log.Info().Str("addr", addr).Msg("HTTP server starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("HTTP server error")
			}
		}
	}()

	return srv
}

// GracefulShutdown drains in-flight requests before returning.
func GracefulShutdown(srv *http.Server, timeout time.Duration) {
	log.Info().Msg("Server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Error shutting down server")
	}

	log.Info().Msg("Server stopped")
}
