// Package api provides the HTTP REST API server.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/obraguard/obraguard/internal/alerting"
	"github.com/obraguard/obraguard/internal/deviation"
	"github.com/obraguard/obraguard/internal/notifier"
	"github.com/obraguard/obraguard/internal/storage"
)

// Config contains HTTP API server configuration.
type Config struct {
	Address           string
	DispatchWorkers   int     // Concurrent channel sends per dispatch pass
	DispatchRateLimit float64 // Outbound sends per second, 0 disables
	Verbose           bool
}

// SetDefaults applies default values for missing configuration.
func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.DispatchWorkers == 0 {
		c.DispatchWorkers = notifier.DefaultWorkers
	}
}

// Server is the HTTP API server.
type Server struct {
	config     *Config
	storage    storage.Storage
	evaluator  *alerting.Evaluator
	dispatcher *notifier.Dispatcher
	server     *http.Server
}

// New creates a new API server. mailer may be nil when email delivery is not
// configured; email notifications then fail and retry until exhausted.
func New(cfg *Config, store storage.Storage, mailer notifier.Mailer) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}

	cfg.SetDefaults()

	fanout := notifier.NewFanout(store)
	calc := deviation.NewCalculator(store)

	senders := []notifier.Sender{
		notifier.NewDashboardSender(),
		notifier.NewEmailSender(mailer),
		notifier.NewWebhookSender(),
	}

	s := &Server{
		config:    cfg,
		storage:   store,
		evaluator: alerting.NewEvaluator(store, calc, fanout),
		dispatcher: notifier.NewDispatcher(store, senders, notifier.DispatcherOptions{
			Workers:        cfg.DispatchWorkers,
			SendsPerSecond: cfg.DispatchRateLimit,
		}),
	}

	s.server = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.setupRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Run starts the HTTP server and blocks until context is canceled.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		log.Printf("HTTP API listening on %s", s.config.Address)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("shutting down HTTP API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.config.Address
}
