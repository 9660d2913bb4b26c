// Package app assembles the roster HTTP service from its configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/arnavshah/roster-api-go/pkg/auth"
	"github.com/arnavshah/roster-api-go/pkg/config"
	"github.com/arnavshah/roster-api-go/pkg/database"
	"github.com/arnavshah/roster-api-go/pkg/handlers"
	"github.com/arnavshah/roster-api-go/pkg/logging"
)

// Service owns the database handle and the routed engine
type Service struct {
	DB     *gorm.DB
	Router *gin.Engine
	cfg    *config.Config
	log    zerolog.Logger
}

// New connects the database, seeds the admin user and builds the router
func New(cfg *config.Config) (*Service, error) {
	if err := logging.Setup(cfg.Logging); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	if err := cfg.Auth.Validate(); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	authSvc := auth.New(cfg.Auth)
	if err := authSvc.EnsureAdminExists(db); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	h, err := handlers.New(db, authSvc, reg)
	if err != nil {
		return nil, fmt.Errorf("handlers: %w", err)
	}

	return &Service{DB: db, Router: h.Router(), cfg: cfg, log: logging.New("service")}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Service) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(s.cfg.Server.Port),
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// Close releases the database connection
func (s *Service) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
