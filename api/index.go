package handler

import (
	"net/http"
	"sync"

	"github.com/arnavshah/roster-api-go/pkg/app"
	"github.com/arnavshah/roster-api-go/pkg/config"
	"github.com/arnavshah/roster-api-go/pkg/logging"
)

var (
	once    sync.Once
	svc     *app.Service
	initErr error
)

func setup() {
	cfg, err := config.Load("")
	if err != nil {
		initErr = err
		return
	}
	svc, initErr = app.New(cfg)
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(setup)
	if initErr != nil {
		log := logging.New("vercel")
		log.Error().Err(initErr).Msg("startup failed")
		http.Error(w, `{"error":"service unavailable"}`, http.StatusServiceUnavailable)
		return
	}
	svc.Router.ServeHTTP(w, r)
}
