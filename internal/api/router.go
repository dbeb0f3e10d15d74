// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/autobrr/tidybee-agent/internal/api/handlers"
	apimiddleware "github.com/autobrr/tidybee-agent/internal/api/middleware"
	"github.com/autobrr/tidybee-agent/internal/catalog"
	"github.com/autobrr/tidybee-agent/internal/config"
	"github.com/autobrr/tidybee-agent/internal/metrics"
)

// Dependencies holds everything the HTTP read API needs to serve requests.
type Dependencies struct {
	Config         *config.Config
	Catalog        *catalog.DB
	MetricsManager *metrics.Manager
	StartedAt      time.Time
}

// NewRouter builds the agent's local read-only HTTP API: liveness, status,
// file listing, and a Prometheus scrape endpoint.
func NewRouter(deps *Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(apimiddleware.SelectiveCompress(1024, 5, true, true))

	statusHandler := handlers.NewStatusHandler(deps.Config, deps.StartedAt)
	filesHandler := handlers.NewFilesHandler(deps.Catalog)

	r.Get("/", handlers.Hello)
	r.Get("/get_status", statusHandler.GetStatus)
	r.Get("/get_files", filesHandler.ListFiles)

	if deps.MetricsManager != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.MetricsManager.GetRegistry(), promhttp.HandlerOpts{}))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return r
}
