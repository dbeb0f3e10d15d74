// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/autobrr/tidybee-agent/internal/api"
	"github.com/autobrr/tidybee-agent/internal/catalog"
	"github.com/autobrr/tidybee-agent/internal/config"
	"github.com/autobrr/tidybee-agent/internal/fsobserver"
	"github.com/autobrr/tidybee-agent/internal/hub"
	"github.com/autobrr/tidybee-agent/internal/identity"
	"github.com/autobrr/tidybee-agent/internal/logging"
	"github.com/autobrr/tidybee-agent/internal/metrics"
	"github.com/autobrr/tidybee-agent/internal/orchestrator"
	"github.com/autobrr/tidybee-agent/internal/tidyrule"
)

// RunRootCommand builds the tidybee-agent root command: load configuration,
// wire every subsystem, and run until the process receives a shutdown signal.
func RunRootCommand() *cobra.Command {
	var (
		configPath string
		listRoots  []string
		watchRoots []string
		extensions []string
		watchType  string
		receive    bool
		send       bool
	)

	cmd := &cobra.Command{
		Use:   "tidybee-agent",
		Short: "Watches directory trees, scores files against tidiness rules, and reports to a hub",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.New(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			if len(listRoots) > 0 {
				cfg.Watch.ListRoots = listRoots
			}
			if len(watchRoots) > 0 {
				cfg.Watch.Roots = watchRoots
			}
			if len(extensions) > 0 {
				cfg.Watch.Extensions = extensions
			}
			if watchType != "" {
				cfg.Watch.Type = watchType
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logging.Init(cfg.Log)

			return run(cmd.Context(), cfg, receive, send)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the agent's YAML configuration file")
	cmd.Flags().StringSliceVar(&listRoots, "list", nil, "directory roots to enumerate at startup (overrides config)")
	cmd.Flags().StringSliceVar(&watchRoots, "watch", nil, "directory roots to watch for changes (overrides config)")
	cmd.Flags().StringSliceVar(&extensions, "extension", nil, "file extensions to restrict indexing to (overrides config)")
	cmd.Flags().StringVar(&watchType, "type", "", `what kind of entries to index: "all", "directory", or "regular"`)
	cmd.Flags().BoolVar(&receive, "receive", true, "accepted for command-line compatibility; the agent does not act on it")
	cmd.Flags().BoolVar(&send, "send", true, "stream catalog changes to the hub")

	return cmd
}

func run(ctx context.Context, cfg *config.Config, _, send bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat, err := catalog.New(cfg.Catalog.Path, cfg.Catalog.DropOnStart)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close()

	engine, ruleCount, err := tidyrule.LoadManifest(cfg.Rules.ManifestPath)
	if err != nil {
		return fmt.Errorf("load rule manifest: %w", err)
	}
	log.Info().Int("rules", ruleCount).Str("manifest", cfg.Rules.ManifestPath).Msg("loaded tidy rules")

	var hubClient *hub.Client
	if send {
		hubClient = hub.New(hub.Config{
			Protocol: cfg.Hub.Protocol,
			Host:     cfg.Hub.Host,
			Port:     cfg.Hub.Port,
		})

		store := identity.NewStore(filepath.Dir(cfg.Hub.AuthPath))
		uuid, err := store.Ensure(ctx, hubClient)
		if err != nil {
			// Per error-handling policy, a missing/unattainable identity
			// aborts hub RPC only, not the rest of the agent.
			log.Error().Err(err).Msg("identity: could not establish agent UUID, disabling hub reporting")
			hubClient = nil
		} else {
			hubClient = hub.New(hub.Config{
				Protocol:  cfg.Hub.Protocol,
				Host:      cfg.Hub.Host,
				Port:      cfg.Hub.Port,
				AgentUUID: uuid,
			})
		}
	}

	orch := orchestrator.New(cat, engine, hubClient, cfg.Watch.Roots).WithExtensions(cfg.Watch.Extensions)

	if len(cfg.Watch.ListRoots) > 0 {
		if err := orch.Bootstrap(ctx, cfg.Watch.ListRoots); err != nil {
			log.Error().Err(err).Msg("orchestrator: bootstrap listing failed")
		}
	}

	metricsManager := metrics.NewManager(cat)

	router := api.NewRouter(&api.Dependencies{
		Config:         cfg,
		Catalog:        cat,
		MetricsManager: metricsManager,
		StartedAt:      time.Now(),
	})

	httpServer := &http.Server{
		Addr:    cfg.HTTP.BindAddress,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTP.BindAddress).Msg("starting HTTP read API")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if len(cfg.Watch.Roots) > 0 {
		obs, err := fsobserver.New(cfg.Watch.Roots)
		if err != nil {
			return fmt.Errorf("start filesystem observer: %w", err)
		}
		defer obs.Close()

		go orch.Run(ctx, obs.Events())
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		log.Error().Err(err).Msg("fatal subsystem error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
