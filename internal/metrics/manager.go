// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/tidybee-agent/internal/catalog"
)

type Manager struct {
	registry         *prometheus.Registry
	catalogCollector *CatalogCollector
}

func NewManager(cat *catalog.DB) *Manager {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	catalogCollector := NewCatalogCollector(cat)
	registry.MustRegister(catalogCollector)

	log.Info().Msg("Metrics manager initialized with catalog collector")

	return &Manager{
		registry:         registry,
		catalogCollector: catalogCollector,
	}
}

func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}
