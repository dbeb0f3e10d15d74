// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: MIT

package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/tidybee-agent/internal/catalog"
)

// CatalogCollector exposes the catalog's aggregate state — file counts,
// grade distribution, duplicate counts — as Prometheus gauges, queried fresh
// on every scrape rather than cached.
type CatalogCollector struct {
	cat *catalog.DB

	totalFilesDesc     *prometheus.Desc
	scoredFilesDesc    *prometheus.Desc
	duplicateFilesDesc *prometheus.Desc
	gradeDesc          *prometheus.Desc
}

func NewCatalogCollector(cat *catalog.DB) *CatalogCollector {
	return &CatalogCollector{
		cat: cat,

		totalFilesDesc: prometheus.NewDesc(
			"tidybee_catalog_files_total",
			"Total number of files currently indexed in the catalog",
			nil, nil,
		),
		scoredFilesDesc: prometheus.NewDesc(
			"tidybee_catalog_scored_files_total",
			"Number of indexed files that have a tidy score attached",
			nil, nil,
		),
		duplicateFilesDesc: prometheus.NewDesc(
			"tidybee_catalog_duplicate_files_total",
			"Number of indexed files flagged as part of a duplicate-content group",
			nil, nil,
		),
		gradeDesc: prometheus.NewDesc(
			"tidybee_catalog_files_by_grade",
			"Number of scored files at each tidiness grade (0=A best, 5=F worst)",
			[]string{"grade"},
			nil,
		),
	}
}

func (c *CatalogCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalFilesDesc
	ch <- c.scoredFilesDesc
	ch <- c.duplicateFilesDesc
	ch <- c.gradeDesc
}

func (c *CatalogCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := c.cat.Stats(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to collect catalog stats for metrics")
		return
	}

	ch <- prometheus.MustNewConstMetric(c.totalFilesDesc, prometheus.GaugeValue, float64(stats.TotalFiles))
	ch <- prometheus.MustNewConstMetric(c.scoredFilesDesc, prometheus.GaugeValue, float64(stats.ScoredFiles))
	ch <- prometheus.MustNewConstMetric(c.duplicateFilesDesc, prometheus.GaugeValue, float64(stats.DuplicateFiles))

	letters := [...]string{"A", "B", "C", "D", "E", "F"}
	for grade, count := range stats.GradeCounts {
		ch <- prometheus.MustNewConstMetric(c.gradeDesc, prometheus.GaugeValue, float64(count), letters[grade])
	}
}
