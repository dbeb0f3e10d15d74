// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/autobrr/tidybee-agent/internal/config"
)

// AgentVersionInfo mirrors the original agent's self-reported version pair.
type AgentVersionInfo struct {
	LatestVersion  string `json:"latest_version"`
	MinimalVersion string `json:"minimal_version"`
}

// StatusResponse is the body of GET /get_status.
type StatusResponse struct {
	AgentVersion       AgentVersionInfo `json:"agent_version"`
	MachineName        string           `json:"machine_name"`
	ProcessID          int              `json:"process_id"`
	UptimeSeconds      uint64           `json:"uptime"`
	WatchedDirectories []string         `json:"watched_directories"`
}

// StatusHandler serves the agent's self-status.
type StatusHandler struct {
	cfg       *config.Config
	startedAt time.Time
	pid       int
	hostname  string
}

func NewStatusHandler(cfg *config.Config, startedAt time.Time) *StatusHandler {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return &StatusHandler{
		cfg:       cfg,
		startedAt: startedAt,
		pid:       os.Getpid(),
		hostname:  hostname,
	}
}

func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	watched := h.cfg.Watch.Roots
	if watched == nil {
		watched = []string{}
	}

	RespondJSON(w, http.StatusOK, StatusResponse{
		AgentVersion: AgentVersionInfo{
			LatestVersion:  h.cfg.AgentConfig.LatestVersion,
			MinimalVersion: h.cfg.AgentConfig.MinimalVersion,
		},
		MachineName:        h.hostname,
		ProcessID:          h.pid,
		UptimeSeconds:      uint64(time.Since(h.startedAt).Seconds()),
		WatchedDirectories: watched,
	})
}
