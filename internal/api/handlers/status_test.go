// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/tidybee-agent/internal/config"
)

func TestGetStatusReportsWatchedDirectoriesAndVersion(t *testing.T) {
	cfg := &config.Config{}
	cfg.Watch.Roots = []string{"/data/docs", "/data/photos"}
	cfg.AgentConfig.LatestVersion = "1.2.3"
	cfg.AgentConfig.MinimalVersion = "1.0.0"

	handler := NewStatusHandler(cfg, time.Now().Add(-5*time.Second))

	req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/get_status", nil)
	resp := httptest.NewRecorder()

	handler.GetStatus(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var body StatusResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))

	assert.Equal(t, "1.2.3", body.AgentVersion.LatestVersion)
	assert.Equal(t, "1.0.0", body.AgentVersion.MinimalVersion)
	assert.Equal(t, []string{"/data/docs", "/data/photos"}, body.WatchedDirectories)
	assert.GreaterOrEqual(t, body.UptimeSeconds, uint64(0))
	assert.NotZero(t, body.ProcessID)
	assert.NotEmpty(t, body.MachineName)
}

func TestGetStatusReportsEmptySliceWhenNoRootsConfigured(t *testing.T) {
	handler := NewStatusHandler(&config.Config{}, time.Now())

	req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/get_status", nil)
	resp := httptest.NewRecorder()

	handler.GetStatus(resp, req)

	var body StatusResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, []string{}, body.WatchedDirectories)
}
