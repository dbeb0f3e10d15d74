// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package logging

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"

	"github.com/autobrr/tidybee-agent/internal/config"
)

func TestInitAppliesConfiguredLevel(t *testing.T) {
	Init(config.LogConfig{Level: "warn"})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestInitDefaultsToInfoOnUnknownLevel(t *testing.T) {
	Init(config.LogConfig{Level: "not-a-real-level"})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestInitWithPathDoesNotPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.log")
	assert.NotPanics(t, func() {
		Init(config.LogConfig{Level: "info", Path: path})
		log.Info().Msg("hello")
	})
}
