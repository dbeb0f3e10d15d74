// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package logging configures the process-wide zerolog logger used by every
// other package through github.com/rs/zerolog/log. It never introduces its
// own logging API: callers keep using log.Info()/log.Warn()/etc. directly.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/autobrr/tidybee-agent/internal/config"
)

// Init reconfigures the global zerolog logger per cfg. When cfg.Path is
// empty, logs go to stderr only; otherwise a rotating file sink is added
// alongside stderr.
func Init(cfg config.LogConfig) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}

	var writer io.Writer = console
	if cfg.Path != "" {
		fileSink := &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		}
		writer = zerolog.MultiLevelWriter(console, fileSink)
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Caller().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled":
		return zerolog.Disabled
	case "info", "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}
