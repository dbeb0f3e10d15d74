// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := RunRootCommand().Execute(); err != nil {
		log.Fatal().Err(err).Msg("tidybee-agent: fatal error")
		os.Exit(1)
	}
}
