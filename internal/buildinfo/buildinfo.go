// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package buildinfo holds version metadata injected at link time via
// -ldflags, and derives a User-Agent string from it for the hub client.
package buildinfo

import (
	"encoding/json"
	"fmt"
	"runtime"
)

// Version, Commit, and Date are overridden at build time via:
//
//	-ldflags "-X github.com/autobrr/tidybee-agent/internal/buildinfo.Version=... ..."
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// UserAgent is the string sent as User-Agent on every hub request.
var UserAgent string

func init() {
	UserAgent = fmt.Sprintf("tidybee-agent/%s (%s; %s)", Version, runtime.GOOS, runtime.GOARCH)
}

// String renders version metadata as a human-readable, multi-line block.
func String() string {
	return fmt.Sprintf("Version: %s\nCommit: %s\nBuild date: %s\n", Version, Commit, Date)
}

type jsonInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// JSON renders version metadata as a JSON object.
func JSON() ([]byte, error) {
	return json.Marshal(jsonInfo{Version: Version, Commit: Commit, Date: Date})
}
