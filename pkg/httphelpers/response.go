// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package httphelpers provides small net/http response and path helpers.
// The outbound hub client uses DrainAndClose; the HTTP read API does not
// use this package.
package httphelpers

import (
	"io"
	"net/http"
	"strings"
)

// DrainAndClose consumes the remaining response body and closes it to allow connection reuse.
func DrainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// NormalizeBasePath trims whitespace and trailing slashes from a configured
// base path and ensures it starts with a single leading slash, or returns ""
// for the root path.
func NormalizeBasePath(basePath string) string {
	basePath = strings.TrimSpace(basePath)
	basePath = strings.Trim(basePath, "/")
	if basePath == "" {
		return ""
	}
	return "/" + basePath
}

// JoinBasePath joins a normalized base path with a route suffix, producing an
// absolute path with no duplicated slashes.
func JoinBasePath(basePath, suffix string) string {
	basePath = NormalizeBasePath(basePath)
	suffix = strings.TrimPrefix(suffix, "/")

	if suffix == "" {
		if basePath == "" {
			return "/"
		}
		return basePath
	}

	if basePath == "" {
		return "/" + suffix
	}
	return basePath + "/" + suffix
}
