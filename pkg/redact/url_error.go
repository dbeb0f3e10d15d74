// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package redact strips credentials and other sensitive query parameters out
// of errors and strings before they reach logs, so a hub URL or auth token
// never ends up in a log line.
package redact

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// sensitiveParams are query parameter names whose values are replaced with
// REDACTED wherever they appear in a URL.
var sensitiveParams = []string{"apikey", "api_key", "token", "passkey", "password"}

// URLError rewrites err's embedded URL, if it carries one, to redact
// sensitive query parameters. If err is or wraps a *url.Error (checked with
// errors.As), a copy of that *url.Error with its URL field redacted is
// returned, so its type and Op are preserved; any wrapping context around
// it is dropped. Any other error has its message redacted via URLString and
// is returned as a new error, or unchanged if nothing was redacted.
func URLError(err error) error {
	if err == nil {
		return nil
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		redacted := *urlErr
		redacted.URL = URLString(urlErr.URL)
		return &redacted
	}

	msg := err.Error()
	if redactedMsg := URLString(msg); redactedMsg != msg {
		return errors.New(redactedMsg)
	}
	return err
}

// String redacts any URL-shaped substrings found in s.
func String(s string) string {
	return URLString(s)
}

// URLString redacts sensitive query parameter values found in s. s need not
// be a well-formed URL; the parameter-matching regexes operate on whatever
// text is present.
func URLString(s string) string {
	out := s
	for _, param := range sensitiveParams {
		out = redactParam(out, param)
	}
	return out
}

func redactParam(s, param string) string {
	re := regexp.MustCompile(`(?i)(` + regexp.QuoteMeta(param) + `=)[^&\s]*`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		idx := strings.IndexByte(match, '=')
		return match[:idx+1] + "REDACTED"
	})
}
