// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package hub

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/tidybee-agent/pkg/redact"
)

const (
	maxRetries       = 3
	initialRetryWait = 50 * time.Millisecond
	maxRetryWait     = 500 * time.Millisecond
)

// retryTransport wraps an http.RoundTripper with retry logic for transient
// network errors talking to the hub. Unlike a general-purpose proxy
// transport, every request this transport carries is one of the hub's three
// wire messages (create/update/delete, see messages.go) and every one of
// those is idempotent at the catalog it's reporting to: a repeated create is
// a no-op insert, a repeated update overwrites with the same fields, and a
// repeated delete of an already-removed file is a no-op (spec.md §4.1,
// §8's round-trip laws). There is no method to exclude from retrying here —
// unlike qBittorrent's proxied API, where PUT/DELETE could carry
// non-idempotent side effects the proxy didn't control.
type retryTransport struct {
	base http.RoundTripper
}

func newRetryTransport(base http.RoundTripper) *retryTransport {
	return &retryTransport{base: base}
}

//nolint:wrapcheck // RoundTrip should not wrap errors - callers expect unwrapped transport errors
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		reqClone := req.Clone(req.Context())

		resp, err := t.base.RoundTrip(reqClone)
		if err == nil {
			if attempt > 0 {
				log.Debug().
					Str("method", req.Method).
					Str("url", redact.URLString(req.URL.String())).
					Int("attempt", attempt+1).
					Msg("hub request succeeded after retry")
			}
			return resp, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			log.Debug().
				Str("error", redact.String(err.Error())).
				Str("method", req.Method).
				Str("url", redact.URLString(req.URL.String())).
				Msg("hub request failed with non-retryable error")
			return nil, err
		}

		t.closeIdleConnections()

		if attempt >= maxRetries {
			log.Warn().
				Str("error", redact.String(err.Error())).
				Str("method", req.Method).
				Str("url", redact.URLString(req.URL.String())).
				Int("attempts", attempt+1).
				Msg("hub request failed after max retries")
			return nil, err
		}

		backoff := calculateBackoff(attempt, initialRetryWait, maxRetryWait)

		log.Debug().
			Str("error", redact.String(err.Error())).
			Str("method", req.Method).
			Str("url", redact.URLString(req.URL.String())).
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Msg("hub request failed with retryable error, retrying")

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(backoff):
		}
	}

	return nil, lastErr
}

func (t *retryTransport) closeIdleConnections() {
	type closeIdler interface {
		CloseIdleConnections()
	}
	if tr, ok := t.base.(closeIdler); ok {
		tr.CloseIdleConnections()
	}
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return isRetryableError(urlErr.Err)
	}

	if isRetryableNetError(err) || isRetryableSyscallError(err) || errors.Is(err, io.EOF) {
		return true
	}

	return isRetryableErrorMessage(err)
}

func isRetryableNetError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial" || opErr.Op == "read"
	}

	return false
}

func isRetryableSyscallError(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

func isRetryableErrorMessage(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network is unreachable") ||
		(strings.Contains(errStr, "eof") && !strings.Contains(errStr, "unexpected eof"))
}

func calculateBackoff(attempt int, initial, maxBackoff time.Duration) time.Duration {
	backoff := initial
	for range attempt {
		backoff *= 2
		if backoff > maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
