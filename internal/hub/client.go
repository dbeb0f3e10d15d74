// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package hub implements the outbound RPC client that streams file-level
// change events to the remote hub. Every request carries the agent's
// identity as a bearer token; send failures are retried with bounded
// exponential backoff by retryTransport and never abort the caller.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/tidybee-agent/internal/buildinfo"
	"github.com/autobrr/tidybee-agent/pkg/httphelpers"
	"github.com/autobrr/tidybee-agent/pkg/redact"
)

// Client sends file-change events to a single hub endpoint.
type Client struct {
	baseURL    string
	agentUUID  string
	httpClient *http.Client
}

// Config describes how to reach and authenticate against a hub.
type Config struct {
	Protocol  string
	Host      string
	Port      int
	AgentUUID string
	Timeout   time.Duration
}

// New builds a Client for the hub described by cfg.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:   fmt.Sprintf("%s://%s:%d", cfg.Protocol, cfg.Host, cfg.Port),
		agentUUID: cfg.AgentUUID,
		httpClient: &http.Client{
			Transport: newRetryTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

// SendCreate announces a newly indexed file to the hub.
func (c *Client) SendCreate(ctx context.Context, msg CreateMessage) error {
	return c.send(ctx, http.MethodPost, msg)
}

// SendUpdate announces a change to an already-indexed file.
func (c *Client) SendUpdate(ctx context.Context, msg UpdateMessage) error {
	return c.send(ctx, http.MethodPut, msg)
}

// SendDelete announces a file's removal from the catalog.
func (c *Client) SendDelete(ctx context.Context, msg DeleteMessage) error {
	return c.send(ctx, http.MethodDelete, msg)
}

func (c *Client) send(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("hub: encode %s payload: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("hub: build %s request: %w", method, err)
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("authorization", "Bearer "+c.agentUUID)
	req.Header.Set("user-agent", buildinfo.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Hub send failures are retried internally by retryTransport; once
		// those are exhausted the error propagates here and is logged as an
		// error per event, but the caller keeps running.
		err = redact.URLError(err)
		log.Error().Err(err).Str("method", method).Msg("hub: request failed after retries")
		return fmt.Errorf("hub: %s: %w", method, err)
	}
	defer httphelpers.DrainAndClose(resp)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("hub: %s: unexpected status %d", method, resp.StatusCode)
	}
	return nil
}

// Handshake performs the first contact with the hub to obtain an agent
// UUID, when none is yet persisted. The hub is expected to respond with the
// UUID as a JSON string, e.g. "\"3fa85f64-5717-4562-b3fc-2c963f66afa6\"".
func (c *Client) Handshake(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/handshake", nil)
	if err != nil {
		return "", fmt.Errorf("hub: build handshake request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("hub: handshake: %w", redact.URLError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("hub: read handshake response: %w", err)
	}

	var uuid string
	if err := json.Unmarshal(body, &uuid); err != nil {
		return "", fmt.Errorf("hub: decode handshake response: %w", err)
	}
	return uuid, nil
}
