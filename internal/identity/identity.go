// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package identity manages the agent's persisted UUID, the credential it
// presents to the hub on every RPC.
package identity

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store reads and writes the agent's UUID in a file named uuid inside the
// directory the caller roots it at (the agent roots it at config, giving
// config/uuid).
type Store struct {
	path string
}

// NewStore returns a Store rooted at dir, managing dir/uuid.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, "uuid")}
}

// Load reads the persisted UUID, if any. The second return value is false
// when no identity file exists yet (first run).
func (s *Store) Load() (string, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("identity: read %s: %w", s.path, err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

// Save persists uuid, stripping any enclosing quotes the hub's handshake
// response carried, creating the parent directory if necessary.
func (s *Store) Save(uuid string) error {
	uuid = strings.Trim(strings.TrimSpace(uuid), `"`)

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("identity: create %s: %w", dir, err)
	}
	if err := os.WriteFile(s.path, []byte(uuid), 0o600); err != nil {
		return fmt.Errorf("identity: write %s: %w", s.path, err)
	}
	return nil
}

// Handshaker performs the hub's first-contact handshake to mint a UUID.
type Handshaker interface {
	Handshake(ctx context.Context) (string, error)
}

// Ensure returns the agent's persisted UUID, performing a hub handshake and
// persisting the result on first run. Missing identity aborts only hub RPC,
// per error-handling policy, so callers should log and continue without a
// hub client rather than treat a handshake failure as fatal to the agent.
func (s *Store) Ensure(ctx context.Context, hub Handshaker) (string, error) {
	if uuid, ok, err := s.Load(); err != nil {
		return "", err
	} else if ok && uuid != "" {
		return uuid, nil
	}

	uuid, err := hub.Handshake(ctx)
	if err != nil {
		return "", fmt.Errorf("identity: handshake: %w", err)
	}
	uuid = strings.Trim(strings.TrimSpace(uuid), `"`)

	if err := s.Save(uuid); err != nil {
		return "", err
	}
	return uuid, nil
}
