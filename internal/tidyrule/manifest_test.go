// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package tidyrule

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadManifestParsesRules(t *testing.T) {
	path := writeManifest(t, `
rules:
  - name: pdf-only
    log_template: "{{.path}} is misnamed"
    scope: all
    weight: 1
    kind: Misnamed
    params:
      pattern: "^.*\\.pdf$"
  - name: stale
    scope: "/data/archive"
    weight: 3
    kind: Perished
    params:
      max: "2099-01-01T00:00:00+00:00"
`)

	engine, n, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, engine.Rules(), 2)
	assert.Equal(t, KindMisnamed, engine.Rules()[0].Kind)
	assert.Equal(t, uint64(3), engine.Rules()[1].Weight)
	assert.Equal(t, "/data/archive", engine.Rules()[1].Scope)
}

func TestLoadManifestSkipsUnknownKind(t *testing.T) {
	path := writeManifest(t, `
rules:
  - name: good
    scope: all
    weight: 1
    kind: Misnamed
    params:
      pattern: "^.*$"
  - name: bad
    scope: all
    weight: 1
    kind: Frobnicated
`)

	engine, n, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, engine.Rules(), 1)
	assert.Equal(t, "good", engine.Rules()[0].Name)
}

func TestLoadManifestEmptyRulesYieldsZeroRuleEngine(t *testing.T) {
	path := writeManifest(t, "rules: []\n")

	engine, n, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, engine.Rules())
}

func TestLoadManifestMissingFileErrors(t *testing.T) {
	_, _, err := LoadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadManifestDefaultsScopeAndWeight(t *testing.T) {
	path := writeManifest(t, `
rules:
  - name: defaults
    kind: Misnamed
    params:
      pattern: "^.*$"
`)

	engine, _, err := LoadManifest(path)
	require.NoError(t, err)
	require.Len(t, engine.Rules(), 1)
	assert.Equal(t, ScopeAll, engine.Rules()[0].Scope)
	assert.Equal(t, uint64(1), engine.Rules()[0].Weight)
}
