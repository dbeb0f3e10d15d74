// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := New(filepath.Join(dir, "catalog.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewCreatesDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.db")

	db, err := New(path, false)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestNewDropOnStartRemovesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.db")

	db, err := New(path, false)
	require.NoError(t, err)
	_, err = db.AddFile(t.Context(), FileRecord{
		PrettyPath: "a.txt", AbsolutePath: "/a.txt", Size: 1,
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db2, err := New(path, true)
	require.NoError(t, err)
	defer db2.Close()

	all, err := db2.GetAll(t.Context())
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestMigrateIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.db")

	db, err := New(path, false)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db2, err := New(path, false)
	require.NoError(t, err)
	defer db2.Close()
}
