// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package fileinfo builds a catalog.FileRecord from a path on disk: stat,
// content hash, and path canonicalization. Pretty-path derivation is owned
// by the orchestrator, which knows the full list of configured roots.
package fileinfo

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/tidybee-agent/internal/catalog"
	"github.com/autobrr/tidybee-agent/pkg/hashutil"
	"github.com/autobrr/tidybee-agent/pkg/pathcmp"
	"github.com/autobrr/tidybee-agent/pkg/stringutils"
)

// Build stats and hashes the file at path, returning a FileRecord with
// PrettyPath left empty (the caller fills it in via the configured roots).
// The second return value is false if the path doesn't exist or can't be
// statted; callers treat that as absence, not an error to propagate.
func Build(path string) (catalog.FileRecord, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return catalog.FileRecord{}, false, nil
		}
		log.Warn().Err(err).Str("path", path).Msg("fileinfo: stat failed")
		return catalog.FileRecord{}, false, nil
	}
	if info.IsDir() {
		return catalog.FileRecord{}, false, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return catalog.FileRecord{}, false, fmt.Errorf("fileinfo: read %s: %w", path, err)
	}

	absolute := pathcmp.NormalizePath(pathcmp.StripLongPathPrefix(path))

	return catalog.FileRecord{
		AbsolutePath: absolute,
		Size:         uint64(info.Size()),
		ContentHash:  stringutils.Intern(hashutil.HashBytes(content)),
		LastModified: info.ModTime(),
		LastAccessed: accessTime(info),
	}, true, nil
}

// PrettyPath derives the pretty path for absolutePath given the agent's
// configured watch roots: the suffix of the first root whose string form is
// contained in absolutePath, or absolutePath itself if no root matches.
func PrettyPath(absolutePath string, roots []string) string {
	for _, root := range roots {
		if idx, ok := pathcmp.ContainsRoot(absolutePath, root); ok {
			return stringutils.Intern(absolutePath[idx:])
		}
	}
	return stringutils.Intern(absolutePath)
}
