// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package hub

import (
	"time"

	"github.com/autobrr/tidybee-agent/internal/catalog"
)

// CreateMessage announces a newly indexed file. All fields are required.
type CreateMessage struct {
	PrettyPath   string `json:"pretty_path"`
	AbsolutePath string `json:"absolute_path"`
	Size         uint64 `json:"size"`
	ContentHash  string `json:"content_hash"`
	LastModified string `json:"last_modified"`
	LastAccessed string `json:"last_accessed"`
}

// UpdateMessage announces a change to an already-indexed file. Every field
// beyond the path pair is optional: a Rename-only update carries none of them.
type UpdateMessage struct {
	PrettyPath   string  `json:"pretty_path"`
	AbsolutePath string  `json:"absolute_path"`
	Size         *uint64 `json:"size,omitempty"`
	ContentHash  *string `json:"content_hash,omitempty"`
	LastModified *string `json:"last_modified,omitempty"`
	LastAccessed *string `json:"last_accessed,omitempty"`
}

// DeleteMessage announces a file's removal from the catalog.
type DeleteMessage struct {
	PrettyPath   string `json:"pretty_path"`
	AbsolutePath string `json:"absolute_path"`
}

// NewCreateMessage builds a CreateMessage from a catalog record.
func NewCreateMessage(f catalog.FileRecord) CreateMessage {
	return CreateMessage{
		PrettyPath:   f.PrettyPath,
		AbsolutePath: f.AbsolutePath,
		Size:         f.Size,
		ContentHash:  f.ContentHash,
		LastModified: f.LastModified.Format(time.RFC3339Nano),
		LastAccessed: f.LastAccessed.Format(time.RFC3339Nano),
	}
}

// NewUpdateMessage builds an UpdateMessage carrying only the fields that
// changed; metadata-only updates (e.g. a bare access-time refresh) and
// content updates both flow through here, the caller decides what to fill.
func NewUpdateMessage(f catalog.FileRecord, includeContent bool) UpdateMessage {
	msg := UpdateMessage{
		PrettyPath:   f.PrettyPath,
		AbsolutePath: f.AbsolutePath,
	}
	lastModified := f.LastModified.Format(time.RFC3339Nano)
	lastAccessed := f.LastAccessed.Format(time.RFC3339Nano)
	msg.LastModified = &lastModified
	msg.LastAccessed = &lastAccessed
	if includeContent {
		size := f.Size
		hash := f.ContentHash
		msg.Size = &size
		msg.ContentHash = &hash
	}
	return msg
}

// NewDeleteMessage builds a DeleteMessage from a catalog record.
func NewDeleteMessage(f catalog.FileRecord) DeleteMessage {
	return DeleteMessage{PrettyPath: f.PrettyPath, AbsolutePath: f.AbsolutePath}
}
