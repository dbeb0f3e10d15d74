// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/tidybee-agent/internal/catalog"
)

// FileResponse is one entry of the GET /get_files response body.
type FileResponse struct {
	PrettyPath   string `json:"pretty_path"`
	AbsolutePath string `json:"absolute_path"`
	Size         uint64 `json:"size"`
	ContentHash  string `json:"content_hash"`
	LastModified string `json:"last_modified"`
	LastAccessed string `json:"last_accessed"`
}

func newFileResponse(f catalog.FileRecord) FileResponse {
	return FileResponse{
		PrettyPath:   f.PrettyPath,
		AbsolutePath: f.AbsolutePath,
		Size:         f.Size,
		ContentHash:  f.ContentHash,
		LastModified: f.LastModified.Format(time.RFC3339Nano),
		LastAccessed: f.LastAccessed.Format(time.RFC3339Nano),
	}
}

const defaultFilesAmount = 100

// FilesHandler serves GET /get_files.
type FilesHandler struct {
	cat *catalog.DB
}

func NewFilesHandler(cat *catalog.DB) *FilesHandler {
	return &FilesHandler{cat: cat}
}

// ListFiles returns the top `amount` files sorted descending by `sort_by`
// (size or last_update). An invalid sort_by falls back to size with a
// logged warning; an invalid or missing amount falls back to 100.
func (h *FilesHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	amount := defaultFilesAmount
	if v := r.URL.Query().Get("amount"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			amount = parsed
		}
	}

	sortBy := r.URL.Query().Get("sort_by")
	switch sortBy {
	case "size", "last_update":
	default:
		log.Warn().Str("sort_by", sortBy).Msg("get_files: unknown sort_by, falling back to size")
		sortBy = "size"
	}

	records, err := h.cat.GetAll(r.Context())
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "Failed to list files")
		return
	}

	sort.Slice(records, func(i, j int) bool {
		switch sortBy {
		case "last_update":
			return records[i].File.LastModified.After(records[j].File.LastModified)
		default:
			return records[i].File.Size > records[j].File.Size
		}
	})

	if amount < len(records) {
		records = records[:amount]
	}

	out := make([]FileResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, newFileResponse(rec.File))
	}

	RespondJSON(w, http.StatusOK, out)
}
