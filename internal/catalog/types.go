// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package catalog

import "time"

// FileRecord is a single indexed file: metadata plus a content-addressed
// identity used for duplicate detection. PrettyPath is the stable,
// user-facing identifier; AbsolutePath is the canonicalized, unique disk path.
type FileRecord struct {
	ID            int64
	PrettyPath    string
	AbsolutePath  string
	Size          uint64
	ContentHash   string // empty means absent (permitted only right after a rename, until re-hashed)
	LastModified  time.Time
	LastAccessed  time.Time
	TidyScoreID   int64 // 0 means absent
}

// HasContentHash reports whether the record carries a content hash.
func (f FileRecord) HasContentHash() bool {
	return f.ContentHash != ""
}

// HasScore reports whether the record has an attached TidyScore row.
func (f FileRecord) HasScore() bool {
	return f.TidyScoreID != 0
}

// ContentEqual reports whether two records are content-equal: both carry a
// content hash and the hashes match. Equality never compares paths.
func (f FileRecord) ContentEqual(other FileRecord) bool {
	return f.HasContentHash() && other.HasContentHash() && f.ContentHash == other.ContentHash
}

// TidyScore is the tidiness verdict for a FileRecord under the currently
// loaded rule set. Duplicated is stored on the score row: AddDuplicate sets
// it on the original side and SetScore writes the caller's value. GetScore
// and GetAll read the stored column; they do not consult the duplicates
// relation.
type TidyScore struct {
	ID         int64
	Misnamed   bool
	Unused     bool
	Duplicated bool
	Grade      int
}

// Letter renders Grade (0..5, 0 best) as a letter grade A..F.
func (s TidyScore) Letter() string {
	g := s.Grade
	if g < 0 {
		g = 0
	}
	if g > 5 {
		g = 5
	}
	if g == 5 {
		return "F"
	}
	return string(rune('A' + g))
}

// FileWithScore pairs a FileRecord with its TidyScore, when one exists.
type FileWithScore struct {
	File  FileRecord
	Score *TidyScore
}

// DuplicateLink is an unordered pair of content-equal FileRecords. Storage is
// directional (original_id, duplicate_id) for provenance, but interpretation
// is symmetric: FetchDuplicates(X) returns every Y linked to X from either side.
type DuplicateLink struct {
	OriginalID  int64
	DuplicateID int64
}

// GradeFunc computes a grade (0..5) for a TidyScore under the currently
// loaded rule set. It is supplied by the tidy rule engine; catalog has no
// direct dependency on the rule engine package to avoid an import cycle
// (the rule engine's Duplicated handler needs to query the catalog).
type GradeFunc func(TidyScore) int
