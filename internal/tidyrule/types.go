// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package tidyrule implements the data-driven tidiness policy: a list of
// Rules loaded once from a manifest, applied to a FileRecord to produce a
// Score, and a grade function derived purely from the loaded rule weights.
package tidyrule

import "github.com/autobrr/tidybee-agent/internal/catalog"

// Kind is one of the three rule variants. Encoded as a tagged sum with a
// per-variant handler (see handlers.go), not through interface inheritance.
type Kind string

const (
	KindMisnamed   Kind = "Misnamed"
	KindDuplicated Kind = "Duplicated"
	KindPerished   Kind = "Perished"
)

// ScopeAll matches every record regardless of path.
const ScopeAll = "all"

// Rule is a single entry in the loaded manifest.
type Rule struct {
	Name        string
	LogTemplate string
	Scope       string
	Weight      uint64
	Kind        Kind
	Params      map[string]any
}

// AppliesToAll reports whether the rule is scoped to every record.
func (r Rule) AppliesToAll() bool {
	return r.Scope == ScopeAll
}

// Score is the rule engine's working representation of a record's
// tidiness while rules are being applied. Duplicates carries the in-memory
// list of content-equal records a Duplicated rule has found so far; only
// its non-emptiness survives into the persisted catalog.TidyScore.
type Score struct {
	Misnamed   bool
	Unused     bool
	Duplicates []catalog.FileRecord
}

// ToCatalogScore projects a Score down to the persisted representation,
// with grade left at its zero value for the caller to fill via GradeFunc.
func (s Score) ToCatalogScore() catalog.TidyScore {
	return catalog.TidyScore{
		Misnamed:   s.Misnamed,
		Unused:     s.Unused,
		Duplicated: len(s.Duplicates) > 0,
	}
}

// FromCatalogScore lifts a persisted score back into the engine's working
// representation. The Duplicates list is left empty: grade computation only
// needs the boolean flag, and any rule re-application rebuilds it fresh.
func FromCatalogScore(s catalog.TidyScore) Score {
	return Score{Misnamed: s.Misnamed, Unused: s.Unused}
}
