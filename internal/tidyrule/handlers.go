// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package tidyrule

import (
	"context"
	"regexp"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/tidybee-agent/internal/catalog"
)

// handler applies one rule to a record, threading the score from the prior
// rule in file order through to the next.
type handler func(ctx context.Context, rec catalog.FileRecord, cat *catalog.DB, params map[string]any, score Score) Score

var handlers = map[Kind]handler{
	KindMisnamed:   handleMisnamed,
	KindDuplicated: handleDuplicated,
	KindPerished:   handlePerished,
}

// handleMisnamed flags a record whose pretty path doesn't match the rule's
// pattern. A missing or non-string pattern logs a warning and leaves score
// untouched.
func handleMisnamed(ctx context.Context, rec catalog.FileRecord, cat *catalog.DB, params map[string]any, score Score) Score {
	raw, ok := params["pattern"]
	if !ok {
		log.Warn().Str("path", rec.PrettyPath).Msg("tidyrule: misnamed rule missing pattern param")
		return score
	}
	pattern, ok := raw.(string)
	if !ok {
		log.Warn().Str("path", rec.PrettyPath).Msg("tidyrule: misnamed rule pattern is not a string")
		return score
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		log.Warn().Err(err).Str("pattern", pattern).Msg("tidyrule: misnamed rule pattern does not compile")
		return score
	}

	if !re.MatchString(rec.PrettyPath) {
		score.Misnamed = true
	}
	return score
}

// handleDuplicated compares rec's content hash against every other catalog
// record, recording a DuplicateLink for each match. Catalog errors abort
// this rule's contribution (returning the prior score unchanged) without
// aborting other rules.
func handleDuplicated(ctx context.Context, rec catalog.FileRecord, cat *catalog.DB, params map[string]any, score Score) Score {
	if !rec.HasContentHash() {
		return score
	}

	prior := score

	all, err := cat.GetAll(ctx)
	if err != nil {
		log.Warn().Err(err).Str("path", rec.PrettyPath).Msg("tidyrule: duplicated rule: catalog scan failed")
		return prior
	}

	seen := make(map[string]bool, len(score.Duplicates))
	for _, d := range score.Duplicates {
		seen[d.AbsolutePath] = true
	}

	for _, fws := range all {
		other := fws.File
		if other.AbsolutePath == rec.AbsolutePath {
			continue
		}
		if !other.ContentEqual(rec) {
			continue
		}

		if err := cat.AddDuplicate(ctx, rec.AbsolutePath, other.AbsolutePath); err != nil {
			log.Warn().Err(err).Str("path", rec.PrettyPath).Str("other", other.AbsolutePath).
				Msg("tidyrule: duplicated rule: failed to record link")
			return prior
		}

		if !seen[other.AbsolutePath] {
			seen[other.AbsolutePath] = true
			score.Duplicates = append(score.Duplicates, other)
		}
	}

	return score
}

// handlePerished flags a record as unused when its last-accessed time
// precedes the rule's max instant. Parse or missing-key failures log a
// warning and return a fresh, empty score rather than leaving it unchanged.
func handlePerished(ctx context.Context, rec catalog.FileRecord, cat *catalog.DB, params map[string]any, score Score) Score {
	raw, ok := params["max"]
	if !ok {
		log.Warn().Str("path", rec.PrettyPath).Msg("tidyrule: perished rule missing max param")
		return Score{}
	}
	maxStr, ok := raw.(string)
	if !ok {
		log.Warn().Str("path", rec.PrettyPath).Msg("tidyrule: perished rule max is not a string")
		return Score{}
	}

	max, err := time.Parse(time.RFC3339, maxStr)
	if err != nil {
		log.Warn().Err(err).Str("max", maxStr).Msg("tidyrule: perished rule max does not parse as ISO-8601")
		return Score{}
	}

	if rec.LastAccessed.Before(max) {
		score.Unused = true
	}
	return score
}
