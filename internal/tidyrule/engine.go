// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package tidyrule

import (
	"context"
	"strings"

	"github.com/autobrr/tidybee-agent/internal/catalog"
	"github.com/autobrr/tidybee-agent/pkg/pathcmp"
)

// Engine holds an immutable, ordered list of Rules loaded once at startup.
type Engine struct {
	rules []Rule
}

// NewEngine wraps a fixed rule list. Used directly by tests; production
// callers go through LoadManifest.
func NewEngine(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the engine's loaded rules. The slice must not be mutated.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Apply runs every rule whose scope matches rec's path against rec,
// sequentially, each handler receiving the score produced by the prior one.
func (e *Engine) Apply(ctx context.Context, rec catalog.FileRecord, cat *catalog.DB) Score {
	score := Score{}
	for _, rule := range e.rules {
		if !ruleMatches(rule, rec) {
			continue
		}
		h, ok := handlers[rule.Kind]
		if !ok {
			continue
		}
		score = h(ctx, rec, cat, rule.Params, score)
	}
	return score
}

func ruleMatches(rule Rule, rec catalog.FileRecord) bool {
	if rule.AppliesToAll() {
		return true
	}
	scope := pathcmp.NormalizePath(rule.Scope)
	path := pathcmp.NormalizePath(rec.AbsolutePath)
	return strings.HasPrefix(path, scope)
}

// GradeFunc returns a catalog.GradeFunc bound to this engine's rule set.
// Grade is a pure function of the score's three flags and the loaded rule
// weights, independent of scope: every rule of a matching kind contributes,
// not just ones whose scope covers the record in question.
func (e *Engine) GradeFunc() catalog.GradeFunc {
	return e.Grade
}

// Grade computes the integer grade in [0,5] for score under this engine's
// loaded rules.
//
// Accumulation uses integer division (1 / rule.Weight) exactly as observed
// in the original implementation; for any weight > 1 a matching rule
// contributes 0. This is preserved deliberately rather than "fixed" to a
// floating-point reciprocal — see the design notes for the reasoning.
func (e *Engine) Grade(score catalog.TidyScore) int {
	var g int
	for _, rule := range e.rules {
		switch rule.Kind {
		case KindMisnamed:
			if !score.Misnamed {
				continue
			}
		case KindDuplicated:
			if !score.Duplicated {
				continue
			}
		case KindPerished:
			if !score.Unused {
				continue
			}
		default:
			continue
		}
		weight := rule.Weight
		if weight == 0 {
			weight = 1
		}
		g += int(1 / weight)
	}

	if g < 0 {
		g = 0
	}
	if g > 5 {
		g = 5
	}
	return g
}
