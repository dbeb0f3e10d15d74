// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package tidyrule

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/tidybee-agent/internal/catalog"
)

func newTestCatalog(t *testing.T) *catalog.DB {
	t.Helper()
	db, err := catalog.New(filepath.Join(t.TempDir(), "catalog.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestZeroRuleManifestProducesDefaultScore(t *testing.T) {
	e := NewEngine(nil)
	cat := newTestCatalog(t)
	ctx := t.Context()

	rec, err := cat.AddFile(ctx, catalog.FileRecord{
		PrettyPath: "a.txt", AbsolutePath: "/a.txt", Size: 10,
		LastModified: time.Now(), LastAccessed: time.Now(),
	})
	require.NoError(t, err)

	score := e.Apply(ctx, rec, cat)
	assert.False(t, score.Misnamed)
	assert.False(t, score.Unused)
	assert.Empty(t, score.Duplicates)
	assert.Equal(t, 0, e.Grade(score.ToCatalogScore()))
	assert.Equal(t, "A", score.ToCatalogScore().Letter())
}

func TestMisnamedRule(t *testing.T) {
	e := NewEngine([]Rule{
		{Name: "pdf-only", Scope: ScopeAll, Weight: 1, Kind: KindMisnamed, Params: map[string]any{"pattern": `^.*\.pdf$`}},
	})
	cat := newTestCatalog(t)
	ctx := t.Context()

	txt, err := cat.AddFile(ctx, catalog.FileRecord{PrettyPath: "docs/report.txt", AbsolutePath: "/docs/report.txt"})
	require.NoError(t, err)
	pdf, err := cat.AddFile(ctx, catalog.FileRecord{PrettyPath: "docs/report.pdf", AbsolutePath: "/docs/report.pdf"})
	require.NoError(t, err)

	assert.True(t, e.Apply(ctx, txt, cat).Misnamed)
	assert.False(t, e.Apply(ctx, pdf, cat).Misnamed)
}

func TestMisnamedRuleWithMissingPatternLeavesScoreUnchanged(t *testing.T) {
	e := NewEngine([]Rule{
		{Name: "broken", Scope: ScopeAll, Weight: 1, Kind: KindMisnamed, Params: map[string]any{}},
	})
	cat := newTestCatalog(t)
	ctx := t.Context()

	rec, err := cat.AddFile(ctx, catalog.FileRecord{PrettyPath: "a.txt", AbsolutePath: "/a.txt"})
	require.NoError(t, err)

	score := e.Apply(ctx, rec, cat)
	assert.False(t, score.Misnamed)
}

func TestPerishedRule(t *testing.T) {
	max, err := time.Parse(time.RFC3339, "2099-01-01T00:00:00+00:00")
	require.NoError(t, err)

	e := NewEngine([]Rule{
		{Name: "stale", Scope: ScopeAll, Weight: 1, Kind: KindPerished, Params: map[string]any{"max": "2099-01-01T00:00:00+00:00"}},
	})
	cat := newTestCatalog(t)
	ctx := t.Context()

	rec, err2 := cat.AddFile(ctx, catalog.FileRecord{
		PrettyPath: "a.txt", AbsolutePath: "/a.txt",
		LastAccessed: time.Now(), LastModified: time.Now(),
	})
	require.NoError(t, err2)
	require.True(t, rec.LastAccessed.Before(max))

	score := e.Apply(ctx, rec, cat)
	assert.True(t, score.Unused)
}

func TestPerishedRuleWithBadMaxReturnsEmptyScore(t *testing.T) {
	e := NewEngine([]Rule{
		{Name: "stale", Scope: ScopeAll, Weight: 1, Kind: KindPerished, Params: map[string]any{"max": "not-a-date"}},
	})
	cat := newTestCatalog(t)
	ctx := t.Context()

	rec, err := cat.AddFile(ctx, catalog.FileRecord{PrettyPath: "a.txt", AbsolutePath: "/a.txt"})
	require.NoError(t, err)

	score := e.Apply(ctx, rec, cat)
	assert.Equal(t, Score{}, score)
}

func TestDuplicatedRuleLinksContentEqualFiles(t *testing.T) {
	e := NewEngine([]Rule{
		{Name: "dup", Scope: ScopeAll, Weight: 1, Kind: KindDuplicated},
	})
	cat := newTestCatalog(t)
	ctx := t.Context()

	a, err := cat.AddFile(ctx, catalog.FileRecord{PrettyPath: "a.txt", AbsolutePath: "/a.txt", ContentHash: "same"})
	require.NoError(t, err)
	b, err := cat.AddFile(ctx, catalog.FileRecord{PrettyPath: "b.txt", AbsolutePath: "/b.txt", ContentHash: "same"})
	require.NoError(t, err)

	scoreA := e.Apply(ctx, a, cat)
	require.Len(t, scoreA.Duplicates, 1)
	assert.Equal(t, b.ID, scoreA.Duplicates[0].ID)
	require.NoError(t, cat.SetScore(ctx, a.AbsolutePath, scoreA.ToCatalogScore()))

	scoreB := e.Apply(ctx, b, cat)
	require.Len(t, scoreB.Duplicates, 1)
	assert.Equal(t, a.ID, scoreB.Duplicates[0].ID)
	require.NoError(t, cat.SetScore(ctx, b.AbsolutePath, scoreB.ToCatalogScore()))

	dupsA, err := cat.FetchDuplicates(ctx, a.AbsolutePath)
	require.NoError(t, err)
	require.Len(t, dupsA, 1)
	assert.Equal(t, b.ID, dupsA[0].ID)

	dupsB, err := cat.FetchDuplicates(ctx, b.AbsolutePath)
	require.NoError(t, err)
	require.Len(t, dupsB, 1)
	assert.Equal(t, a.ID, dupsB[0].ID)

	gradeA := e.Grade(scoreA.ToCatalogScore())
	gradeB := e.Grade(scoreB.ToCatalogScore())
	assert.Equal(t, 1, gradeA)
	assert.Equal(t, 1, gradeB)
	gradedA := scoreA.ToCatalogScore()
	gradedA.Grade = gradeA
	assert.Equal(t, "B", gradedA.Letter())
}

func TestGradeUsesIntegerDivisionPreservingOriginalBehavior(t *testing.T) {
	e := NewEngine([]Rule{
		{Name: "weight-2-misnamed", Scope: ScopeAll, Weight: 2, Kind: KindMisnamed},
	})

	// A weight > 1 rule contributes floor(1/weight) = 0, by design decision:
	// integer division from the original implementation is preserved as-is.
	g := e.Grade(catalog.TidyScore{Misnamed: true})
	assert.Equal(t, 0, g)
}

func TestGradeClampsToFive(t *testing.T) {
	rules := make([]Rule, 0, 10)
	for i := 0; i < 10; i++ {
		rules = append(rules, Rule{Name: "r", Scope: ScopeAll, Weight: 1, Kind: KindMisnamed})
	}
	e := NewEngine(rules)

	g := e.Grade(catalog.TidyScore{Misnamed: true})
	assert.Equal(t, 5, g)
}

func TestRuleScopeRestrictsApplication(t *testing.T) {
	e := NewEngine([]Rule{
		{Name: "scoped", Scope: "/only-here", Weight: 1, Kind: KindMisnamed, Params: map[string]any{"pattern": "^$"}},
	})
	cat := newTestCatalog(t)
	ctx := t.Context()

	inScope, err := cat.AddFile(ctx, catalog.FileRecord{PrettyPath: "x", AbsolutePath: "/only-here/x.txt"})
	require.NoError(t, err)
	outOfScope, err := cat.AddFile(ctx, catalog.FileRecord{PrettyPath: "x", AbsolutePath: "/elsewhere/x.txt"})
	require.NoError(t, err)

	assert.True(t, e.Apply(ctx, inScope, cat).Misnamed)
	assert.False(t, e.Apply(ctx, outOfScope, cat).Misnamed)
}
