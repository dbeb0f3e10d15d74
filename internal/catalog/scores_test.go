// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetScoreCreatesThenUpdates(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()

	f, err := db.AddFile(ctx, sampleFile("/a.txt"))
	require.NoError(t, err)

	require.NoError(t, db.SetScore(ctx, f.AbsolutePath, TidyScore{Misnamed: true, Grade: 1}))

	score, ok, err := db.GetScore(ctx, f.AbsolutePath)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, score.Misnamed)
	assert.Equal(t, 1, score.Grade)
	firstID := score.ID

	require.NoError(t, db.SetScore(ctx, f.AbsolutePath, TidyScore{Misnamed: false, Unused: true, Grade: 3}))

	score, ok, err = db.GetScore(ctx, f.AbsolutePath)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, firstID, score.ID, "updating a score must reuse the existing row")
	assert.False(t, score.Misnamed)
	assert.True(t, score.Unused)
	assert.Equal(t, 3, score.Grade)
}

func TestGetScoreWithoutScoreReturnsFalse(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()

	f, err := db.AddFile(ctx, sampleFile("/a.txt"))
	require.NoError(t, err)

	_, ok, err := db.GetScore(ctx, f.AbsolutePath)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateGradeAppliesGradeFunc(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()

	f, err := db.AddFile(ctx, sampleFile("/a.txt"))
	require.NoError(t, err)
	require.NoError(t, db.SetScore(ctx, f.AbsolutePath, TidyScore{Misnamed: true, Grade: 0}))

	err = db.UpdateGrade(ctx, f.AbsolutePath, func(s TidyScore) int {
		if s.Misnamed {
			return 4
		}
		return 0
	})
	require.NoError(t, err)

	score, ok, err := db.GetScore(ctx, f.AbsolutePath)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, score.Grade)
}

func TestAddDuplicateIsSymmetricAndIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()

	a, err := db.AddFile(ctx, sampleFile("/a.txt"))
	require.NoError(t, err)
	b, err := db.AddFile(ctx, sampleFile("/b.txt"))
	require.NoError(t, err)

	require.NoError(t, db.AddDuplicate(ctx, a.AbsolutePath, b.AbsolutePath))
	require.NoError(t, db.AddDuplicate(ctx, b.AbsolutePath, a.AbsolutePath), "adding the reverse link must be a no-op, not a second row")

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(1) FROM duplicates").Scan(&count))
	assert.Equal(t, 1, count)

	dupsOfA, err := db.FetchDuplicates(ctx, a.AbsolutePath)
	require.NoError(t, err)
	require.Len(t, dupsOfA, 1)
	assert.Equal(t, b.ID, dupsOfA[0].ID)

	dupsOfB, err := db.FetchDuplicates(ctx, b.AbsolutePath)
	require.NoError(t, err)
	require.Len(t, dupsOfB, 1)
	assert.Equal(t, a.ID, dupsOfB[0].ID)
}

func TestAddDuplicateSetsDuplicatedFlagOnOriginalSideOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := t.Context()

	a, err := db.AddFile(ctx, sampleFile("/a.txt"))
	require.NoError(t, err)
	b, err := db.AddFile(ctx, sampleFile("/b.txt"))
	require.NoError(t, err)

	require.NoError(t, db.AddDuplicate(ctx, a.AbsolutePath, b.AbsolutePath))

	scoreA, ok, err := db.GetScore(ctx, a.AbsolutePath)
	require.NoError(t, err)
	require.True(t, ok, "add_duplicate must create a score row when none existed")
	assert.True(t, scoreA.Duplicated)

	_, ok, err = db.GetScore(ctx, b.AbsolutePath)
	require.NoError(t, err)
	assert.False(t, ok, "the duplicate side gets no score until it is passed as the original on a later call")

	// The orchestrator converges both sides by invoking add_duplicate once
	// per newly observed pairing; the pair's second scan calls it with the
	// arguments reversed.
	require.NoError(t, db.AddDuplicate(ctx, b.AbsolutePath, a.AbsolutePath))

	scoreB, ok, err := db.GetScore(ctx, b.AbsolutePath)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, scoreB.Duplicated)
}

func TestFetchDuplicatesOnUnindexedFileErrors(t *testing.T) {
	db := newTestDB(t)
	_, err := db.FetchDuplicates(t.Context(), "/missing.txt")
	assert.Error(t, err)
}
