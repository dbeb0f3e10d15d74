// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package catalog

import (
	"context"
	"fmt"
)

// Stats is a point-in-time aggregate snapshot of the catalog, consumed by
// the metrics collector. GradeCounts is indexed by grade (0..5, 0 best).
type Stats struct {
	TotalFiles     int64
	ScoredFiles    int64
	DuplicateFiles int64
	GradeCounts    [6]int64
}

// Stats computes the current aggregate snapshot. It runs four simple
// queries against the read pool rather than a single query, favoring
// clarity over round-trips since this only runs on the metrics scrape path.
func (db *DB) Stats(ctx context.Context) (Stats, error) {
	var s Stats

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&s.TotalFiles); err != nil {
		return Stats{}, fmt.Errorf("catalog: stats total files: %w", err)
	}

	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tidy_scores`).Scan(&s.ScoredFiles); err != nil {
		return Stats{}, fmt.Errorf("catalog: stats scored files: %w", err)
	}

	if err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM files f JOIN tidy_scores s ON s.id = f.tidy_score_id WHERE s.duplicated = 1
	`).Scan(&s.DuplicateFiles); err != nil {
		return Stats{}, fmt.Errorf("catalog: stats duplicate files: %w", err)
	}

	rows, err := db.QueryContext(ctx, `SELECT grade, COUNT(*) FROM tidy_scores GROUP BY grade`)
	if err != nil {
		return Stats{}, fmt.Errorf("catalog: stats grade distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var grade int
		var count int64
		if err := rows.Scan(&grade, &count); err != nil {
			return Stats{}, fmt.Errorf("catalog: stats grade distribution: %w", err)
		}
		if grade >= 0 && grade < len(s.GradeCounts) {
			s.GradeCounts[grade] = count
		}
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("catalog: stats grade distribution: %w", err)
	}

	return s, nil
}
