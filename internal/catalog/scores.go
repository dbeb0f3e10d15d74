// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// GetScore returns the tidy score attached to the file at absolutePath. The
// second return value is false if the file is indexed but has no score yet,
// or if the file isn't indexed at all — callers that need to distinguish
// the two should call getFileByAbsolutePath-equivalent lookups separately;
// in practice every caller treats "no score" and "no file" the same way
// (nothing to show yet).
func (db *DB) GetScore(ctx context.Context, absolutePath string) (*TidyScore, bool, error) {
	var s TidyScore
	err := db.QueryRowContext(ctx, `
		SELECT s.id, s.misnamed, s.unused, s.duplicated, s.grade
		FROM files f
		JOIN tidy_scores s ON s.id = f.tidy_score_id
		WHERE f.absolute_path = ?
	`, absolutePath).Scan(&s.ID, &s.Misnamed, &s.Unused, &s.Duplicated, &s.Grade)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("catalog: get score %s: %w", absolutePath, err)
	}
	return &s, true, nil
}

// SetScore attaches score to the file at absolutePath, creating the
// tidy_scores row on first use and updating it in place thereafter. The
// Duplicated field is stored as given; the orchestrator passes the flag the
// rule engine computed (true when its Duplicated rule found content-equal
// files).
func (db *DB) SetScore(ctx context.Context, absolutePath string, score TidyScore) error {
	file, ok, err := db.getFileByAbsolutePath(ctx, absolutePath)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("catalog: set score %s: not indexed", absolutePath)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: set score %s: %w", absolutePath, err)
	}
	defer tx.Rollback()

	if file.TidyScoreID == 0 {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO tidy_scores (misnamed, unused, duplicated, grade) VALUES (?, ?, ?, ?)
		`, score.Misnamed, score.Unused, score.Duplicated, score.Grade)
		if err != nil {
			return fmt.Errorf("catalog: insert score for %s: %w", absolutePath, err)
		}
		scoreID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("catalog: insert score for %s: %w", absolutePath, err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE files SET tidy_score_id = ? WHERE id = ?`, scoreID, file.ID); err != nil {
			return fmt.Errorf("catalog: attach score to %s: %w", absolutePath, err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, `
			UPDATE tidy_scores SET misnamed = ?, unused = ?, duplicated = ?, grade = ? WHERE id = ?
		`, score.Misnamed, score.Unused, score.Duplicated, score.Grade, file.TidyScoreID); err != nil {
			return fmt.Errorf("catalog: update score for %s: %w", absolutePath, err)
		}
	}

	return tx.Commit()
}

// UpdateGrade recomputes and persists only the grade field of an
// already-attached tidy score, leaving misnamed/unused/duplicated as-is.
// gradeFn is supplied by the rule engine so catalog stays free of a
// dependency on it.
func (db *DB) UpdateGrade(ctx context.Context, absolutePath string, gradeFn GradeFunc) error {
	score, ok, err := db.GetScore(ctx, absolutePath)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("catalog: update grade %s: no score attached", absolutePath)
	}

	grade := gradeFn(*score)
	_, err = db.ExecContext(ctx, `UPDATE tidy_scores SET grade = ? WHERE id = ?`, grade, score.ID)
	if err != nil {
		return fmt.Errorf("catalog: update grade %s: %w", absolutePath, err)
	}
	return nil
}

// AddDuplicate records that the files at originalPath and duplicatePath
// share content. The link is stored directionally but FetchDuplicates
// treats it symmetrically. A link that already exists (in either
// direction) is not inserted again, but the original side's score is still
// marked duplicated.
//
// A single call marks only the original side's score, per spec: the
// orchestrator invokes add_duplicate once per newly observed pairing, so
// the duplicate side converges to duplicated=true on the pair's second
// scan, when it becomes the original.
func (db *DB) AddDuplicate(ctx context.Context, originalPath, duplicatePath string) error {
	original, ok, err := db.getFileByAbsolutePath(ctx, originalPath)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("catalog: add duplicate: %s not indexed", originalPath)
	}
	duplicate, ok, err := db.getFileByAbsolutePath(ctx, duplicatePath)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("catalog: add duplicate: %s not indexed", duplicatePath)
	}

	existing, err := db.linkExists(ctx, original.ID, duplicate.ID)
	if err != nil {
		return err
	}
	if !existing {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO duplicates (original_id, duplicate_id) VALUES (?, ?)
		`, original.ID, duplicate.ID); err != nil {
			return fmt.Errorf("catalog: add duplicate %s <-> %s: %w", originalPath, duplicatePath, err)
		}
	}

	return db.markDuplicated(ctx, original)
}

// markDuplicated sets duplicated=true on f's tidy score, creating the score
// row if f has none yet.
func (db *DB) markDuplicated(ctx context.Context, f FileRecord) error {
	if f.TidyScoreID == 0 {
		res, err := db.ExecContext(ctx, `
			INSERT INTO tidy_scores (misnamed, unused, duplicated, grade) VALUES (0, 0, 1, 0)
		`)
		if err != nil {
			return fmt.Errorf("catalog: create score for %s: %w", f.AbsolutePath, err)
		}
		scoreID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("catalog: create score for %s: %w", f.AbsolutePath, err)
		}
		if _, err := db.ExecContext(ctx, `UPDATE files SET tidy_score_id = ? WHERE id = ?`, scoreID, f.ID); err != nil {
			return fmt.Errorf("catalog: attach score to %s: %w", f.AbsolutePath, err)
		}
		return nil
	}

	_, err := db.ExecContext(ctx, `UPDATE tidy_scores SET duplicated = 1 WHERE id = ?`, f.TidyScoreID)
	if err != nil {
		return fmt.Errorf("catalog: mark duplicated %s: %w", f.AbsolutePath, err)
	}
	return nil
}

func (db *DB) linkExists(ctx context.Context, a, b int64) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM duplicates
		WHERE (original_id = ? AND duplicate_id = ?) OR (original_id = ? AND duplicate_id = ?)
	`, a, b, b, a).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("catalog: check duplicate link: %w", err)
	}
	return n > 0, nil
}

// FetchDuplicates returns every file linked to absolutePath via the
// duplicates relation, from either direction.
func (db *DB) FetchDuplicates(ctx context.Context, absolutePath string) ([]FileRecord, error) {
	file, ok, err := db.getFileByAbsolutePath(ctx, absolutePath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("catalog: fetch duplicates: %s not indexed", absolutePath)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT f.id, f.pretty_path, f.absolute_path, f.size, COALESCE(f.content_hash, ''),
		       f.last_modified, f.last_accessed, COALESCE(f.tidy_score_id, 0)
		FROM files f
		WHERE f.id IN (
			SELECT duplicate_id FROM duplicates WHERE original_id = ?
			UNION
			SELECT original_id FROM duplicates WHERE duplicate_id = ?
		)
	`, file.ID, file.ID)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch duplicates for %s: %w", absolutePath, err)
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		var (
			f            FileRecord
			lastModified string
			lastAccessed string
		)
		if err := rows.Scan(&f.ID, &f.PrettyPath, &f.AbsolutePath, &f.Size, &f.ContentHash,
			&lastModified, &lastAccessed, &f.TidyScoreID); err != nil {
			return nil, fmt.Errorf("catalog: fetch duplicates for %s: %w", absolutePath, err)
		}
		f.LastModified, err = parseTime(lastModified)
		if err != nil {
			return nil, err
		}
		f.LastAccessed, err = parseTime(lastAccessed)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
