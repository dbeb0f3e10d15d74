// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// AddFile inserts a new file record, or returns the existing record
// unchanged if absolute_path is already indexed — add_file is idempotent so
// callers (notably the startup listing pass and the fsobserver's Created
// handler racing a debounce flush) never need to check existence first.
func (db *DB) AddFile(ctx context.Context, f FileRecord) (FileRecord, error) {
	existing, ok, err := db.getFileByAbsolutePath(ctx, f.AbsolutePath)
	if err != nil {
		return FileRecord{}, err
	}
	if ok {
		return existing, nil
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO files (pretty_path, absolute_path, size, content_hash, last_modified, last_accessed)
		VALUES (?, ?, ?, NULLIF(?, ''), ?, ?)
	`, f.PrettyPath, f.AbsolutePath, f.Size, f.ContentHash, f.LastModified.UTC().Format(timeLayout), f.LastAccessed.UTC().Format(timeLayout))
	if err != nil {
		return FileRecord{}, fmt.Errorf("catalog: add file %s: %w", f.AbsolutePath, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return FileRecord{}, fmt.Errorf("catalog: add file %s: %w", f.AbsolutePath, err)
	}

	f.ID = id
	return f, nil
}

// RemoveFile deletes the file at absolutePath along with its tidy score.
// Rows in duplicates referencing the file cascade via the files FK; the
// tidy_scores row does not (files.tidy_score_id uses ON DELETE SET NULL, the
// wrong direction for this cascade), so it is deleted explicitly in the same
// transaction. Removing an unindexed path is a no-op, not an error.
func (db *DB) RemoveFile(ctx context.Context, absolutePath string) error {
	existing, ok, err := db.getFileByAbsolutePath(ctx, absolutePath)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("catalog: remove file %s: %w", absolutePath, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, existing.ID); err != nil {
		return fmt.Errorf("catalog: remove file %s: %w", absolutePath, err)
	}
	if existing.TidyScoreID != 0 {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tidy_scores WHERE id = ?`, existing.TidyScoreID); err != nil {
			return fmt.Errorf("catalog: remove tidy score for %s: %w", absolutePath, err)
		}
	}

	return tx.Commit()
}

// UpdatePath renames a file's absolute and pretty paths in place, leaving
// its id, size, content hash, and tidy score untouched — a Rename event
// never resets tidiness, since the content didn't change.
func (db *DB) UpdatePath(ctx context.Context, oldAbsolutePath, newAbsolutePath, newPrettyPath string) error {
	res, err := db.ExecContext(ctx, `
		UPDATE files SET absolute_path = ?, pretty_path = ? WHERE absolute_path = ?
	`, newAbsolutePath, newPrettyPath, oldAbsolutePath)
	if err != nil {
		return fmt.Errorf("catalog: rename %s -> %s: %w", oldAbsolutePath, newAbsolutePath, err)
	}
	return requireRowsAffected(res, "catalog: rename %s -> %s: not indexed", oldAbsolutePath, newAbsolutePath)
}

// UpdateFileInfo refreshes the size, content hash, and timestamps of an
// already-indexed file, keyed by its current absolute path. It does not
// touch the tidy score; callers recompute tidiness separately once the new
// content hash is known (duplicate status may have changed).
func (db *DB) UpdateFileInfo(ctx context.Context, f FileRecord) error {
	res, err := db.ExecContext(ctx, `
		UPDATE files
		SET size = ?, content_hash = NULLIF(?, ''), last_modified = ?, last_accessed = ?
		WHERE absolute_path = ?
	`, f.Size, f.ContentHash, f.LastModified.UTC().Format(timeLayout), f.LastAccessed.UTC().Format(timeLayout), f.AbsolutePath)
	if err != nil {
		return fmt.Errorf("catalog: update file info %s: %w", f.AbsolutePath, err)
	}
	return requireRowsAffected(res, "catalog: update file info %s: not indexed", f.AbsolutePath)
}

// GetAll returns every indexed file along with its tidy score, if any.
func (db *DB) GetAll(ctx context.Context) ([]FileWithScore, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT f.id, f.pretty_path, f.absolute_path, f.size, COALESCE(f.content_hash, ''),
		       f.last_modified, f.last_accessed, COALESCE(f.tidy_score_id, 0),
		       s.id, s.misnamed, s.unused, s.duplicated, s.grade
		FROM files f
		LEFT JOIN tidy_scores s ON s.id = f.tidy_score_id
		ORDER BY f.id
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog: get all files: %w", err)
	}
	defer rows.Close()

	var out []FileWithScore
	for rows.Next() {
		var (
			f                      FileRecord
			lastModified           string
			lastAccessed           string
			scoreID                sql.NullInt64
			misnamed, unused, dup  sql.NullBool
			grade                  sql.NullInt64
		)
		if err := rows.Scan(&f.ID, &f.PrettyPath, &f.AbsolutePath, &f.Size, &f.ContentHash,
			&lastModified, &lastAccessed, &f.TidyScoreID,
			&scoreID, &misnamed, &unused, &dup, &grade); err != nil {
			return nil, fmt.Errorf("catalog: get all files: %w", err)
		}

		f.LastModified, err = parseTime(lastModified)
		if err != nil {
			return nil, err
		}
		f.LastAccessed, err = parseTime(lastAccessed)
		if err != nil {
			return nil, err
		}

		fws := FileWithScore{File: f}
		if scoreID.Valid {
			fws.Score = &TidyScore{
				ID:         scoreID.Int64,
				Misnamed:   misnamed.Bool,
				Unused:     unused.Bool,
				Duplicated: dup.Bool,
				Grade:      int(grade.Int64),
			}
		}
		out = append(out, fws)
	}
	return out, rows.Err()
}

func (db *DB) getFileByAbsolutePath(ctx context.Context, absolutePath string) (FileRecord, bool, error) {
	var (
		f            FileRecord
		lastModified string
		lastAccessed string
	)
	err := db.QueryRowContext(ctx, `
		SELECT id, pretty_path, absolute_path, size, COALESCE(content_hash, ''),
		       last_modified, last_accessed, COALESCE(tidy_score_id, 0)
		FROM files WHERE absolute_path = ?
	`, absolutePath).Scan(&f.ID, &f.PrettyPath, &f.AbsolutePath, &f.Size, &f.ContentHash,
		&lastModified, &lastAccessed, &f.TidyScoreID)
	if err == sql.ErrNoRows {
		return FileRecord{}, false, nil
	}
	if err != nil {
		return FileRecord{}, false, fmt.Errorf("catalog: lookup %s: %w", absolutePath, err)
	}

	f.LastModified, err = parseTime(lastModified)
	if err != nil {
		return FileRecord{}, false, err
	}
	f.LastAccessed, err = parseTime(lastAccessed)
	if err != nil {
		return FileRecord{}, false, err
	}
	return f, true, nil
}

func requireRowsAffected(res sql.Result, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf(format, args...)
	}
	return nil
}
