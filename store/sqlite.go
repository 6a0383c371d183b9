// Package store persists loaded weekly batches so separate runs share one session.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/orayew2002/rollbook/domain"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SQLite keeps batches in a local database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies migrations.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS batches (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			day TEXT NOT NULL,
			source TEXT NOT NULL,
			loaded_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS day_records (
			batch_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			student_id TEXT NOT NULL,
			absences INTEGER NOT NULL,
			leaves INTEGER NOT NULL,
			PRIMARY KEY (batch_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_batches_day ON batches(day);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveBatches stores batches in one transaction.
func (s *SQLite) SaveBatches(ctx context.Context, batches []domain.Batch) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	batchStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO batches (id, day, source, loaded_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer batchStmt.Close()

	recordStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO day_records (batch_id, position, name, student_id, absences, leaves)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer recordStmt.Close()

	for _, b := range batches {
		if _, err = batchStmt.ExecContext(ctx, b.ID, string(b.Day), b.Source, b.LoadedAt.Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert batch %s: %w", b.ID, err)
		}
		for i, r := range b.Records {
			if _, err = recordStmt.ExecContext(ctx, b.ID, i, r.Key.Name, r.Key.ID, r.Absences, r.Leaves); err != nil {
				return fmt.Errorf("insert record %d of %s: %w", i, b.ID, err)
			}
		}
	}

	return tx.Commit()
}

// LoadBatches returns every stored batch in load order.
func (s *SQLite) LoadBatches(ctx context.Context) ([]domain.Batch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, day, source, loaded_at FROM batches ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []domain.Batch
	index := make(map[string]int)
	for rows.Next() {
		var b domain.Batch
		var day, loadedAt string
		if err := rows.Scan(&b.ID, &day, &b.Source, &loadedAt); err != nil {
			return nil, err
		}
		b.Day = domain.Day(day)
		if t, err := time.Parse(time.RFC3339Nano, loadedAt); err == nil {
			b.LoadedAt = t
		}
		index[b.ID] = len(batches)
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	recs, err := s.db.QueryContext(ctx,
		`SELECT batch_id, name, student_id, absences, leaves FROM day_records ORDER BY batch_id, position`)
	if err != nil {
		return nil, err
	}
	defer recs.Close()

	for recs.Next() {
		var batchID string
		var r domain.DayRecord
		if err := recs.Scan(&batchID, &r.Key.Name, &r.Key.ID, &r.Absences, &r.Leaves); err != nil {
			return nil, err
		}
		i, ok := index[batchID]
		if !ok {
			continue
		}
		r.Day = batches[i].Day
		batches[i].Records = append(batches[i].Records, r)
	}

	return batches, recs.Err()
}

// Reset deletes every stored batch.
func (s *SQLite) Reset(ctx context.Context) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM day_records`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM batches`); err != nil {
		return err
	}
	return tx.Commit()
}
