package weekly

import (
	"context"
	"fmt"

	"github.com/orayew2002/rollbook/domain"
)

// Store persists committed batches between runs.
type Store interface {
	SaveBatches(ctx context.Context, batches []domain.Batch) error
	LoadBatches(ctx context.Context) ([]domain.Batch, error)
	Reset(ctx context.Context) error
	Close() error
}

// Session holds the batches loaded so far. A nil store keeps everything in memory.
type Session struct {
	schema  Schema
	store   Store
	batches []domain.Batch
}

// OpenSession restores previously committed batches from store.
func OpenSession(ctx context.Context, store Store, schema Schema) (*Session, error) {
	s := &Session{schema: schema, store: store}
	if store == nil {
		return s, nil
	}

	batches, err := store.LoadBatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load session: %v", domain.ErrIO, err)
	}
	s.batches = batches

	return s, nil
}

// AddDay extracts every file for day. If any file fails nothing is committed.
// It returns the number of files loaded.
func (s *Session) AddDay(ctx context.Context, day domain.Day, paths []string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	loaded := make([]domain.Batch, 0, len(paths))
	for _, path := range paths {
		b, err := ExtractFile(path, day, s.schema)
		if err != nil {
			return 0, err
		}
		loaded = append(loaded, b)
	}

	if s.store != nil {
		if err := s.store.SaveBatches(ctx, loaded); err != nil {
			return 0, fmt.Errorf("%w: save %s: %v", domain.ErrIO, day, err)
		}
	}

	s.batches = append(s.batches, loaded...)
	return len(loaded), nil
}

// Aggregate recomputes every student row from the loaded batches.
func (s *Session) Aggregate() []domain.AggregateRow {
	return Aggregate(s.batches)
}

// Flagged is Aggregate restricted to students with any absence or leave.
func (s *Session) Flagged() []domain.AggregateRow {
	var out []domain.AggregateRow
	for _, row := range s.Aggregate() {
		if row.Flagged() {
			out = append(out, row)
		}
	}
	return out
}

// Loaded returns the number of files loaded for day.
func (s *Session) Loaded(day domain.Day) int {
	n := 0
	for _, b := range s.batches {
		if b.Day == day {
			n++
		}
	}
	return n
}

// Batches returns a copy of the loaded batches.
func (s *Session) Batches() []domain.Batch {
	out := make([]domain.Batch, len(s.batches))
	copy(out, s.batches)
	return out
}

// Reset drops every loaded batch, in memory and in the store.
func (s *Session) Reset(ctx context.Context) error {
	if s.store != nil {
		if err := s.store.Reset(ctx); err != nil {
			return fmt.Errorf("%w: reset session: %v", domain.ErrIO, err)
		}
	}
	s.batches = nil
	return nil
}
