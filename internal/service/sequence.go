package service

import (
	"context"

	"fabtrack/internal/apperrors"
	"fabtrack/internal/domain/parts"
	"fabtrack/internal/store"

	"gorm.io/gorm"
)

// nextValueSQL is a single atomic upsert: the first caller creates the row at 1,
// every later caller increments under the row lock and reads its own value back.
const nextValueSQL = `INSERT INTO counters (name, value) VALUES (?, 1)
ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
RETURNING value`

// SequenceAllocator hands out part numbers. Uniqueness comes from the database
// row lock, never from process memory, so several server instances may share it.
type SequenceAllocator struct {
	store *store.Store
	name  string
}

func NewSequenceAllocator(st *store.Store) *SequenceAllocator {
	return &SequenceAllocator{store: st, name: parts.PartSequence}
}

// Next increments the counter and returns the new value.
func (a *SequenceAllocator) Next(ctx context.Context) (int64, error) {
	return a.NextTx(a.store.DB(ctx))
}

// NextTx increments the counter inside the caller's transaction. The value is
// only consumed if that transaction commits.
func (a *SequenceAllocator) NextTx(tx *gorm.DB) (int64, error) {
	var value int64
	if err := tx.Raw(nextValueSQL, a.name).Scan(&value).Error; err != nil {
		return 0, store.Translate(err, "next sequence value")
	}
	if value <= 0 {
		return 0, apperrors.ErrStorageUnavailable.Msg("sequence " + a.name + " returned no value")
	}
	return value, nil
}
