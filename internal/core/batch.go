package core

// batch.go is the batch writer: per-row decisions accumulate here and are
// handed to the store exactly once, after every row has been decided. Reads
// and writes are never interleaved mid-batch.

import (
	"context"
	"fmt"
)

type writeBatch struct {
	ops []WriteOp
}

func (b *writeBatch) insert(student StudentRecord) {
	b.ops = append(b.ops, WriteOp{Insert: &student})
}

func (b *writeBatch) update(u StudentUpdate) {
	b.ops = append(b.ops, WriteOp{Update: &u})
}

func (b *writeBatch) len() int { return len(b.ops) }

// apply submits the accumulated operations as one bulk write. A store
// failure here is the only error class that fails the whole batch; nothing
// has been committed before this point.
func (b *writeBatch) apply(ctx context.Context, store StudentStore) (BulkResult, error) {
	if len(b.ops) == 0 {
		return BulkResult{}, nil
	}
	res, err := store.BulkApply(ctx, b.ops)
	if err != nil {
		return BulkResult{}, fmt.Errorf("bulk apply %d ops: %w", len(b.ops), err)
	}
	return res, nil
}
