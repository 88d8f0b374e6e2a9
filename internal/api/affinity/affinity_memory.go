package affinity

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/koushik8686/GeoGuide-sub000/internal/types"
)

var _ Repository = (*MemoryAffinityRepo)(nil)

// MemoryAffinityRepo is a process-local Repository for development and tests.
type MemoryAffinityRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]types.AffinityRecord
}

func NewMemoryAffinityRepo() *MemoryAffinityRepo {
	return &MemoryAffinityRepo{records: make(map[uuid.UUID]types.AffinityRecord)}
}

func (r *MemoryAffinityRepo) Get(_ context.Context, userID uuid.UUID) (types.AffinityRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(types.AffinityRecord, len(r.records[userID]))
	for tag, count := range r.records[userID] {
		out[tag] = count
	}
	return out, nil
}

func (r *MemoryAffinityRepo) Increment(ctx context.Context, userID uuid.UUID, tag types.InterestTag) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[userID]
	if !ok {
		rec = make(types.AffinityRecord)
		r.records[userID] = rec
	}
	rec[tag]++
	return nil
}

func (r *MemoryAffinityRepo) Ping(context.Context) error {
	return nil
}
