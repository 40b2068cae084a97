package memory

import (
	"context"
	"sync"

	"github.com/footylytics/matchseer/internal/domain/prediction"
)

const defaultCapacity = 200

// PredictionRepository keeps recent prediction records in memory, newest
// first. Oldest records are dropped once capacity is reached.
type PredictionRepository struct {
	mu       sync.RWMutex
	records  []prediction.Record
	capacity int
}

func NewPredictionRepository(capacity int) *PredictionRepository {
	if capacity < 1 {
		capacity = defaultCapacity
	}
	return &PredictionRepository{capacity: capacity}
}

func (r *PredictionRepository) Save(_ context.Context, record prediction.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append([]prediction.Record{record}, r.records...)
	if len(r.records) > r.capacity {
		r.records = r.records[:r.capacity]
	}
	return nil
}

func (r *PredictionRepository) ListRecent(_ context.Context, limit int) ([]prediction.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit < 1 || limit > len(r.records) {
		limit = len(r.records)
	}

	out := make([]prediction.Record, limit)
	copy(out, r.records[:limit])
	return out, nil
}
