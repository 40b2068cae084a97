package prediction

import "context"

// Repository stores prediction history for the dashboard.
type Repository interface {
	Save(ctx context.Context, record Record) error
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}
