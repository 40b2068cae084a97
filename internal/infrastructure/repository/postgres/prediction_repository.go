package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/footylytics/matchseer/internal/domain/prediction"
)

const insertPredictionQuery = `
INSERT INTO prediction_history
	(public_id, fixture_id, matchup, league, winner, probability, confidence, prediction_text, created_at)
VALUES
	(:public_id, :fixture_id, :matchup, :league, :winner, :probability, :confidence, :prediction_text, :created_at)`

const listRecentPredictionsQuery = `
SELECT public_id, fixture_id, matchup, league, winner, probability, confidence, prediction_text, created_at
FROM prediction_history
ORDER BY created_at DESC, id DESC
LIMIT $1`

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Save(ctx context.Context, record prediction.Record) error {
	row := predictionTableModel{
		PublicID:    record.ID,
		FixtureID:   record.FixtureID,
		Matchup:     record.Matchup,
		League:      record.League,
		Winner:      record.Winner,
		Probability: record.Probability,
		Confidence:  record.Confidence,
		Text:        record.Text,
		CreatedAt:   record.CreatedAt,
	}

	if _, err := r.db.NamedExecContext(ctx, insertPredictionQuery, row); err != nil {
		return fmt.Errorf("insert prediction record: %w", err)
	}
	return nil
}

func (r *PredictionRepository) ListRecent(ctx context.Context, limit int) ([]prediction.Record, error) {
	if limit < 1 {
		limit = 20
	}

	var rows []predictionTableModel
	if err := r.db.SelectContext(ctx, &rows, listRecentPredictionsQuery, limit); err != nil {
		if isNotFound(err) {
			return []prediction.Record{}, nil
		}
		return nil, fmt.Errorf("select prediction records: %w", err)
	}

	out := make([]prediction.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, prediction.Record{
			ID:          row.PublicID,
			FixtureID:   row.FixtureID,
			Matchup:     row.Matchup,
			League:      row.League,
			Winner:      row.Winner,
			Probability: row.Probability,
			Confidence:  row.Confidence,
			Text:        row.Text,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}
