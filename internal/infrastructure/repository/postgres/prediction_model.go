package postgres

import "time"

type predictionTableModel struct {
	ID          int64     `db:"id"`
	PublicID    string    `db:"public_id"`
	FixtureID   int64     `db:"fixture_id"`
	Matchup     string    `db:"matchup"`
	League      string    `db:"league"`
	Winner      string    `db:"winner"`
	Probability float64   `db:"probability"`
	Confidence  string    `db:"confidence"`
	Text        string    `db:"prediction_text"`
	CreatedAt   time.Time `db:"created_at"`
}
