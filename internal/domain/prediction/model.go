package prediction

import (
	"time"

	"github.com/footylytics/matchseer/internal/domain/match"
)

// Prediction is the structured result of analyzing one fixture. Created once
// per analysis call; immutable. Fields parsed from the model output may be
// empty when the corresponding labeled line was missing.
type Prediction struct {
	Winner         string
	WinProbability float64
	Score          string
	Analysis       string
	Confidence     string
	// Text is the full formatted prediction blob, including the matchup
	// header and the betting-odds tail when available.
	Text string
	// Odds is the input odds book the prediction was generated against.
	Odds match.OddsBook
	// Degraded marks the terminal "unable to generate" state.
	Degraded bool
}

// ParlayPick is one leg of a parlay selection.
type ParlayPick struct {
	Rank        int
	Team        string
	Probability float64
	OddsLine    string
}

// ParlaySelection is an ordered set of up to three high-confidence picks with
// their combined probability under the independent-event product rule.
type ParlaySelection struct {
	Picks               []ParlayPick
	CombinedProbability float64
}

// Record is one persisted prediction-history row.
type Record struct {
	ID          string
	FixtureID   int64
	Matchup     string
	League      string
	Winner      string
	Probability float64
	Confidence  string
	Text        string
	CreatedAt   time.Time
}
