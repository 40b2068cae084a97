package match

import "time"

// TeamRef identifies one side of a fixture.
type TeamRef struct {
	ID   int64
	Name string
}

// LeagueRef identifies the competition a fixture belongs to.
type LeagueRef struct {
	ID      int64
	Name    string
	Country string
}

// Fixture is one scheduled or played match. Immutable once fetched;
// owned by the caller for the duration of a single analysis request.
type Fixture struct {
	ID        int64
	KickoffAt time.Time
	Venue     string
	League    LeagueRef
	Home      TeamRef
	Away      TeamRef
}

// RecordSummary is one played/won/drawn/lost block of a standings row.
type RecordSummary struct {
	Played       int
	Won          int
	Drawn        int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
}

// StandingEntry is a per-team league-table row. The three record summaries
// are nil when the provider omitted them, which is distinct from zero-filled.
type StandingEntry struct {
	Rank      int
	Points    int
	GoalsDiff int
	Form      string
	Overall   *RecordSummary
	Home      *RecordSummary
	Away      *RecordSummary
}

// StandingsTable maps team id to its standings row. At most one entry per
// team per league+season; duplicate provider rows overwrite earlier ones.
type StandingsTable map[int64]StandingEntry

// TeamStatistics carries aggregate season stats for one team in one league.
// Absent substructures stay nil: "not available" is never rendered as zero.
type TeamStatistics struct {
	Goals      *GoalAverages
	CleanSheet *CleanSheetCount
	Fixtures   *FixtureTotals
}

// GoalAverages holds per-game scoring averages as the provider reports them
// (decimal strings). Empty string means the nested average was missing.
type GoalAverages struct {
	ForAverage     string
	AgainstAverage string
}

type CleanSheetCount struct {
	Total int
}

type FixtureTotals struct {
	Wins  int
	Draws int
	Loses int
}

// IsZero reports whether no statistics were returned at all.
func (s TeamStatistics) IsZero() bool {
	return s.Goals == nil && s.CleanSheet == nil && s.Fixtures == nil
}

// HeadToHeadMatch is one past meeting between two teams, in provider order
// (most recent first).
type HeadToHeadMatch struct {
	Date      time.Time
	Home      TeamRef
	Away      TeamRef
	HomeGoals int
	AwayGoals int
}

// Injury is one sidelined player for a team.
type Injury struct {
	Player string
	Type   string
	Reason string
}

// OddsValue is one outcome within a bet market with its decimal odd,
// both as the bookmaker quotes them.
type OddsValue struct {
	Value string
	Odd   string
}

// OddsBook maps a bet-market name ("Match Winner", "Goals Over/Under", ...)
// to all offers accumulated across bookmakers. Offers from multiple
// bookmakers for the same market are concatenated, never deduplicated.
type OddsBook map[string][]OddsValue

// Bundle is the composite result of the per-fixture batch fetch. Every field
// is populated (possibly with its empty value) before the bundle is returned.
type Bundle struct {
	HomeStats    TeamStatistics
	AwayStats    TeamStatistics
	Standings    StandingsTable
	HeadToHead   []HeadToHeadMatch
	HomeInjuries []Injury
	AwayInjuries []Injury
	Odds         OddsBook
}
