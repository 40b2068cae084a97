package apifootball

// Wire types for the API-Football v3 payloads this client consumes. Every
// response arrives wrapped in a {"response": ...} envelope; a missing or
// empty envelope means "no data", not an error.

type fixturesEnvelope struct {
	Response []fixturePayload `json:"response"`
}

type fixturePayload struct {
	Fixture fixtureCore    `json:"fixture"`
	League  leaguePayload  `json:"league"`
	Teams   fixtureTeams   `json:"teams"`
	Goals   fixtureGoals   `json:"goals"`
	Score   map[string]any `json:"score"`
}

type fixtureCore struct {
	ID    int64         `json:"id"`
	Date  string        `json:"date"`
	Venue *venuePayload `json:"venue"`
}

type venuePayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

type leaguePayload struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Season  int    `json:"season"`
}

type fixtureTeams struct {
	Home teamPayload `json:"home"`
	Away teamPayload `json:"away"`
}

type teamPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo"`
}

type fixtureGoals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type standingsEnvelope struct {
	Response []standingsLeagueWrapper `json:"response"`
}

type standingsLeagueWrapper struct {
	League standingsLeague `json:"league"`
}

type standingsLeague struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Season    int              `json:"season"`
	Standings [][]standingsRow `json:"standings"`
}

type standingsRow struct {
	Rank      int             `json:"rank"`
	Team      teamPayload     `json:"team"`
	Points    int             `json:"points"`
	GoalsDiff int             `json:"goalsDiff"`
	Form      string          `json:"form"`
	All       *standingRecord `json:"all"`
	Home      *standingRecord `json:"home"`
	Away      *standingRecord `json:"away"`
}

type standingRecord struct {
	Played int            `json:"played"`
	Win    int            `json:"win"`
	Draw   int            `json:"draw"`
	Lose   int            `json:"lose"`
	Goals  standingsGoals `json:"goals"`
}

type standingsGoals struct {
	For     int `json:"for"`
	Against int `json:"against"`
}

type teamsEnvelope struct {
	Response []teamInfoPayload `json:"response"`
}

type teamInfoPayload struct {
	Team  teamDetails   `json:"team"`
	Venue *venuePayload `json:"venue"`
}

type teamDetails struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Founded int    `json:"founded"`
	Logo    string `json:"logo"`
}

type teamStatsEnvelope struct {
	Response *teamStatsPayload `json:"response"`
}

type teamStatsPayload struct {
	Goals      *teamStatsGoals    `json:"goals"`
	CleanSheet *cleanSheetPayload `json:"clean_sheet"`
	Fixtures   *teamStatsFixtures `json:"fixtures"`
}

type teamStatsGoals struct {
	For     *goalsSide `json:"for"`
	Against *goalsSide `json:"against"`
}

type goalsSide struct {
	Average *goalsAverage `json:"average"`
}

type goalsAverage struct {
	Total string `json:"total"`
	Home  string `json:"home"`
	Away  string `json:"away"`
}

type cleanSheetPayload struct {
	Home  int `json:"home"`
	Away  int `json:"away"`
	Total int `json:"total"`
}

type teamStatsFixtures struct {
	Wins  *fixtureTotal `json:"wins"`
	Draws *fixtureTotal `json:"draws"`
	Loses *fixtureTotal `json:"loses"`
}

type fixtureTotal struct {
	Home  int `json:"home"`
	Away  int `json:"away"`
	Total int `json:"total"`
}

type injuriesEnvelope struct {
	Response []injuryPayload `json:"response"`
}

type injuryPayload struct {
	Player injuredPlayer `json:"player"`
	Team   teamPayload   `json:"team"`
}

type injuredPlayer struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type oddsEnvelope struct {
	Response []oddsPayload `json:"response"`
}

type oddsPayload struct {
	Bookmakers []bookmakerPayload `json:"bookmakers"`
}

type bookmakerPayload struct {
	ID   int64        `json:"id"`
	Name string       `json:"name"`
	Bets []betPayload `json:"bets"`
}

type betPayload struct {
	ID     int64             `json:"id"`
	Name   string            `json:"name"`
	Values []betValuePayload `json:"values"`
}

type betValuePayload struct {
	Value string `json:"value"`
	Odd   string `json:"odd"`
}

type playersEnvelope struct {
	Response []playerPayload `json:"response"`
}

type playerPayload struct {
	Player playerDetails `json:"player"`
}

type playerDetails struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Position string `json:"position"`
	Photo    string `json:"photo"`
}

type leaguesEnvelope struct {
	Response []leagueInfoPayload `json:"response"`
}

type leagueInfoPayload struct {
	League  leagueDetails  `json:"league"`
	Country countryPayload `json:"country"`
}

type leagueDetails struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Logo string `json:"logo"`
}

type countryPayload struct {
	Name string `json:"name"`
	Code string `json:"code"`
}
