package apifootball

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/footylytics/matchseer/internal/domain/match"
	"github.com/footylytics/matchseer/internal/platform/cache"
	"github.com/footylytics/matchseer/internal/platform/logging"
	"github.com/footylytics/matchseer/internal/platform/resilience"
)

const (
	defaultBaseURL = "https://api-football-v1.p.rapidapi.com/v3"
	defaultAPIHost = "api-football-v1.p.rapidapi.com"

	// DefaultSeason is the season used when callers pass none.
	DefaultSeason = 2024

	// DefaultBookmaker is the bookmaker id used for odds lookups when
	// callers pass none.
	DefaultBookmaker = 1

	defaultHeadToHeadLimit = 10
	maxResponseBytes       = 6 << 20
)

var errTransient = crerr.New("api-football transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	APIHost        string
	Season         int
	Bookmaker      int
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	// StandingsTTL enables caching of standings lookups; zero disables it.
	StandingsTTL time.Duration
}

// Client wraps the API-Football REST API. Every public fetch method follows
// the same best-effort policy: on any transport or decode failure it logs the
// cause and returns the empty value for its result shape instead of an error.
// Partial data beats a failed dashboard render.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	apiHost        string
	season         int
	bookmaker      int
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	standings      *cache.Store
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	apiHost := strings.TrimSpace(cfg.APIHost)
	if apiHost == "" {
		apiHost = defaultAPIHost
	}
	season := cfg.Season
	if season <= 0 {
		season = DefaultSeason
	}
	bookmaker := cfg.Bookmaker
	if bookmaker <= 0 {
		bookmaker = DefaultBookmaker
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	var standings *cache.Store
	if cfg.StandingsTTL > 0 {
		standings = cache.NewStore(cfg.StandingsTTL)
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		apiHost:        apiHost,
		season:         season,
		bookmaker:      bookmaker,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		standings:      standings,
	}
}

// Season returns the season applied when a caller passes none.
func (c *Client) Season() int {
	return c.season
}

// FetchFixtures lists fixtures for a calendar date, optionally narrowed to
// one league.
func (c *Client) FetchFixtures(ctx context.Context, date string, leagueID int64) []match.Fixture {
	query := map[string]string{"date": date}
	if leagueID > 0 {
		query["league"] = strconv.FormatInt(leagueID, 10)
	}

	items, err := c.fetchFixtureList(ctx, "/fixtures", query)
	if err != nil {
		c.reportDegraded(ctx, "fetch fixtures", err, "date", date, "league_id", leagueID)
		return []match.Fixture{}
	}

	c.logger.InfoContext(ctx, "fetched fixtures", "date", date, "league_id", leagueID, "count", len(items))
	return items
}

// FetchLeagueFixtures lists all fixtures of one league season.
func (c *Client) FetchLeagueFixtures(ctx context.Context, leagueID int64, season int) []match.Fixture {
	query := map[string]string{
		"league": strconv.FormatInt(leagueID, 10),
		"season": strconv.Itoa(c.resolveSeason(season)),
	}

	items, err := c.fetchFixtureList(ctx, "/fixtures", query)
	if err != nil {
		c.reportDegraded(ctx, "fetch league fixtures", err, "league_id", leagueID)
		return []match.Fixture{}
	}
	return items
}

// FetchLiveFixtures lists fixtures currently in play.
func (c *Client) FetchLiveFixtures(ctx context.Context) []match.Fixture {
	items, err := c.fetchFixtureList(ctx, "/fixtures", map[string]string{"live": "all"})
	if err != nil {
		c.reportDegraded(ctx, "fetch live fixtures", err)
		return []match.Fixture{}
	}
	return items
}

// FetchStandings returns the league table keyed by team id. Rows are
// flattened across standings groups; a duplicate team id overwrites the
// earlier row. Results are cached per league+season when caching is enabled.
func (c *Client) FetchStandings(ctx context.Context, leagueID int64, season int) match.StandingsTable {
	season = c.resolveSeason(season)

	if c.standings == nil {
		return c.fetchStandingsDegraded(ctx, leagueID, season)
	}

	key := fmt.Sprintf("standings:%d:%d", leagueID, season)
	value, err := c.standings.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return c.fetchStandingsDegraded(ctx, leagueID, season), nil
	})
	if err != nil {
		return match.StandingsTable{}
	}

	table, ok := value.(match.StandingsTable)
	if !ok {
		return match.StandingsTable{}
	}
	return table
}

func (c *Client) fetchStandingsDegraded(ctx context.Context, leagueID int64, season int) match.StandingsTable {
	query := map[string]string{
		"league": strconv.FormatInt(leagueID, 10),
		"season": strconv.Itoa(season),
	}

	var envelope standingsEnvelope
	if err := c.doJSON(ctx, "/standings", query, &envelope); err != nil {
		c.reportDegraded(ctx, "fetch standings", err, "league_id", leagueID, "season", season)
		return match.StandingsTable{}
	}

	table := make(match.StandingsTable)
	for _, wrapper := range envelope.Response {
		for _, group := range wrapper.League.Standings {
			for _, row := range group {
				if row.Team.ID <= 0 {
					continue
				}
				table[row.Team.ID] = match.StandingEntry{
					Rank:      row.Rank,
					Points:    row.Points,
					GoalsDiff: row.GoalsDiff,
					Form:      row.Form,
					Overall:   mapStandingRecord(row.All),
					Home:      mapStandingRecord(row.Home),
					Away:      mapStandingRecord(row.Away),
				}
			}
		}
	}
	return table
}

// FetchTeamInfo returns basic details about one team.
func (c *Client) FetchTeamInfo(ctx context.Context, teamID int64) TeamInfo {
	query := map[string]string{"id": strconv.FormatInt(teamID, 10)}

	var envelope teamsEnvelope
	if err := c.doJSON(ctx, "/teams", query, &envelope); err != nil {
		c.reportDegraded(ctx, "fetch team info", err, "team_id", teamID)
		return TeamInfo{}
	}
	if len(envelope.Response) == 0 {
		return TeamInfo{}
	}
	return mapTeamInfo(envelope.Response[0])
}

// SearchTeams looks up teams by name.
func (c *Client) SearchTeams(ctx context.Context, name string) []TeamInfo {
	query := map[string]string{"search": name}

	var envelope teamsEnvelope
	if err := c.doJSON(ctx, "/teams", query, &envelope); err != nil {
		c.reportDegraded(ctx, "search teams", err, "name", name)
		return []TeamInfo{}
	}

	out := make([]TeamInfo, 0, len(envelope.Response))
	for _, item := range envelope.Response {
		out = append(out, mapTeamInfo(item))
	}
	return out
}

// FetchTeamStatistics returns aggregate season stats for one team in one
// league. Absent substructures stay nil on the result; they are "not
// available", never zero.
func (c *Client) FetchTeamStatistics(ctx context.Context, teamID, leagueID int64, season int) match.TeamStatistics {
	query := map[string]string{
		"team":   strconv.FormatInt(teamID, 10),
		"league": strconv.FormatInt(leagueID, 10),
		"season": strconv.Itoa(c.resolveSeason(season)),
	}

	var envelope teamStatsEnvelope
	if err := c.doJSON(ctx, "/teams/statistics", query, &envelope); err != nil {
		c.reportDegraded(ctx, "fetch team statistics", err, "team_id", teamID, "league_id", leagueID)
		return match.TeamStatistics{}
	}
	if envelope.Response == nil {
		return match.TeamStatistics{}
	}
	return mapTeamStatistics(*envelope.Response)
}

// FetchHeadToHead returns past meetings between two teams, most recent first
// as the provider orders them. Limit defaults to 10 when not positive.
func (c *Client) FetchHeadToHead(ctx context.Context, team1ID, team2ID int64, limit int) []match.HeadToHeadMatch {
	if limit <= 0 {
		limit = defaultHeadToHeadLimit
	}
	query := map[string]string{
		"h2h":  fmt.Sprintf("%d-%d", team1ID, team2ID),
		"last": strconv.Itoa(limit),
	}

	var envelope fixturesEnvelope
	if err := c.doJSON(ctx, "/fixtures/headtohead", query, &envelope); err != nil {
		c.reportDegraded(ctx, "fetch head-to-head", err, "team1_id", team1ID, "team2_id", team2ID)
		return []match.HeadToHeadMatch{}
	}

	out := make([]match.HeadToHeadMatch, 0, len(envelope.Response))
	for _, item := range envelope.Response {
		entry := match.HeadToHeadMatch{
			Home: match.TeamRef{ID: item.Teams.Home.ID, Name: item.Teams.Home.Name},
			Away: match.TeamRef{ID: item.Teams.Away.ID, Name: item.Teams.Away.Name},
		}
		if parsed := parseProviderDate(item.Fixture.Date); parsed != nil {
			entry.Date = *parsed
		}
		if item.Goals.Home != nil {
			entry.HomeGoals = *item.Goals.Home
		}
		if item.Goals.Away != nil {
			entry.AwayGoals = *item.Goals.Away
		}
		out = append(out, entry)
	}
	return out
}

// FetchTeamInjuries returns the current injury list for a team, optionally
// narrowed to one league. A fetch failure degrades to an empty list, which is
// indistinguishable from "no injuries" for callers; the cause is logged here.
func (c *Client) FetchTeamInjuries(ctx context.Context, teamID, leagueID int64, season int) []match.Injury {
	query := map[string]string{
		"team":   strconv.FormatInt(teamID, 10),
		"season": strconv.Itoa(c.resolveSeason(season)),
	}
	if leagueID > 0 {
		query["league"] = strconv.FormatInt(leagueID, 10)
	}

	var envelope injuriesEnvelope
	if err := c.doJSON(ctx, "/injuries", query, &envelope); err != nil {
		c.reportDegraded(ctx, "fetch team injuries", err, "team_id", teamID, "league_id", leagueID)
		return []match.Injury{}
	}

	out := make([]match.Injury, 0, len(envelope.Response))
	for _, item := range envelope.Response {
		out = append(out, match.Injury{
			Player: item.Player.Name,
			Type:   item.Player.Type,
			Reason: item.Player.Reason,
		})
	}
	return out
}

// FetchFixtureOdds returns the odds book for one fixture. Offers are
// accumulated per market across all bookmakers in the payload; values for the
// same market are concatenated, not merged, to preserve every offer.
func (c *Client) FetchFixtureOdds(ctx context.Context, fixtureID int64, bookmakerID int) match.OddsBook {
	if bookmakerID <= 0 {
		bookmakerID = c.bookmaker
	}
	query := map[string]string{
		"fixture":   strconv.FormatInt(fixtureID, 10),
		"bookmaker": strconv.Itoa(bookmakerID),
	}

	var envelope oddsEnvelope
	if err := c.doJSON(ctx, "/odds", query, &envelope); err != nil {
		c.reportDegraded(ctx, "fetch fixture odds", err, "fixture_id", fixtureID)
		return match.OddsBook{}
	}

	book := make(match.OddsBook)
	for _, item := range envelope.Response {
		for _, bookmaker := range item.Bookmakers {
			for _, bet := range bookmaker.Bets {
				values := make([]match.OddsValue, 0, len(bet.Values))
				for _, value := range bet.Values {
					values = append(values, match.OddsValue{Value: value.Value, Odd: value.Odd})
				}
				book[bet.Name] = append(book[bet.Name], values...)
			}
		}
	}
	return book
}

// FetchPlayers lists the squad of one team for a season.
func (c *Client) FetchPlayers(ctx context.Context, teamID int64, season int) []Player {
	query := map[string]string{
		"team":   strconv.FormatInt(teamID, 10),
		"season": strconv.Itoa(c.resolveSeason(season)),
	}

	var envelope playersEnvelope
	if err := c.doJSON(ctx, "/players", query, &envelope); err != nil {
		c.reportDegraded(ctx, "fetch players", err, "team_id", teamID)
		return []Player{}
	}

	out := make([]Player, 0, len(envelope.Response))
	for _, item := range envelope.Response {
		out = append(out, Player{
			ID:       item.Player.ID,
			Name:     item.Player.Name,
			Age:      item.Player.Age,
			Position: item.Player.Position,
		})
	}
	return out
}

// FetchLeagueInfo returns details about one league.
func (c *Client) FetchLeagueInfo(ctx context.Context, leagueID int64) LeagueInfo {
	query := map[string]string{"id": strconv.FormatInt(leagueID, 10)}

	var envelope leaguesEnvelope
	if err := c.doJSON(ctx, "/leagues", query, &envelope); err != nil {
		c.reportDegraded(ctx, "fetch league info", err, "league_id", leagueID)
		return LeagueInfo{}
	}
	if len(envelope.Response) == 0 {
		return LeagueInfo{}
	}

	item := envelope.Response[0]
	return LeagueInfo{
		ID:      item.League.ID,
		Name:    item.League.Name,
		Type:    item.League.Type,
		Country: item.Country.Name,
	}
}

func (c *Client) fetchFixtureList(ctx context.Context, path string, query map[string]string) ([]match.Fixture, error) {
	var envelope fixturesEnvelope
	if err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return nil, err
	}

	out := make([]match.Fixture, 0, len(envelope.Response))
	for _, item := range envelope.Response {
		out = append(out, mapFixture(item))
	}
	return out, nil
}

// reportDegraded is the logging half of the degrade-to-empty policy: the
// caller substitutes the default value, this records why.
func (c *Client) reportDegraded(ctx context.Context, operation string, err error, args ...any) {
	fields := append([]any{"error", err}, args...)
	c.logger.WarnContext(ctx, operation+" degraded to empty result", fields...)
}

func (c *Client) resolveSeason(season int) int {
	if season > 0 {
		return season
	}
	return c.season
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "api-football circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("football data provider is temporarily unavailable: %w", err)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(path+"?"+values.Encode(), func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
		req.Header.Set("X-RapidAPI-Host", c.apiHost)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	return nil, lastErr
}

// TeamInfo is basic team metadata from the /teams resource.
type TeamInfo struct {
	ID      int64
	Name    string
	Country string
	Founded int
	Venue   string
}

// Player is one squad member from the /players resource.
type Player struct {
	ID       int64
	Name     string
	Age      int
	Position string
}

// LeagueInfo is basic league metadata from the /leagues resource.
type LeagueInfo struct {
	ID      int64
	Name    string
	Type    string
	Country string
}

func mapFixture(item fixturePayload) match.Fixture {
	out := match.Fixture{
		ID: item.Fixture.ID,
		League: match.LeagueRef{
			ID:      item.League.ID,
			Name:    item.League.Name,
			Country: item.League.Country,
		},
		Home: match.TeamRef{ID: item.Teams.Home.ID, Name: item.Teams.Home.Name},
		Away: match.TeamRef{ID: item.Teams.Away.ID, Name: item.Teams.Away.Name},
	}
	if parsed := parseProviderDate(item.Fixture.Date); parsed != nil {
		out.KickoffAt = *parsed
	}
	if item.Fixture.Venue != nil {
		out.Venue = strings.TrimSpace(item.Fixture.Venue.Name)
	}
	return out
}

func mapTeamInfo(item teamInfoPayload) TeamInfo {
	out := TeamInfo{
		ID:      item.Team.ID,
		Name:    item.Team.Name,
		Country: item.Team.Country,
		Founded: item.Team.Founded,
	}
	if item.Venue != nil {
		out.Venue = strings.TrimSpace(item.Venue.Name)
	}
	return out
}

func mapStandingRecord(record *standingRecord) *match.RecordSummary {
	if record == nil {
		return nil
	}
	return &match.RecordSummary{
		Played:       record.Played,
		Won:          record.Win,
		Drawn:        record.Draw,
		Lost:         record.Lose,
		GoalsFor:     record.Goals.For,
		GoalsAgainst: record.Goals.Against,
	}
}

func mapTeamStatistics(payload teamStatsPayload) match.TeamStatistics {
	out := match.TeamStatistics{}

	if payload.Goals != nil && (payload.Goals.For != nil || payload.Goals.Against != nil) {
		goals := &match.GoalAverages{}
		if payload.Goals.For != nil && payload.Goals.For.Average != nil {
			goals.ForAverage = payload.Goals.For.Average.Total
		}
		if payload.Goals.Against != nil && payload.Goals.Against.Average != nil {
			goals.AgainstAverage = payload.Goals.Against.Average.Total
		}
		out.Goals = goals
	}

	if payload.CleanSheet != nil {
		out.CleanSheet = &match.CleanSheetCount{Total: payload.CleanSheet.Total}
	}

	if payload.Fixtures != nil {
		totals := &match.FixtureTotals{}
		if payload.Fixtures.Wins != nil {
			totals.Wins = payload.Fixtures.Wins.Total
		}
		if payload.Fixtures.Draws != nil {
			totals.Draws = payload.Fixtures.Draws.Total
		}
		if payload.Fixtures.Loses != nil {
			totals.Loses = payload.Fixtures.Loses.Total
		}
		out.Fixtures = totals
	}

	return out
}

func parseProviderDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed
		}
	}
	return nil
}

func sanitizeSensitiveText(value, secret string) string {
	value = strings.TrimSpace(value)
	if value == "" || secret == "" {
		return value
	}
	return strings.ReplaceAll(value, secret, "REDACTED")
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) <= limit {
		return body
	}
	return body[:limit] + "..."
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
