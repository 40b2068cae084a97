package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/footylytics/matchseer/internal/domain/match"
	"github.com/footylytics/matchseer/internal/domain/prediction"
	"github.com/footylytics/matchseer/internal/platform/id"
	"github.com/footylytics/matchseer/internal/platform/logging"
)

const (
	// maxSlateSize caps how many fixtures one analysis request covers.
	maxSlateSize = 8

	defaultAnalysisWorkers = 4
	defaultHistoryLimit    = 20
	maxHistoryLimit        = 100
)

// FixtureDataSource provides fixture listings and the per-fixture data bundle.
type FixtureDataSource interface {
	FetchFixtures(ctx context.Context, date string, leagueID int64) []match.Fixture
	FetchLiveFixtures(ctx context.Context) []match.Fixture
	BatchFetch(ctx context.Context, fixture match.Fixture) match.Bundle
}

// Analysis is one analyzed matchup: the fixture, its label, and the generated
// prediction.
type Analysis struct {
	Matchup    string
	Fixture    match.Fixture
	Prediction prediction.Prediction
}

// FixtureList is the result of resolving a free-text query into fixtures.
type FixtureList struct {
	Date     string
	LeagueID int64
	Team     string
	Fixtures []match.Fixture
}

type AnalysisServiceConfig struct {
	Queries   *QueryService
	Data      FixtureDataSource
	Predictor *PredictionService
	History   prediction.Repository
	IDs       id.Generator
	Workers   int
	Logger    *logging.Logger
}

// AnalysisService drives the full pipeline: resolve a query, list fixtures,
// gather each fixture's data, generate predictions, and keep history.
type AnalysisService struct {
	queries   *QueryService
	data      FixtureDataSource
	predictor *PredictionService
	history   prediction.Repository
	ids       id.Generator
	workers   int
	logger    *logging.Logger
}

func NewAnalysisService(cfg AnalysisServiceConfig) *AnalysisService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = defaultAnalysisWorkers
	}
	ids := cfg.IDs
	if ids == nil {
		ids = id.NewRandomGenerator()
	}

	return &AnalysisService{
		queries:   cfg.Queries,
		data:      cfg.Data,
		predictor: cfg.Predictor,
		history:   cfg.History,
		ids:       ids,
		workers:   workers,
		logger:    logger,
	}
}

// ListFixtures resolves the date, league, and team filters from a free-text
// query and returns the matching fixtures.
func (s *AnalysisService) ListFixtures(ctx context.Context, query string) (FixtureList, error) {
	ctx, span := startUsecaseSpan(ctx, "AnalysisService.ListFixtures")
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return FixtureList{}, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}

	date := s.queries.ResolveDate(ctx, query)
	leagueID, _ := s.queries.ResolveLeague(query)
	team, _ := s.queries.ResolveTeam(query)

	fixtures := s.data.FetchFixtures(ctx, date, leagueID)
	if team != "" {
		fixtures = filterByTeam(fixtures, team)
	}

	s.logger.InfoContext(ctx, "resolved fixture query",
		"date", date, "league_id", leagueID, "team", team, "count", len(fixtures))

	return FixtureList{
		Date:     date,
		LeagueID: leagueID,
		Team:     team,
		Fixtures: fixtures,
	}, nil
}

// ListLiveFixtures returns the fixtures currently in play.
func (s *AnalysisService) ListLiveFixtures(ctx context.Context) []match.Fixture {
	ctx, span := startUsecaseSpan(ctx, "AnalysisService.ListLiveFixtures")
	defer span.End()

	fixtures := s.data.FetchLiveFixtures(ctx)
	s.logger.InfoContext(ctx, "listed live fixtures", "count", len(fixtures))
	return fixtures
}

func filterByTeam(fixtures []match.Fixture, team string) []match.Fixture {
	out := make([]match.Fixture, 0, len(fixtures))
	for _, fixture := range fixtures {
		if strings.Contains(strings.ToLower(fixture.Home.Name), team) ||
			strings.Contains(strings.ToLower(fixture.Away.Name), team) {
			out = append(out, fixture)
		}
	}
	return out
}

// AnalyzeMatchup runs the full pipeline for one fixture. The prediction is
// recorded in history; a history write failure is logged but never fails the
// analysis.
func (s *AnalysisService) AnalyzeMatchup(ctx context.Context, fixture match.Fixture) Analysis {
	ctx, span := startUsecaseSpan(ctx, "AnalysisService.AnalyzeMatchup")
	defer span.End()

	bundle := s.data.BatchFetch(ctx, fixture)
	pred := s.predictor.Predict(ctx, fixture, bundle)

	analysis := Analysis{
		Matchup:    fmt.Sprintf("%s @ %s", fixture.Away.Name, fixture.Home.Name),
		Fixture:    fixture,
		Prediction: pred,
	}
	s.recordAnalysis(ctx, analysis)
	return analysis
}

func (s *AnalysisService) recordAnalysis(ctx context.Context, analysis Analysis) {
	if s.history == nil || analysis.Prediction.Degraded {
		return
	}

	recordID, err := s.ids.NewID()
	if err != nil {
		s.logger.WarnContext(ctx, "failed to generate history record id", "error", err)
		return
	}

	record := prediction.Record{
		ID:          recordID,
		FixtureID:   analysis.Fixture.ID,
		Matchup:     analysis.Matchup,
		League:      analysis.Fixture.League.Name,
		Winner:      analysis.Prediction.Winner,
		Probability: analysis.Prediction.WinProbability,
		Confidence:  analysis.Prediction.Confidence,
		Text:        analysis.Prediction.Text,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.history.Save(ctx, record); err != nil {
		s.logger.WarnContext(ctx, "failed to save prediction history", "fixture_id", record.FixtureID, "error", err)
	}
}

// AnalyzeQuery resolves a query to fixtures and analyzes up to eight of them
// concurrently. Results keep the fixture order of the listing.
func (s *AnalysisService) AnalyzeQuery(ctx context.Context, query string) ([]Analysis, error) {
	ctx, span := startUsecaseSpan(ctx, "AnalysisService.AnalyzeQuery")
	defer span.End()

	listing, err := s.ListFixtures(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(listing.Fixtures) == 0 {
		return nil, fmt.Errorf("%w: no fixtures match the query", ErrNotFound)
	}

	return s.analyzeSlate(ctx, listing.Fixtures), nil
}

func (s *AnalysisService) analyzeSlate(ctx context.Context, fixtures []match.Fixture) []Analysis {
	if len(fixtures) > maxSlateSize {
		fixtures = fixtures[:maxSlateSize]
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to create worker pool, analyzing sequentially", "error", err)
		out := make([]Analysis, 0, len(fixtures))
		for _, fixture := range fixtures {
			out = append(out, s.AnalyzeMatchup(ctx, fixture))
		}
		return out
	}
	defer pool.Release()

	out := make([]Analysis, len(fixtures))
	var wg sync.WaitGroup
	for i, fixture := range fixtures {
		i, fixture := i, fixture
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			out[i] = s.AnalyzeMatchup(ctx, fixture)
		})
		if submitErr != nil {
			wg.Done()
			out[i] = s.AnalyzeMatchup(ctx, fixture)
		}
	}
	wg.Wait()

	return out
}

// RecommendParlay analyzes the fixtures a query resolves to and builds a
// parlay from the qualifying picks.
func (s *AnalysisService) RecommendParlay(ctx context.Context, query string) (prediction.ParlaySelection, string, error) {
	ctx, span := startUsecaseSpan(ctx, "AnalysisService.RecommendParlay")
	defer span.End()

	analyses, err := s.AnalyzeQuery(ctx, query)
	if err != nil {
		return prediction.ParlaySelection{}, "", err
	}

	inputs := make([]MatchupPrediction, 0, len(analyses))
	for _, analysis := range analyses {
		inputs = append(inputs, MatchupPrediction{
			Matchup: analysis.Matchup,
			Text:    analysis.Prediction.Text,
		})
	}

	selection, text := s.predictor.BuildParlay(ctx, inputs)
	return selection, text, nil
}

// History returns the most recent prediction records, newest first.
func (s *AnalysisService) History(ctx context.Context, limit int) ([]prediction.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "AnalysisService.History")
	defer span.End()

	if s.history == nil {
		return []prediction.Record{}, nil
	}
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	records, err := s.history.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list prediction history: %v", ErrDependencyUnavailable, err)
	}
	return records, nil
}
