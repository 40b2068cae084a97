package app

import (
	"fmt"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/footylytics/matchseer/external/apifootball"
	"github.com/footylytics/matchseer/external/openai"
	"github.com/footylytics/matchseer/internal/config"
	"github.com/footylytics/matchseer/internal/domain/prediction"
	"github.com/footylytics/matchseer/internal/infrastructure/repository/memory"
	"github.com/footylytics/matchseer/internal/infrastructure/repository/postgres"
	"github.com/footylytics/matchseer/internal/interfaces/httpapi"
	idgen "github.com/footylytics/matchseer/internal/platform/id"
	"github.com/footylytics/matchseer/internal/platform/logging"
	"github.com/footylytics/matchseer/internal/platform/resilience"
	"github.com/footylytics/matchseer/internal/usecase"
)

// NewHTTPServer wires the whole service graph and returns the server plus a
// cleanup callback releasing owned resources (the DB pool when one exists).
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	historyRepo, cleanup, err := newHistoryRepository(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	footballClient := apifootball.NewClient(apifootball.ClientConfig{
		BaseURL:    cfg.FootballAPIBaseURL,
		APIKey:     cfg.FootballAPIKey,
		APIHost:    cfg.FootballAPIHost,
		Season:     cfg.FootballSeason,
		Bookmaker:  cfg.FootballBookmaker,
		Timeout:    cfg.FootballTimeout,
		MaxRetries: cfg.FootballMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FootballCircuitEnabled,
			FailureThreshold: cfg.FootballCircuitFailureCount,
			OpenTimeout:      cfg.FootballCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FootballCircuitHalfOpenMaxReq,
		},
		StandingsTTL: cfg.StandingsCacheTTL,
	})

	llmClient := openai.NewClient(openai.ClientConfig{
		APIKey:    cfg.OpenAIAPIKey,
		Model:     cfg.OpenAIModel,
		MaxTokens: cfg.OpenAIMaxTokens,
		Timeout:   cfg.OpenAITimeout,
		Logger:    logger,
	})

	analysisService := usecase.NewAnalysisService(usecase.AnalysisServiceConfig{
		Queries:   usecase.NewQueryService(logger),
		Data:      footballClient,
		Predictor: usecase.NewPredictionService(llmClient, logger),
		History:   historyRepo,
		IDs:       idgen.NewRandomGenerator(),
		Workers:   cfg.AnalysisWorkers,
		Logger:    logger,
	})

	handler := httpapi.NewHandler(analysisService, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func newHistoryRepository(cfg config.Config, logger *logging.Logger) (prediction.Repository, func() error, error) {
	noop := func() error { return nil }

	if !cfg.DBEnabled {
		logger.Info("prediction history backed by memory", "capacity", cfg.HistoryCapacity)
		return memory.NewPredictionRepository(cfg.HistoryCapacity), noop, nil
	}

	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	logger.Info("prediction history backed by postgres", "database", dbNameFromURL(cfg.DBURL))
	return postgres.NewPredictionRepository(db), db.Close, nil
}
