package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/footylytics/matchseer/internal/domain/match"
	"github.com/footylytics/matchseer/internal/domain/prediction"
	"github.com/footylytics/matchseer/internal/platform/logging"
	"github.com/footylytics/matchseer/internal/usecase"
)

const maxRequestBodyBytes = 64 << 10

type Handler struct {
	analysisService *usecase.AnalysisService
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(analysisService *usecase.AnalysisService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		analysisService: analysisService,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixtures")
	defer span.End()

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	listing, err := h.analysisService.ListFixtures(ctx, query)
	if err != nil {
		h.logger.WarnContext(ctx, "list fixtures failed", "query", query, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixtureListToDTO(listing))
}

func (h *Handler) ListLiveFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLiveFixtures")
	defer span.End()

	fixtures := h.analysisService.ListLiveFixtures(ctx)

	items := make([]fixtureDTO, 0, len(fixtures))
	for _, fixture := range fixtures {
		items = append(items, fixtureToDTO(fixture))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) CreateAnalyses(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateAnalyses")
	defer span.End()

	var payload analysisRequest
	if err := h.decodeRequest(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	analyses, err := h.analysisService.AnalyzeQuery(ctx, payload.Query)
	if err != nil {
		h.logger.WarnContext(ctx, "analyze query failed", "query", payload.Query, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]analysisDTO, 0, len(analyses))
	for _, analysis := range analyses {
		items = append(items, analysisToDTO(analysis))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) RecommendParlay(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecommendParlay")
	defer span.End()

	var payload analysisRequest
	if err := h.decodeRequest(r, &payload); err != nil {
		writeError(ctx, w, err)
		return
	}

	selection, text, err := h.analysisService.RecommendParlay(ctx, payload.Query)
	if err != nil {
		h.logger.WarnContext(ctx, "recommend parlay failed", "query", payload.Query, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, parlayToDTO(selection, text))
}

func (h *Handler) ListPredictionHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPredictionHistory")
	defer span.End()

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	records, err := h.analysisService.History(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list prediction history failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]predictionRecordDTO, 0, len(records))
	for _, record := range records {
		items = append(items, recordToDTO(record))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) decodeRequest(r *http.Request, payload any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read request body: %v", usecase.ErrInvalidInput, err)
	}
	if err := sonic.Unmarshal(body, payload); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validator.StructCtx(r.Context(), payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

type analysisRequest struct {
	Query string `json:"query" validate:"required,max=500"`
}

type fixtureListDTO struct {
	Date         string       `json:"date"`
	FriendlyDate string       `json:"friendlyDate"`
	LeagueID     int64        `json:"leagueId,omitempty"`
	Team         string       `json:"team,omitempty"`
	Fixtures     []fixtureDTO `json:"fixtures"`
}

type fixtureDTO struct {
	ID        int64  `json:"id"`
	KickoffAt string `json:"kickoffAt,omitempty"`
	Venue     string `json:"venue,omitempty"`
	League    string `json:"league"`
	Country   string `json:"country,omitempty"`
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
}

type analysisDTO struct {
	Matchup        string  `json:"matchup"`
	FixtureID      int64   `json:"fixtureId"`
	Winner         string  `json:"winner,omitempty"`
	WinProbability float64 `json:"winProbability,omitempty"`
	Score          string  `json:"score,omitempty"`
	Confidence     string  `json:"confidence,omitempty"`
	Text           string  `json:"text"`
	Degraded       bool    `json:"degraded,omitempty"`
}

type parlayDTO struct {
	Picks               []parlayPickDTO `json:"picks"`
	CombinedProbability float64         `json:"combinedProbability,omitempty"`
	Text                string          `json:"text"`
}

type parlayPickDTO struct {
	Rank        int     `json:"rank"`
	Team        string  `json:"team"`
	Probability float64 `json:"probability"`
	Odds        string  `json:"odds,omitempty"`
}

type predictionRecordDTO struct {
	ID          string  `json:"id"`
	FixtureID   int64   `json:"fixtureId"`
	Matchup     string  `json:"matchup"`
	League      string  `json:"league,omitempty"`
	Winner      string  `json:"winner,omitempty"`
	Probability float64 `json:"probability,omitempty"`
	Confidence  string  `json:"confidence,omitempty"`
	Text        string  `json:"text"`
	CreatedAt   string  `json:"createdAt"`
}

func fixtureListToDTO(listing usecase.FixtureList) fixtureListDTO {
	items := make([]fixtureDTO, 0, len(listing.Fixtures))
	for _, fixture := range listing.Fixtures {
		items = append(items, fixtureToDTO(fixture))
	}
	return fixtureListDTO{
		Date:         listing.Date,
		FriendlyDate: usecase.FormatFriendlyDate(listing.Date),
		LeagueID:     listing.LeagueID,
		Team:         listing.Team,
		Fixtures:     items,
	}
}

func fixtureToDTO(fixture match.Fixture) fixtureDTO {
	kickoff := ""
	if !fixture.KickoffAt.IsZero() {
		kickoff = fixture.KickoffAt.Format(time.RFC3339)
	}
	return fixtureDTO{
		ID:        fixture.ID,
		KickoffAt: kickoff,
		Venue:     fixture.Venue,
		League:    fixture.League.Name,
		Country:   fixture.League.Country,
		HomeTeam:  fixture.Home.Name,
		AwayTeam:  fixture.Away.Name,
	}
}

func analysisToDTO(analysis usecase.Analysis) analysisDTO {
	return analysisDTO{
		Matchup:        analysis.Matchup,
		FixtureID:      analysis.Fixture.ID,
		Winner:         analysis.Prediction.Winner,
		WinProbability: analysis.Prediction.WinProbability,
		Score:          analysis.Prediction.Score,
		Confidence:     analysis.Prediction.Confidence,
		Text:           analysis.Prediction.Text,
		Degraded:       analysis.Prediction.Degraded,
	}
}

func parlayToDTO(selection prediction.ParlaySelection, text string) parlayDTO {
	picks := make([]parlayPickDTO, 0, len(selection.Picks))
	for _, pick := range selection.Picks {
		picks = append(picks, parlayPickDTO{
			Rank:        pick.Rank,
			Team:        pick.Team,
			Probability: pick.Probability,
			Odds:        pick.OddsLine,
		})
	}
	return parlayDTO{
		Picks:               picks,
		CombinedProbability: selection.CombinedProbability,
		Text:                text,
	}
}

func recordToDTO(record prediction.Record) predictionRecordDTO {
	return predictionRecordDTO{
		ID:          record.ID,
		FixtureID:   record.FixtureID,
		Matchup:     record.Matchup,
		League:      record.League,
		Winner:      record.Winner,
		Probability: record.Probability,
		Confidence:  record.Confidence,
		Text:        record.Text,
		CreatedAt:   record.CreatedAt.Format(time.RFC3339),
	}
}
