package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/footylytics/matchseer/internal/domain/match"
	"github.com/footylytics/matchseer/internal/infrastructure/repository/memory"
	"github.com/footylytics/matchseer/internal/platform/logging"
	"github.com/footylytics/matchseer/internal/usecase"
)

type fakeDataSource struct {
	fixtures []match.Fixture
	live     []match.Fixture
}

func (f *fakeDataSource) FetchFixtures(_ context.Context, _ string, _ int64) []match.Fixture {
	return f.fixtures
}

func (f *fakeDataSource) FetchLiveFixtures(_ context.Context) []match.Fixture {
	return f.live
}

func (f *fakeDataSource) BatchFetch(_ context.Context, _ match.Fixture) match.Bundle {
	return match.Bundle{}
}

type fakeCompleter struct{}

func (fakeCompleter) Complete(_ context.Context, _, userPrompt string) (string, error) {
	_, after, _ := strings.Cut(userPrompt, "HOME TEAM (")
	home, _, _ := strings.Cut(after, ")")
	return fmt.Sprintf("Winner: %s (70%%)\nScore Prediction: 2-1\nAnalysis: Solid.\nConfidence: High", home), nil
}

func newTestRouter(fixtures []match.Fixture) http.Handler {
	analysisService := usecase.NewAnalysisService(usecase.AnalysisServiceConfig{
		Queries:   usecase.NewQueryService(logging.NewNop()),
		Data:      &fakeDataSource{fixtures: fixtures},
		Predictor: usecase.NewPredictionService(fakeCompleter{}, logging.NewNop()),
		History:   memory.NewPredictionRepository(50),
		Logger:    logging.NewNop(),
	})

	handler := NewHandler(analysisService, logging.NewNop())
	return NewRouter(handler, logging.NewNop(), []string{"*"})
}

func routerFixtures() []match.Fixture {
	return []match.Fixture{
		{
			ID:     101,
			League: match.LeagueRef{ID: 39, Name: "Premier League", Country: "England"},
			Home:   match.TeamRef{ID: 40, Name: "Liverpool"},
			Away:   match.TeamRef{ID: 33, Name: "Manchester United"},
		},
	}
}

func decodeEnvelope(t *testing.T, body []byte) googleResponseEnvelope {
	t.Helper()

	var envelope googleResponseEnvelope
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode envelope: %v body=%s", err, body)
	}
	return envelope
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	envelope := decodeEnvelope(t, rec.Body.Bytes())
	if envelope.APIVersion != googleAPIVersion {
		t.Fatalf("unexpected api version: got=%q", envelope.APIVersion)
	}
	if envelope.Error != nil {
		t.Fatalf("unexpected error body: %+v", envelope.Error)
	}
}

func TestListFixturesRequiresQuery(t *testing.T) {
	router := newTestRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/fixtures", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}
	envelope := decodeEnvelope(t, rec.Body.Bytes())
	if envelope.Error == nil || envelope.Error.Status != "INVALID_ARGUMENT" {
		t.Fatalf("unexpected error body: %+v", envelope.Error)
	}
}

func TestListFixtures(t *testing.T) {
	router := newTestRouter(routerFixtures())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/fixtures?query=premier+league+today", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"homeTeam":"Liverpool"`) {
		t.Fatalf("fixture missing from response: %s", rec.Body.String())
	}
}

func TestListLiveFixtures(t *testing.T) {
	analysisService := usecase.NewAnalysisService(usecase.AnalysisServiceConfig{
		Queries:   usecase.NewQueryService(logging.NewNop()),
		Data:      &fakeDataSource{live: routerFixtures()},
		Predictor: usecase.NewPredictionService(fakeCompleter{}, logging.NewNop()),
		History:   memory.NewPredictionRepository(50),
		Logger:    logging.NewNop(),
	})
	router := NewRouter(NewHandler(analysisService, logging.NewNop()), logging.NewNop(), []string{"*"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/fixtures/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"awayTeam":"Manchester United"`) {
		t.Fatalf("live fixture missing from response: %s", rec.Body.String())
	}
}

func TestCreateAnalyses(t *testing.T) {
	router := newTestRouter(routerFixtures())

	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", strings.NewReader(`{"query":"premier league today"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"matchup":"Manchester United @ Liverpool"`) {
		t.Fatalf("matchup missing from response: %s", body)
	}
	if !strings.Contains(body, `"winner":"Liverpool"`) {
		t.Fatalf("winner missing from response: %s", body)
	}
}

func TestCreateAnalysesRejectsBadBody(t *testing.T) {
	router := newTestRouter(routerFixtures())

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"query":`},
		{name: "missing query", body: `{}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/analyses", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCreateAnalysesWithoutFixtures(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", strings.NewReader(`{"query":"premier league today"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRecommendParlay(t *testing.T) {
	router := newTestRouter(routerFixtures())

	req := httptest.NewRequest(http.MethodPost, "/v1/parlay", strings.NewReader(`{"query":"premier league today"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"team":"Liverpool"`) {
		t.Fatalf("pick missing from response: %s", body)
	}
	if !strings.Contains(body, "Recommended Parlay") {
		t.Fatalf("parlay text missing from response: %s", body)
	}
}

func TestPredictionHistoryRoundTrip(t *testing.T) {
	router := newTestRouter(routerFixtures())

	req := httptest.NewRequest(http.MethodPost, "/v1/analyses", strings.NewReader(`{"query":"premier league today"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("analysis failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/predictions/history", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"matchup":"Manchester United @ Liverpool"`) {
		t.Fatalf("history missing record: %s", rec.Body.String())
	}
}

func TestPredictionHistoryRejectsBadLimit(t *testing.T) {
	router := newTestRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/predictions/history?limit=-3", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodOptions, "/v1/fixtures", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusNoContent)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header: %v", rec.Header())
	}
}
