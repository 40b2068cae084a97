package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/footylytics/matchseer/internal/domain/match"
	"github.com/footylytics/matchseer/internal/platform/logging"
)

type stubCompleter struct {
	response string
	err      error

	lastSystem string
	lastUser   string
}

func (s *stubCompleter) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	s.lastSystem = systemPrompt
	s.lastUser = userPrompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testFixture() match.Fixture {
	return match.Fixture{
		ID:     101,
		Venue:  "Anfield",
		League: match.LeagueRef{ID: 39, Name: "Premier League", Country: "England"},
		Home:   match.TeamRef{ID: 40, Name: "Liverpool"},
		Away:   match.TeamRef{ID: 33, Name: "Manchester United"},
	}
}

func TestPredictBuildsPromptFromBundle(t *testing.T) {
	llm := &stubCompleter{response: "Winner: Liverpool (72%)\nScore Prediction: 2-1\nAnalysis: Strong home form.\nConfidence: High"}
	svc := NewPredictionService(llm, logging.NewNop())

	bundle := match.Bundle{
		Standings: match.StandingsTable{
			40: {Rank: 1, Points: 12, GoalsDiff: 8, Form: "WWWW"},
		},
		HomeInjuries: []match.Injury{
			{Player: "Alisson Becker", Type: "Missing Fixture"},
			{Player: "Diogo Jota", Type: "Questionable"},
		},
		Odds: match.OddsBook{
			"Match Winner": {{Value: "Home", Odd: "1.80"}, {Value: "Away", Odd: "4.20"}},
		},
	}

	svc.Predict(context.Background(), testFixture(), bundle)

	if llm.lastSystem != analystSystemPrompt {
		t.Fatalf("unexpected system prompt: got=%q", llm.lastSystem)
	}

	for _, fragment := range []string{
		"Analyze this Premier League matchup between Manchester United (Away) and Liverpool (Home).",
		"- Venue: Anfield",
		"HOME TEAM (Liverpool):",
		"Position: 1, Points: 12, Goal Difference: 8",
		"Injuries: Alisson Becker (Missing Fixture), Diogo Jota (Questionable)",
		"AWAY TEAM (Manchester United):",
		"Standing: Information not available",
		"Statistics: Not available",
		"Injuries: None reported",
		"No recent head-to-head matches found",
		"Match Result:\n- Home: 1.80\n- Away: 4.20",
		"Winner: [Team Name] ([Win Probability]%)",
	} {
		if !strings.Contains(llm.lastUser, fragment) {
			t.Fatalf("prompt missing fragment %q:\n%s", fragment, llm.lastUser)
		}
	}
}

func TestPredictParsesModelOutput(t *testing.T) {
	llm := &stubCompleter{response: "Winner: Liverpool (72%)\n\nScore Prediction: 2-1\nAnalysis: Strong home form and a depleted away defense.\nConfidence: High"}
	svc := NewPredictionService(llm, logging.NewNop())

	bundle := match.Bundle{
		Odds: match.OddsBook{
			"Match Winner": {
				{Value: "Home", Odd: "1.80"},
				{Value: "Draw", Odd: "3.40"},
				{Value: "Away", Odd: "4.20"},
			},
		},
	}

	got := svc.Predict(context.Background(), testFixture(), bundle)

	if got.Degraded {
		t.Fatalf("unexpected degraded prediction")
	}
	if got.Winner != "Liverpool" {
		t.Fatalf("unexpected winner: got=%q want=%q", got.Winner, "Liverpool")
	}
	if got.WinProbability != 72 {
		t.Fatalf("unexpected probability: got=%v want=72", got.WinProbability)
	}
	if got.Score != "2-1" {
		t.Fatalf("unexpected score: got=%q", got.Score)
	}
	if got.Confidence != "High" {
		t.Fatalf("unexpected confidence: got=%q", got.Confidence)
	}

	wantText := "⚽ Manchester United (Away) @ Liverpool (Home)\n" +
		"League: Premier League (England)\n\n" +
		"Winner: Liverpool (72%)\n" +
		"Score Prediction: 2-1\n" +
		"Analysis: Strong home form and a depleted away defense.\n" +
		"Confidence: High\n" +
		"\nBetting Odds:\n" +
		"Liverpool win: 1.80\n" +
		"Draw: 3.40\n" +
		"Manchester United win: 4.20\n"
	if got.Text != wantText {
		t.Fatalf("unexpected prediction text:\ngot=%q\nwant=%q", got.Text, wantText)
	}
}

func TestPredictDegradesOnModelFailure(t *testing.T) {
	llm := &stubCompleter{err: errors.New("rate limited")}
	svc := NewPredictionService(llm, logging.NewNop())

	got := svc.Predict(context.Background(), testFixture(), match.Bundle{})

	if !got.Degraded {
		t.Fatalf("expected degraded prediction")
	}
	want := "⚽ Manchester United (Away) @ Liverpool (Home)\n\nUnable to generate prediction: rate limited"
	if got.Text != want {
		t.Fatalf("unexpected degraded text:\ngot=%q\nwant=%q", got.Text, want)
	}
}

func TestBuildParlaySelectsHighConfidencePicks(t *testing.T) {
	svc := NewPredictionService(&stubCompleter{}, logging.NewNop())

	inputs := []MatchupPrediction{
		{Matchup: "A @ B", Text: "Winner: Liverpool (75%)\nConfidence: High\n\nBetting Odds:\nLiverpool win: 1.80\nDraw: 3.40"},
		{Matchup: "C @ D", Text: "Winner: Arsenal (90%)\nConfidence: Medium"},
		{Matchup: "E @ F", Text: "Winner: Barcelona (65%)\nConfidence: High"},
		{Matchup: "G @ H", Text: "Winner: Juventus (55%)\nConfidence: High"},
	}

	selection, text := svc.BuildParlay(context.Background(), inputs)

	if len(selection.Picks) != 2 {
		t.Fatalf("unexpected pick count: got=%d want=2", len(selection.Picks))
	}
	if selection.Picks[0].Team != "Liverpool" || selection.Picks[0].Probability != 75 {
		t.Fatalf("unexpected first pick: %+v", selection.Picks[0])
	}
	if selection.Picks[0].OddsLine != "1.80" {
		t.Fatalf("unexpected odds line: got=%q want=%q", selection.Picks[0].OddsLine, "1.80")
	}
	if selection.Picks[1].Team != "Barcelona" || selection.Picks[1].Probability != 65 {
		t.Fatalf("unexpected second pick: %+v", selection.Picks[1])
	}
	if selection.CombinedProbability != 48.75 {
		t.Fatalf("unexpected combined probability: got=%v want=48.75", selection.CombinedProbability)
	}

	wantText := "🎲 Recommended Parlay:\n\n" +
		"1. Liverpool (75% probability)\n" +
		"   Odds: 1.80\n" +
		"2. Barcelona (65% probability)\n" +
		"\nCombined Probability: 48.8%\n" +
		"Note: This parlay combines the highest confidence picks based on team form, injuries, and historical matchups."
	if text != wantText {
		t.Fatalf("unexpected parlay text:\ngot=%q\nwant=%q", text, wantText)
	}
}

func TestBuildParlayCapsAtThreeLegs(t *testing.T) {
	svc := NewPredictionService(&stubCompleter{}, logging.NewNop())

	inputs := []MatchupPrediction{
		{Text: "Winner: A (70%)\nConfidence: High"},
		{Text: "Winner: B (80%)\nConfidence: High"},
		{Text: "Winner: C (65%)\nConfidence: High"},
		{Text: "Winner: D (90%)\nConfidence: High"},
	}

	selection, _ := svc.BuildParlay(context.Background(), inputs)

	if len(selection.Picks) != 3 {
		t.Fatalf("unexpected pick count: got=%d want=3", len(selection.Picks))
	}
	wantOrder := []string{"D", "B", "A"}
	for i, want := range wantOrder {
		if selection.Picks[i].Team != want {
			t.Fatalf("unexpected pick order at %d: got=%q want=%q", i, selection.Picks[i].Team, want)
		}
	}
}

func TestBuildParlayWithoutQualifyingPicks(t *testing.T) {
	svc := NewPredictionService(&stubCompleter{}, logging.NewNop())

	tests := []struct {
		name   string
		inputs []MatchupPrediction
	}{
		{name: "no predictions", inputs: nil},
		{name: "low confidence", inputs: []MatchupPrediction{{Text: "Winner: A (95%)\nConfidence: Low"}}},
		{name: "probability at threshold", inputs: []MatchupPrediction{{Text: "Winner: A (60%)\nConfidence: High"}}},
		{name: "degraded text", inputs: []MatchupPrediction{{Text: "⚽ A (Away) @ B (Home)\n\nUnable to generate prediction: boom"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			selection, text := svc.BuildParlay(context.Background(), tc.inputs)

			if len(selection.Picks) != 0 {
				t.Fatalf("unexpected picks: %+v", selection.Picks)
			}
			if text != "I don't have enough high-confidence picks to recommend a parlay today." {
				t.Fatalf("unexpected text: got=%q", text)
			}
		})
	}
}

func TestExtractProbabilityDefaultsWithoutMatch(t *testing.T) {
	if got := extractProbability("Winner: Liverpool"); got != 50.0 {
		t.Fatalf("unexpected default probability: got=%v want=50", got)
	}
}
