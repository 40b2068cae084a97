package usecase

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/footylytics/matchseer/internal/domain/match"
	"github.com/footylytics/matchseer/internal/domain/prediction"
	"github.com/footylytics/matchseer/internal/platform/logging"
)

const analystSystemPrompt = "You are an expert football/soccer analyst with deep knowledge of leagues worldwide. Provide predictions in the exact format requested."

const (
	maxParlayLegs      = 3
	parlayMinProb      = 60.0
	defaultProbability = 50.0
)

var probabilityPattern = regexp.MustCompile(`\((\d+)%\)`)

// Completer produces one assistant response for a system+user exchange.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// PredictionService turns a fixture and its fetched data bundle into a
// formatted match prediction, and combines predictions into a parlay
// recommendation.
type PredictionService struct {
	llm    Completer
	logger *logging.Logger
}

func NewPredictionService(llm Completer, logger *logging.Logger) *PredictionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PredictionService{llm: llm, logger: logger}
}

// Predict generates the prediction for one fixture. A model failure never
// propagates as an error: the result carries the degraded fallback text so a
// slate of predictions renders completely even when single calls fail.
func (s *PredictionService) Predict(ctx context.Context, fixture match.Fixture, bundle match.Bundle) prediction.Prediction {
	ctx, span := startUsecaseSpan(ctx, "PredictionService.Predict")
	defer span.End()

	prompt := buildAnalysisPrompt(fixture, bundle)

	analysis, err := s.llm.Complete(ctx, analystSystemPrompt, prompt)
	if err != nil {
		s.logger.ErrorContext(ctx, "prediction generation failed",
			"fixture_id", fixture.ID, "home", fixture.Home.Name, "away", fixture.Away.Name, "error", err)
		return prediction.Prediction{
			Text: fmt.Sprintf("⚽ %s (Away) @ %s (Home)\n\nUnable to generate prediction: %s",
				fixture.Away.Name, fixture.Home.Name, err.Error()),
			Odds:     bundle.Odds,
			Degraded: true,
		}
	}

	result := parsePredictionFields(analysis)
	result.Text = renderPredictionText(fixture, bundle.Odds, analysis)
	result.Odds = bundle.Odds
	return result
}

func buildAnalysisPrompt(fixture match.Fixture, bundle match.Bundle) string {
	venue := fixture.Venue
	if venue == "" {
		venue = "Unknown"
	}

	oddsSection := "Not available"
	if len(bundle.Odds) > 0 {
		oddsSection = FormatBettingOdds(bundle.Odds)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this %s matchup between %s (Away) and %s (Home).\n\n",
		fixture.League.Name, fixture.Away.Name, fixture.Home.Name)
	b.WriteString("Match details:\n")
	fmt.Fprintf(&b, "- Date: %s\n", fixture.KickoffAt.Format("2006-01-02T15:04:05-07:00"))
	fmt.Fprintf(&b, "- Venue: %s\n\n", venue)

	fmt.Fprintf(&b, "HOME TEAM (%s):\n", fixture.Home.Name)
	b.WriteString(FormatTeamStanding(standingFor(bundle.Standings, fixture.Home.ID)))
	b.WriteString("\n")
	b.WriteString(FormatTeamStats(bundle.HomeStats))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Injuries: %s\n\n", formatInjuries(bundle.HomeInjuries))

	fmt.Fprintf(&b, "AWAY TEAM (%s):\n", fixture.Away.Name)
	b.WriteString(FormatTeamStanding(standingFor(bundle.Standings, fixture.Away.ID)))
	b.WriteString("\n")
	b.WriteString(FormatTeamStats(bundle.AwayStats))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Injuries: %s\n\n", formatInjuries(bundle.AwayInjuries))

	b.WriteString("HEAD-TO-HEAD HISTORY:\n")
	b.WriteString(FormatHeadToHead(bundle.HeadToHead, fixture.Home.ID))
	b.WriteString("\n\n")

	b.WriteString("BETTING ODDS:\n")
	b.WriteString(oddsSection)
	b.WriteString("\n\n")

	b.WriteString("Provide your response in exactly this format:\n")
	b.WriteString("Winner: [Team Name] ([Win Probability]%)\n")
	b.WriteString("Score Prediction: [Score]\n")
	b.WriteString("Analysis: 3-4 sentences analyzing key factors including form, home/away advantage, key player availability, and historical matchups\n")
	b.WriteString("Confidence: High/Medium/Low\n")

	return b.String()
}

func standingFor(table match.StandingsTable, teamID int64) *match.StandingEntry {
	if entry, ok := table[teamID]; ok {
		return &entry
	}
	return nil
}

func formatInjuries(injuries []match.Injury) string {
	if len(injuries) == 0 {
		return "None reported"
	}
	parts := make([]string, 0, len(injuries))
	for _, injury := range injuries {
		parts = append(parts, fmt.Sprintf("%s (%s)", injury.Player, injury.Type))
	}
	return strings.Join(parts, ", ")
}

// renderPredictionText assembles the user-facing blob: matchup header, the
// model's labeled lines with blanks stripped, and a betting-odds tail when a
// Match Winner market is available.
func renderPredictionText(fixture match.Fixture, odds match.OddsBook, analysis string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚽ %s (Away) @ %s (Home)\n", fixture.Away.Name, fixture.Home.Name)
	fmt.Fprintf(&b, "League: %s (%s)\n\n", fixture.League.Name, fixture.League.Country)

	for _, line := range strings.Split(analysis, "\n") {
		if strings.TrimSpace(line) != "" {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if values, ok := odds["Match Winner"]; ok {
		b.WriteString("\nBetting Odds:\n")
		for _, value := range values {
			switch value.Value {
			case "Home":
				fmt.Fprintf(&b, "%s win: %s\n", fixture.Home.Name, value.Odd)
			case "Away":
				fmt.Fprintf(&b, "%s win: %s\n", fixture.Away.Name, value.Odd)
			case "Draw":
				fmt.Fprintf(&b, "Draw: %s\n", value.Odd)
			}
		}
	}

	return b.String()
}

// parsePredictionFields extracts the structured fields from the model's
// labeled lines. Parsing is best effort: a missing or malformed line leaves
// its field empty rather than failing the prediction.
func parsePredictionFields(analysis string) prediction.Prediction {
	var out prediction.Prediction

	for _, line := range strings.Split(analysis, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.Contains(trimmed, "Winner:") && out.Winner == "":
			out.Winner = extractWinnerName(trimmed)
			out.WinProbability = extractProbability(trimmed)
		case strings.HasPrefix(trimmed, "Score Prediction:"):
			out.Score = strings.TrimSpace(strings.TrimPrefix(trimmed, "Score Prediction:"))
		case strings.HasPrefix(trimmed, "Analysis:"):
			out.Analysis = strings.TrimSpace(strings.TrimPrefix(trimmed, "Analysis:"))
		case strings.Contains(trimmed, "Confidence:") && out.Confidence == "":
			out.Confidence = extractConfidence(trimmed)
		}
	}

	return out
}

func extractWinnerName(line string) string {
	_, after, found := strings.Cut(line, ":")
	if !found {
		return "Unknown"
	}
	name, _, _ := strings.Cut(after, "(")
	name = strings.TrimSpace(name)
	if name == "" {
		return "Unknown"
	}
	return name
}

func extractProbability(line string) float64 {
	groups := probabilityPattern.FindStringSubmatch(line)
	if groups == nil {
		return defaultProbability
	}
	value, err := strconv.ParseFloat(groups[1], 64)
	if err != nil {
		return defaultProbability
	}
	return value
}

func extractConfidence(line string) string {
	_, after, found := strings.Cut(line, ": ")
	if !found {
		return "Unknown"
	}
	fields := strings.Fields(after)
	if len(fields) == 0 {
		return "Unknown"
	}
	return fields[0]
}

// MatchupPrediction pairs a matchup label with its prediction text, the two
// inputs the parlay builder consumes.
type MatchupPrediction struct {
	Matchup string
	Text    string
}

type parlayCandidate struct {
	winner       string
	probability  float64
	bettingLines string
}

// BuildParlay selects up to three high-confidence picks across the given
// predictions and renders the recommendation. Picks qualify with High
// confidence and a win probability above 60; the combined probability treats
// legs as independent events.
func (s *PredictionService) BuildParlay(ctx context.Context, predictions []MatchupPrediction) (prediction.ParlaySelection, string) {
	_, span := startUsecaseSpan(ctx, "PredictionService.BuildParlay")
	defer span.End()

	candidates := make([]parlayCandidate, 0, len(predictions))
	for _, pred := range predictions {
		candidate, ok := parseParlayCandidate(pred.Text)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate)
	}

	if len(candidates) == 0 {
		return prediction.ParlaySelection{}, "I don't have enough high-confidence picks to recommend a parlay today."
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].probability > candidates[j].probability
	})
	if len(candidates) > maxParlayLegs {
		candidates = candidates[:maxParlayLegs]
	}

	combined := 100.0
	for _, candidate := range candidates {
		combined *= candidate.probability / 100
	}

	selection := prediction.ParlaySelection{
		Picks:               make([]prediction.ParlayPick, 0, len(candidates)),
		CombinedProbability: combined,
	}

	var b strings.Builder
	b.WriteString("🎲 Recommended Parlay:\n\n")
	for i, candidate := range candidates {
		fmt.Fprintf(&b, "%d. %s (%.0f%% probability)\n", i+1, candidate.winner, candidate.probability)

		pick := prediction.ParlayPick{
			Rank:        i + 1,
			Team:        candidate.winner,
			Probability: candidate.probability,
		}
		if line, ok := matchingOddsLine(candidate.bettingLines, candidate.winner); ok {
			pick.OddsLine = line
			fmt.Fprintf(&b, "   Odds: %s\n", line)
		}
		selection.Picks = append(selection.Picks, pick)
	}
	fmt.Fprintf(&b, "\nCombined Probability: %.1f%%\n", combined)
	b.WriteString("Note: This parlay combines the highest confidence picks based on team form, injuries, and historical matchups.")

	return selection, b.String()
}

// parseParlayCandidate pulls the winner, probability, and betting-odds tail
// from one prediction text and applies the qualification filter.
func parseParlayCandidate(text string) (parlayCandidate, bool) {
	var winnerLine, confidenceLine string
	for _, line := range strings.Split(text, "\n") {
		if winnerLine == "" && strings.Contains(line, "Winner:") {
			winnerLine = line
		}
		if confidenceLine == "" && strings.Contains(line, "Confidence:") {
			confidenceLine = line
		}
	}
	if winnerLine == "" || confidenceLine == "" {
		return parlayCandidate{}, false
	}

	confidence := extractConfidence(confidenceLine)
	probability := extractProbability(winnerLine)
	if confidence != "High" || probability <= parlayMinProb {
		return parlayCandidate{}, false
	}

	candidate := parlayCandidate{
		winner:      extractWinnerName(winnerLine),
		probability: probability,
	}
	if _, after, found := strings.Cut(text, "Betting Odds:"); found {
		candidate.bettingLines = strings.TrimSpace(after)
	}
	return candidate, true
}

// matchingOddsLine finds the first betting line mentioning the winner and
// returns the quoted odd.
func matchingOddsLine(bettingLines, winner string) (string, bool) {
	if bettingLines == "" || winner == "" {
		return "", false
	}
	for _, line := range strings.Split(bettingLines, "\n") {
		if !strings.Contains(line, winner) {
			continue
		}
		if _, after, found := strings.Cut(line, ":"); found {
			return strings.TrimSpace(after), true
		}
	}
	return "", false
}
