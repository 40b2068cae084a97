package usecase

import (
	"fmt"
	"strings"

	"github.com/footylytics/matchseer/internal/domain/match"
)

// Plain-text summaries of fetched match data. These feed the analysis prompt,
// so the wording is stable: downstream parsing and the history UI both rely
// on it.

// FormatTeamStanding renders one league-table row. A nil entry means the team
// was not found in the standings.
func FormatTeamStanding(entry *match.StandingEntry) string {
	if entry == nil {
		return "Standing: Information not available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Position: %d, Points: %d, Goal Difference: %d\n", entry.Rank, entry.Points, entry.GoalsDiff)
	fmt.Fprintf(&b, "Form: %s\n", orNA(entry.Form))

	writeRecordLine(&b, "Overall", entry.Overall)
	writeRecordLine(&b, "Home", entry.Home)
	writeRecordLine(&b, "Away", entry.Away)

	return b.String()
}

func writeRecordLine(b *strings.Builder, label string, record *match.RecordSummary) {
	if record == nil {
		return
	}
	fmt.Fprintf(b, "%s: %dG %dW %dD %dL, Goals: %d-%d\n",
		label, record.Played, record.Won, record.Drawn, record.Lost,
		record.GoalsFor, record.GoalsAgainst)
}

// FormatTeamStats renders aggregate season statistics. Substructures the
// provider omitted are skipped rather than rendered as zeros.
func FormatTeamStats(stats match.TeamStatistics) string {
	if stats.IsZero() {
		return "Statistics: Not available"
	}

	var b strings.Builder
	b.WriteString("Key Stats:\n")

	if stats.Goals != nil {
		fmt.Fprintf(&b, "Avg Goals Scored: %s per game\n", orNA(stats.Goals.ForAverage))
		fmt.Fprintf(&b, "Avg Goals Conceded: %s per game\n", orNA(stats.Goals.AgainstAverage))
	}
	if stats.CleanSheet != nil {
		fmt.Fprintf(&b, "Clean Sheets: %d\n", stats.CleanSheet.Total)
	}
	if stats.Fixtures != nil {
		fmt.Fprintf(&b, "Form: W%d D%d L%d\n", stats.Fixtures.Wins, stats.Fixtures.Draws, stats.Fixtures.Loses)
	}

	return b.String()
}

// FormatHeadToHead tallies past meetings from the perspective of today's home
// team, identified by homeID. Only the five most recent meetings are listed
// and counted; the header reports the full history length.
func FormatHeadToHead(meetings []match.HeadToHeadMatch, homeID int64) string {
	if len(meetings) == 0 {
		return "No recent head-to-head matches found"
	}

	var homeWins, awayWins, draws int
	lines := make([]string, 0, 5)

	recent := meetings
	if len(recent) > 5 {
		recent = recent[:5]
	}
	for _, meeting := range recent {
		switch {
		case meeting.HomeGoals > meeting.AwayGoals:
			if meeting.Home.ID == homeID {
				homeWins++
			} else {
				awayWins++
			}
		case meeting.AwayGoals > meeting.HomeGoals:
			if meeting.Away.ID == homeID {
				homeWins++
			} else {
				awayWins++
			}
		default:
			draws++
		}

		date := ""
		if !meeting.Date.IsZero() {
			date = meeting.Date.Format("2006-01-02")
		}
		lines = append(lines, fmt.Sprintf("%s %d-%d %s (%s)",
			meeting.Home.Name, meeting.HomeGoals, meeting.AwayGoals, meeting.Away.Name, date))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Last %d meetings: %d wins for current home team, %d wins for current away team, %d draws\n",
		len(meetings), homeWins, awayWins, draws)
	b.WriteString("Recent results:\n")
	b.WriteString(strings.Join(lines, "\n"))

	return b.String()
}

// FormatBettingOdds renders the three markets the analysis cares about, in a
// fixed order.
func FormatBettingOdds(book match.OddsBook) string {
	if len(book) == 0 {
		return "Betting odds not available"
	}

	var b strings.Builder

	if values, ok := book["Match Winner"]; ok {
		b.WriteString("Match Result:\n")
		writeOddsLines(&b, values)
	}
	if values, ok := book["Goals Over/Under"]; ok {
		b.WriteString("\nGoals Over/Under:\n")
		writeOddsLines(&b, values)
	}
	if values, ok := book["Both Teams Score"]; ok {
		b.WriteString("\nBoth Teams to Score:\n")
		writeOddsLines(&b, values)
	}

	return b.String()
}

func writeOddsLines(b *strings.Builder, values []match.OddsValue) {
	for _, value := range values {
		fmt.Fprintf(b, "- %s: %s\n", value.Value, value.Odd)
	}
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
