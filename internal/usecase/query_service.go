package usecase

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/footylytics/matchseer/internal/platform/logging"
)

// DefaultTimezone anchors all relative-date resolution. Fixture dates are
// requested in this zone regardless of where the caller is.
const DefaultTimezone = "Europe/London"

type leagueAlias struct {
	alias string
	id    int64
}

// Competition names checked before country adjectives. Order matters:
// the first alias contained in the query wins.
var leagueAliases = []leagueAlias{
	{"premier league", 39},
	{"epl", 39},
	{"la liga", 140},
	{"bundesliga", 78},
	{"serie a", 135},
	{"ligue 1", 61},
	{"primeira liga", 94},
	{"eredivisie", 88},
	{"championship", 40},
	{"mls", 253},
	{"brazilian serie a", 71},
	{"argentine primera", 128},
	{"champions league", 2},
	{"ucl", 2},
	{"europa league", 3},
	{"uel", 3},
	{"conference league", 848},
	{"world cup", 1},
	{"euro", 4},
	{"copa america", 13},
	{"afcon", 12},
}

var countryAliases = []leagueAlias{
	{"england", 39},
	{"english", 39},
	{"spain", 140},
	{"spanish", 140},
	{"germany", 78},
	{"german", 78},
	{"italy", 135},
	{"italian", 135},
	{"france", 61},
	{"french", 61},
	{"portugal", 94},
	{"portuguese", 94},
	{"netherlands", 88},
	{"dutch", 88},
	{"brazil", 71},
	{"brazilian", 71},
	{"argentina", 128},
	{"argentinian", 128},
	{"usa", 253},
	{"america", 253},
}

type teamAliases struct {
	canonical  string
	variations []string
}

// The canonical name is checked before its variations, per entry.
var knownTeams = []teamAliases{
	{"manchester united", []string{"man utd", "man united", "man u", "united", "mufc"}},
	{"manchester city", []string{"man city", "city", "mcfc"}},
	{"liverpool", []string{"lfc", "the reds"}},
	{"arsenal", []string{"the gunners", "afc"}},
	{"chelsea", []string{"the blues", "cfc"}},
	{"tottenham", []string{"spurs", "thfc"}},
	{"barcelona", []string{"barca", "fcb"}},
	{"real madrid", []string{"madrid", "los blancos"}},
	{"bayern munich", []string{"bayern", "fcb"}},
	{"paris saint-germain", []string{"psg", "paris"}},
	{"juventus", []string{"juve", "the old lady"}},
	{"ac milan", []string{"milan"}},
	{"inter milan", []string{"inter"}},
	{"borussia dortmund", []string{"dortmund", "bvb"}},
}

var monthDayPattern = regexp.MustCompile(`(?i)(jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|september|oct|october|nov|november|dec|december)\s+(\d{1,2})`)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// QueryService resolves free-text questions ("who plays in the premier league
// this weekend?") into the date, league, and team filters the fixture lookups
// need.
type QueryService struct {
	logger *logging.Logger
	loc    *time.Location
	parser *when.Parser
	now    func() time.Time
}

func NewQueryService(logger *logging.Logger) *QueryService {
	if logger == nil {
		logger = logging.Default()
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		logger.Warn("failed to load default timezone, using UTC", "timezone", DefaultTimezone, "error", err)
		loc = time.UTC
	}

	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)

	return &QueryService{
		logger: logger,
		loc:    loc,
		parser: parser,
		now:    time.Now,
	}
}

// ResolveDate extracts the match date from a query and returns it as
// YYYY-MM-DD. Relative keywords are checked first, then an explicit
// month-and-day mention, then a free-text parse of the whole query. When
// nothing matches, today is assumed.
func (s *QueryService) ResolveDate(ctx context.Context, query string) string {
	lower := strings.ToLower(query)
	now := s.now().In(s.loc)

	switch {
	case strings.Contains(lower, "tomorrow"):
		return formatDay(now.AddDate(0, 0, 1))
	case strings.Contains(lower, "yesterday"):
		return formatDay(now.AddDate(0, 0, -1))
	case strings.Contains(lower, "today"), strings.Contains(lower, "tonight"):
		return formatDay(now)
	case strings.Contains(lower, "weekend"):
		return formatDay(now.AddDate(0, 0, daysUntilSaturday(now.Weekday())))
	case strings.Contains(lower, "next week"):
		return formatDay(now.AddDate(0, 0, 7))
	}

	if target, ok := s.resolveMonthDay(lower, now); ok {
		return formatDay(target)
	}

	if result, err := s.parser.Parse(lower, now); err == nil && result != nil {
		return formatDay(result.Time.In(s.loc))
	} else if err != nil {
		s.logger.WarnContext(ctx, "free-text date parse failed, assuming today", "query", query, "error", err)
	}

	return formatDay(now)
}

// resolveMonthDay handles explicit "march 15" style mentions, preferring the
// next future occurrence when the date already passed this year.
func (s *QueryService) resolveMonthDay(lower string, now time.Time) (time.Time, bool) {
	groups := monthDayPattern.FindStringSubmatch(lower)
	if groups == nil {
		return time.Time{}, false
	}

	month, ok := monthsByPrefix[strings.ToLower(groups[1])[:3]]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(groups[2])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	target := time.Date(now.Year(), month, day, 0, 0, 0, 0, s.loc)
	if target.Before(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)) {
		target = target.AddDate(1, 0, 0)
	}
	return target, true
}

// ResolveLeague identifies a league id mentioned in the query. Competition
// names take precedence over country adjectives.
func (s *QueryService) ResolveLeague(query string) (int64, bool) {
	lower := strings.ToLower(query)

	for _, entry := range leagueAliases {
		if strings.Contains(lower, entry.alias) {
			return entry.id, true
		}
	}
	for _, entry := range countryAliases {
		if strings.Contains(lower, entry.alias) {
			return entry.id, true
		}
	}
	return 0, false
}

// ResolveTeam identifies a canonical team name mentioned in the query, either
// directly or through a common variation.
func (s *QueryService) ResolveTeam(query string) (string, bool) {
	lower := strings.ToLower(query)

	for _, entry := range knownTeams {
		if strings.Contains(lower, entry.canonical) {
			return entry.canonical, true
		}
		for _, variation := range entry.variations {
			if strings.Contains(lower, variation) {
				return entry.canonical, true
			}
		}
	}
	return "", false
}

func daysUntilSaturday(weekday time.Weekday) int {
	// Monday-based weekday, Saturday is 5.
	monBased := (int(weekday) + 6) % 7
	return ((5-monBased)%7 + 7) % 7
}

func formatDay(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatFriendlyDate renders a YYYY-MM-DD date for display, passing the input
// through untouched when it does not parse.
func FormatFriendlyDate(date string) string {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return parsed.Format("Monday, January 02, 2006")
}
