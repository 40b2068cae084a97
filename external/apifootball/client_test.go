package apifootball

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/footylytics/matchseer/internal/domain/match"
	"github.com/footylytics/matchseer/internal/platform/logging"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Logger:  logging.NewNop(),
		Timeout: 2 * time.Second,
	})
	return client, server
}

func TestFetchFixturesMapsPayload(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/fixtures", r.URL.Path)
		require.Equal(t, "2026-08-29", r.URL.Query().Get("date"))
		require.Equal(t, "39", r.URL.Query().Get("league"))
		require.Equal(t, "test-key", r.Header.Get("X-RapidAPI-Key"))

		_, _ = w.Write([]byte(`{"response":[{
			"fixture":{"id":101,"date":"2026-08-29T14:00:00+00:00","venue":{"id":5,"name":"Anfield","city":"Liverpool"}},
			"league":{"id":39,"name":"Premier League","country":"England"},
			"teams":{"home":{"id":40,"name":"Liverpool"},"away":{"id":33,"name":"Manchester United"}},
			"goals":{"home":null,"away":null}
		}]}`))
	}))

	fixtures := client.FetchFixtures(context.Background(), "2026-08-29", 39)
	require.Len(t, fixtures, 1)

	got := fixtures[0]
	require.Equal(t, int64(101), got.ID)
	require.Equal(t, "Anfield", got.Venue)
	require.Equal(t, "Premier League", got.League.Name)
	require.Equal(t, "England", got.League.Country)
	require.Equal(t, int64(40), got.Home.ID)
	require.Equal(t, "Manchester United", got.Away.Name)
	require.Equal(t, 2026, got.KickoffAt.Year())
}

func TestFetchFixturesDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusForbidden)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"response":`))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, tc.handler)

			fixtures := client.FetchFixtures(context.Background(), "2026-08-29", 0)
			require.NotNil(t, fixtures)
			require.Empty(t, fixtures)
		})
	}
}

func TestFetchStandingsFlattensGroups(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/standings", r.URL.Path)
		require.Equal(t, "2024", r.URL.Query().Get("season"))

		_, _ = w.Write([]byte(`{"response":[{"league":{"id":2,"standings":[
			[{"rank":1,"team":{"id":50,"name":"Manchester City"},"points":9,"goalsDiff":7,"form":"WWW",
			  "all":{"played":3,"win":3,"draw":0,"lose":0,"goals":{"for":9,"against":2}}}],
			[{"rank":1,"team":{"id":85,"name":"Paris Saint Germain"},"points":7,"goalsDiff":4,"form":"WWD"},
			 {"rank":2,"team":{"id":50,"name":"Manchester City"},"points":6,"goalsDiff":3,"form":"WWL"}]
		]}}]}`))
	}))

	table := client.FetchStandings(context.Background(), 2, 0)
	require.Len(t, table, 2)

	// Later groups overwrite earlier rows for the same team id.
	city := table[50]
	require.Equal(t, 2, city.Rank)
	require.Equal(t, 6, city.Points)
	require.Nil(t, city.Overall)

	psg := table[85]
	require.Equal(t, 7, psg.Points)
	require.Equal(t, "WWD", psg.Form)
}

func TestFetchStandingsCachesPerLeagueSeason(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"response":[{"league":{"id":39,"standings":[[
			{"rank":1,"team":{"id":40,"name":"Liverpool"},"points":12,"goalsDiff":8,"form":"WWWW"}
		]]}}]}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL:      server.URL,
		APIKey:       "test-key",
		Logger:       logging.NewNop(),
		StandingsTTL: time.Minute,
	})

	for i := 0; i < 3; i++ {
		table := client.FetchStandings(context.Background(), 39, 2024)
		require.Len(t, table, 1)
	}
	require.Equal(t, 1, calls)
}

func TestFetchTeamStatisticsKeepsAbsenceAsNil(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":{
			"goals":{"for":{"average":{"total":"2.1"}}},
			"fixtures":{"wins":{"total":8},"draws":{"total":3},"loses":{"total":2}}
		}}`))
	}))

	stats := client.FetchTeamStatistics(context.Background(), 40, 39, 0)
	require.NotNil(t, stats.Goals)
	require.Equal(t, "2.1", stats.Goals.ForAverage)
	require.Equal(t, "", stats.Goals.AgainstAverage)
	require.Nil(t, stats.CleanSheet)
	require.NotNil(t, stats.Fixtures)
	require.Equal(t, 8, stats.Fixtures.Wins)
}

func TestFetchHeadToHeadUsesPairedQuery(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/fixtures/headtohead", r.URL.Path)
		require.Equal(t, "40-33", r.URL.Query().Get("h2h"))
		require.Equal(t, "10", r.URL.Query().Get("last"))

		_, _ = w.Write([]byte(`{"response":[{
			"fixture":{"id":77,"date":"2026-01-05T17:30:00+00:00"},
			"teams":{"home":{"id":33,"name":"Manchester United"},"away":{"id":40,"name":"Liverpool"}},
			"goals":{"home":0,"away":3}
		}]}`))
	}))

	meetings := client.FetchHeadToHead(context.Background(), 40, 33, 0)
	require.Len(t, meetings, 1)
	require.Equal(t, int64(33), meetings[0].Home.ID)
	require.Equal(t, 0, meetings[0].HomeGoals)
	require.Equal(t, 3, meetings[0].AwayGoals)
}

func TestFetchFixtureOddsConcatenatesAcrossBookmakers(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "1", r.URL.Query().Get("bookmaker"))

		_, _ = w.Write([]byte(`{"response":[{"bookmakers":[
			{"id":1,"name":"A","bets":[
				{"id":1,"name":"Match Winner","values":[{"value":"Home","odd":"1.80"},{"value":"Away","odd":"4.20"}]}
			]},
			{"id":2,"name":"B","bets":[
				{"id":1,"name":"Match Winner","values":[{"value":"Home","odd":"1.85"}]},
				{"id":5,"name":"Goals Over/Under","values":[{"value":"Over 2.5","odd":"1.95"}]}
			]}
		]}]}`))
	}))

	book := client.FetchFixtureOdds(context.Background(), 101, 0)
	require.Len(t, book, 2)
	require.Len(t, book["Match Winner"], 3)
	require.Equal(t, "1.85", book["Match Winner"][2].Odd)
	require.Len(t, book["Goals Over/Under"], 1)
}

func TestFetchTeamInjuriesMapsPlayers(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"response":[
			{"player":{"id":9,"name":"Alisson Becker","type":"Missing Fixture","reason":"Hamstring Injury"}}
		]}`))
	}))

	injuries := client.FetchTeamInjuries(context.Background(), 40, 39, 0)
	require.Len(t, injuries, 1)
	require.Equal(t, "Alisson Becker", injuries[0].Player)
	require.Equal(t, "Missing Fixture", injuries[0].Type)
}

func sampleFixture() match.Fixture {
	return match.Fixture{
		ID:     101,
		Venue:  "Anfield",
		League: match.LeagueRef{ID: 39, Name: "Premier League", Country: "England"},
		Home:   match.TeamRef{ID: 40, Name: "Liverpool"},
		Away:   match.TeamRef{ID: 33, Name: "Manchester United"},
	}
}

func TestSearchTeamsMapsResults(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/teams", r.URL.Path)
		require.Equal(t, "liverpool", r.URL.Query().Get("search"))

		_, _ = w.Write([]byte(`{"response":[
			{"team":{"id":40,"name":"Liverpool","country":"England","founded":1892},"venue":{"id":5,"name":"Anfield"}}
		]}`))
	}))

	teams := client.SearchTeams(context.Background(), "liverpool")
	require.Len(t, teams, 1)
	require.Equal(t, int64(40), teams[0].ID)
	require.Equal(t, "England", teams[0].Country)
	require.Equal(t, 1892, teams[0].Founded)
	require.Equal(t, "Anfield", teams[0].Venue)
}

func TestFetchLeagueInfoMapsPayload(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/leagues", r.URL.Path)
		require.Equal(t, "39", r.URL.Query().Get("id"))

		_, _ = w.Write([]byte(`{"response":[
			{"league":{"id":39,"name":"Premier League","type":"League"},"country":{"name":"England","code":"GB"}}
		]}`))
	}))

	info := client.FetchLeagueInfo(context.Background(), 39)
	require.Equal(t, int64(39), info.ID)
	require.Equal(t, "Premier League", info.Name)
	require.Equal(t, "League", info.Type)
	require.Equal(t, "England", info.Country)
}

func TestBatchFetchPopulatesEveryFieldUnderFailure(t *testing.T) {
	// Only the odds endpoint answers; every other branch degrades.
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/odds" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"response":[{"bookmakers":[{"id":1,"name":"A","bets":[
			{"id":1,"name":"Match Winner","values":[{"value":"Draw","odd":"3.40"}]}
		]}]}]}`))
	}))

	bundle := client.BatchFetch(context.Background(), sampleFixture())

	require.True(t, bundle.HomeStats.IsZero())
	require.True(t, bundle.AwayStats.IsZero())
	require.NotNil(t, bundle.Standings)
	require.Empty(t, bundle.Standings)
	require.NotNil(t, bundle.HeadToHead)
	require.NotNil(t, bundle.HomeInjuries)
	require.NotNil(t, bundle.AwayInjuries)
	require.Len(t, bundle.Odds["Match Winner"], 1)
}
