package apifootball

import (
	"context"

	"github.com/sourcegraph/conc"

	"github.com/footylytics/matchseer/internal/domain/match"
)

// BatchFetch gathers every data set an analysis needs for one fixture in
// parallel: both teams' statistics, the league table, head-to-head history,
// both injury lists, and the odds book. Each branch degrades independently,
// so the returned bundle always has every field populated even when some of
// the seven lookups failed.
func (c *Client) BatchFetch(ctx context.Context, fixture match.Fixture) match.Bundle {
	var bundle match.Bundle

	var wg conc.WaitGroup
	wg.Go(func() {
		bundle.HomeStats = c.FetchTeamStatistics(ctx, fixture.Home.ID, fixture.League.ID, 0)
	})
	wg.Go(func() {
		bundle.AwayStats = c.FetchTeamStatistics(ctx, fixture.Away.ID, fixture.League.ID, 0)
	})
	wg.Go(func() {
		bundle.Standings = c.FetchStandings(ctx, fixture.League.ID, 0)
	})
	wg.Go(func() {
		bundle.HeadToHead = c.FetchHeadToHead(ctx, fixture.Home.ID, fixture.Away.ID, 0)
	})
	wg.Go(func() {
		bundle.HomeInjuries = c.FetchTeamInjuries(ctx, fixture.Home.ID, fixture.League.ID, 0)
	})
	wg.Go(func() {
		bundle.AwayInjuries = c.FetchTeamInjuries(ctx, fixture.Away.ID, fixture.League.ID, 0)
	})
	wg.Go(func() {
		bundle.Odds = c.FetchFixtureOdds(ctx, fixture.ID, 0)
	})
	wg.Wait()

	return bundle
}
