package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fr4nk3nst1ner/offersleuth/internal/aggregate"
	"github.com/fr4nk3nst1ner/offersleuth/internal/config"
	"github.com/fr4nk3nst1ner/offersleuth/internal/models"
	"github.com/fr4nk3nst1ner/offersleuth/internal/scraper"
	"github.com/fr4nk3nst1ner/offersleuth/internal/store"
	"github.com/fr4nk3nst1ner/offersleuth/internal/utils"
)

const threeRowTable = `<html><body><table>
<thead><tr><th>Player</th><th>Salary</th><th>Year</th><th>Level</th></tr></thead>
<tbody>
<tr><td>Scherzer, Max</td><td>$5,000,000</td><td>2016</td><td>MLB</td></tr>
<tr><td>Nobody, Known</td><td>$3,000,000</td><td>2016</td><td>MLB</td></tr>
<tr><td>Votto, Joey</td><td>$1,000,000</td><td>2016</td><td>MLB</td></tr>
</tbody></table></body></html>`

const maxPage = `<html><body><table class="infobox vcard">
<tr><td class="infobox-full-data"><a href="/wiki/Pitcher">Starting pitcher</a></td></tr>
<tr><th>Born</th><td class="infobox-data"><span class="noprint ForceAgeToShow"> (age&nbsp;36)</span></td></tr>
<tr><th><a href="/wiki/ERA">Earned run average</a></th><td class="infobox-data">3.16</td></tr>
<tr><th><a href="/wiki/K">Strikeouts</a></th><td class="infobox-data">3,020</td></tr>
</table></body></html>`

func testServer(t *testing.T, table string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/swe/data.html":
			fmt.Fprint(w, table)
		case "/wiki/Max_Scherzer":
			fmt.Fprint(w, maxPage)
		default:
			http.NotFound(w, r)
		}
	}))
}

func testConfig(t *testing.T, srv *httptest.Server, topN int) *config.AppConfig {
	cfg := config.Default()
	cfg.Source.URL = srv.URL + "/swe/data.html"
	cfg.Source.TopN = topN
	cfg.Scraper.BaseURL = srv.URL + "/wiki/"
	cfg.Scraper.Timeout = 2 * time.Second
	cfg.Scraper.Progress = false
	cfg.Scraper.RateLimit = 0
	cfg.Store.Path = ":memory:"
	cfg.Output.Dir = filepath.Join(t.TempDir(), "plots")
	require.NoError(t, cfg.Validate())
	return cfg
}

func openStore(t *testing.T) *store.Store {
	st, err := OpenStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestEstimateThreeRows(t *testing.T) {
	srv := testServer(t, threeRowTable)
	defer srv.Close()

	p := New(testConfig(t, srv, 2), openStore(t), nil)
	res, err := p.Estimate(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Records, 3)
	require.Equal(t, 4000000.0, res.Offer)
	require.Equal(t, 4000000.0, res.OfferSQL)
	require.Equal(t, "$4,000,000.00", utils.FormatSalary(res.Offer))
}

func TestRunIsolatesFetchFailures(t *testing.T) {
	srv := testServer(t, threeRowTable)
	defer srv.Close()

	cfg := testConfig(t, srv, 2)
	st := openStore(t)
	res, err := New(cfg, st, nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Cohort, 2)
	require.Len(t, res.Entities, 2, "no entity dropped during enrichment")
	require.Equal(t, models.ScrapeProgress{Fetched: 1, Failed: 1}, res.Summary)

	failed := res.Entities[1]
	require.Equal(t, "Nobody, Known", failed.FullName)
	require.Equal(t, models.FetchFailure, failed.Status)
	require.Nil(t, failed.Category)
	require.Nil(t, failed.Age)
	require.Nil(t, failed.ERA)
	require.Nil(t, failed.Strikeouts)
	require.Nil(t, failed.BattingAverage)
	require.Nil(t, failed.HomeRuns)
	require.Nil(t, failed.RunsBattedIn)

	for _, s := range []models.Stat{models.StatAge, models.StatERA, models.StatHomeRuns} {
		present, missing := aggregate.Coverage(res.Entities, s)
		require.Equal(t, len(res.Cohort), present+missing)
	}

	require.Len(t, res.Aggregates, 1)
	pitchers := res.Aggregates[0]
	require.Equal(t, models.CategoryPitcher, pitchers.Category)
	require.Equal(t, 1, pitchers.Members, "failed entity is excluded, not counted as zero")
	require.Equal(t, 5000000.0, *pitchers.AvgSalary)

	require.ElementsMatch(t, []string{
		filepath.Join(cfg.Output.Dir, "pitcher_age_vs_salary.png"),
		filepath.Join(cfg.Output.Dir, "pitcher_earned_run_average_vs_salary.png"),
		filepath.Join(cfg.Output.Dir, "pitcher_strikeouts_vs_salary.png"),
	}, res.Plots)

	staged, err := st.LoadTopStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, res.Entities, staged)
}

func TestReportFromStagedRun(t *testing.T) {
	srv := testServer(t, threeRowTable)
	defer srv.Close()

	cfg := testConfig(t, srv, 2)
	cfg.Output.Plots = false
	st := openStore(t)
	p := New(cfg, st, nil)

	_, err := p.Report(context.Background())
	var fatalErr *FatalError
	require.True(t, errors.As(err, &fatalErr))
	require.ErrorIs(t, err, store.ErrNotStaged)

	run, err := p.Run(context.Background())
	require.NoError(t, err)

	report, err := p.Report(context.Background())
	require.NoError(t, err)
	require.Equal(t, run.Offer, report.Offer)
	require.Equal(t, run.Summary, report.Summary)
	require.Len(t, report.Aggregates, 1)
	require.Equal(t, *run.Aggregates[0].AvgSalary, *report.Aggregates[0].AvgSalary)
	require.Empty(t, report.Plots)
}

func TestMissingColumnIsFatal(t *testing.T) {
	srv := testServer(t, `<table><tr><th>Name</th><th>Salary</th></tr><tr><td>A, B</td><td>$1</td></tr></table>`)
	defer srv.Close()

	_, err := New(testConfig(t, srv, 2), openStore(t), nil).Run(context.Background())
	var fatalErr *FatalError
	require.True(t, errors.As(err, &fatalErr))
	require.Equal(t, "read salary table", fatalErr.Stage)
	require.ErrorIs(t, err, scraper.ErrMissingColumn)
	require.Contains(t, err.Error(), `"player"`)
}

func TestUnreachableSourceIsFatal(t *testing.T) {
	srv := testServer(t, threeRowTable)
	cfg := testConfig(t, srv, 2)
	srv.Close()

	_, err := New(cfg, openStore(t), nil).Estimate(context.Background())
	var fatalErr *FatalError
	require.True(t, errors.As(err, &fatalErr))
}
