package chart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fr4nk3nst1ner/offersleuth/internal/aggregate"
	"github.com/fr4nk3nst1ner/offersleuth/internal/models"
	"github.com/fr4nk3nst1ner/offersleuth/internal/utils"
)

func TestBestFit(t *testing.T) {
	fit, ok := BestFit([]float64{1, 2, 3}, []float64{3, 5, 7})
	require.True(t, ok)
	require.InDelta(t, 1.0, fit.Alpha, 1e-9)
	require.InDelta(t, 2.0, fit.Beta, 1e-9)

	_, ok = BestFit([]float64{1}, []float64{1})
	require.False(t, ok)

	_, ok = BestFit([]float64{2, 2, 2}, []float64{1, 2, 3})
	require.False(t, ok, "vertical data has no OLS line")
}

func TestScatterSkipsUndefinedAverage(t *testing.T) {
	_, err := Scatter(ScatterSpec{
		Category:  "Catcher",
		X:         models.StatBattingAverage,
		Y:         models.StatSalary,
		Points:    []Point{{X: 0.25, Y: 20}},
		AvgX:      nil,
		AvgY:      utils.Float(20e6),
		Threshold: 17e6,
	})
	require.ErrorIs(t, err, ErrUndefinedAverage)

	_, err = Scatter(ScatterSpec{Category: "Catcher", AvgX: utils.Float(1), AvgY: utils.Float(1)})
	require.ErrorIs(t, err, ErrNoPoints)
}

func TestScatterBuildsPlot(t *testing.T) {
	p, err := Scatter(ScatterSpec{
		Category:  models.CategoryPitcher,
		X:         models.StatERA,
		Y:         models.StatSalary,
		Points:    []Point{{X: 2.5, Y: 30}, {X: 3.5, Y: 20}},
		AvgX:      utils.Float(3),
		AvgY:      utils.Float(25e6),
		Threshold: 17.4e6,
	})
	require.NoError(t, err)
	require.Equal(t, "Pitcher Earned Run Average vs Salary", p.Title.Text)
	require.Equal(t, "Salary (in millions)", p.Y.Label.Text)
}

func TestPointsSkipsMissingValues(t *testing.T) {
	entities := []models.ScrapedEntity{
		{SalaryRecord: models.SalaryRecord{FullName: "A", Salary: utils.Float(2e6)}, HomeRuns: utils.Int(10)},
		{SalaryRecord: models.SalaryRecord{FullName: "B", Salary: utils.Float(3e6)}},
	}
	pts := Points(entities, models.StatHomeRuns, models.StatSalary)
	require.Equal(t, []Point{{X: 10, Y: 2, Label: "A"}}, pts)
}

func TestRenderAllWritesOnlyDefinedCharts(t *testing.T) {
	entities := []models.ScrapedEntity{
		{
			SalaryRecord: models.SalaryRecord{FullName: "Scherzer, Max", Salary: utils.Float(30e6)},
			Status:       models.FetchSuccess,
			Category:     utils.String(models.CategoryPitcher),
			Age:          utils.Int(36),
			ERA:          utils.Float(3.16),
		},
		{
			SalaryRecord: models.SalaryRecord{FullName: "Kershaw, Clayton", Salary: utils.Float(20e6)},
			Status:       models.FetchSuccess,
			Category:     utils.String(models.CategoryPitcher),
			Age:          utils.Int(34),
			ERA:          utils.Float(2.48),
		},
		{
			SalaryRecord: models.SalaryRecord{FullName: "Votto, Joey", Salary: utils.Float(25e6)},
			Status:       models.FetchSuccess,
			Category:     utils.String("First baseman"),
			HomeRuns:     utils.Int(342),
		},
	}
	aggs := aggregate.ByCategory(entities)

	dir := filepath.Join(t.TempDir(), "plots")
	r := NewRenderer(dir, 10, 8)
	written, err := r.RenderAll(entities, aggs, 17.4e6)
	require.NoError(t, err)

	require.ElementsMatch(t, []string{
		filepath.Join(dir, "pitcher_age_vs_salary.png"),
		filepath.Join(dir, "pitcher_earned_run_average_vs_salary.png"),
		filepath.Join(dir, "first_baseman_home_runs_vs_salary.png"),
	}, written)
	for _, path := range written {
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Greater(t, info.Size(), int64(0))
	}
}

func TestFileName(t *testing.T) {
	require.Equal(t, "designated_hitter_batting_average_vs_salary.png",
		FileName("Designated hitter", models.StatBattingAverage, models.StatSalary))
}
