package offer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fr4nk3nst1ner/offersleuth/internal/models"
	"github.com/fr4nk3nst1ner/offersleuth/internal/utils"
)

func record(name string, salary *float64) models.SalaryRecord {
	last, first, _ := utils.SplitName(name)
	return models.SalaryRecord{FullName: name, FirstName: first, LastName: last, Salary: salary}
}

func TestThresholdThreeRows(t *testing.T) {
	got, err := Threshold([]float64{5000000, 3000000, 1000000}, 2)
	require.NoError(t, err)
	require.Equal(t, 4000000.0, got)
	require.Equal(t, "$4,000,000.00", utils.FormatSalary(got))
}

func TestThresholdFewerThanN(t *testing.T) {
	got, err := Threshold([]float64{2, 4}, 125)
	require.NoError(t, err)
	require.Equal(t, 3.0, got)
}

func TestThresholdEmpty(t *testing.T) {
	_, err := Threshold(nil, 125)
	require.ErrorIs(t, err, ErrNoSalaries)

	_, err = Threshold([]float64{1}, 0)
	require.ErrorIs(t, err, ErrNoSalaries)
}

func TestThresholdDoesNotMutateInput(t *testing.T) {
	in := []float64{1, 3, 2}
	_, err := Threshold(in, 2)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 3, 2}, in)
}

func TestTopNSkipsNullsAndKeepsSourceOrderOnTies(t *testing.T) {
	records := []models.SalaryRecord{
		record("A, One", utils.Float(10)),
		record("B, Two", nil),
		record("C, Three", utils.Float(30)),
		record("D, Four", utils.Float(10)),
		record("E, Five", utils.Float(20)),
	}

	cohort := TopN(records, 3)
	require.Len(t, cohort, 3)
	require.Equal(t, "C", cohort[0].LastName)
	require.Equal(t, "E", cohort[1].LastName)
	// A and D tie at the boundary, A comes first in the source
	require.Equal(t, "A", cohort[2].LastName)

	require.Equal(t, "B", records[1].LastName, "input untouched")
	require.Empty(t, TopN(records, 0))
}

func TestThresholdOfMatchesTopN(t *testing.T) {
	records := []models.SalaryRecord{
		record("A, One", utils.Float(10)),
		record("B, Two", nil),
		record("C, Three", utils.Float(30)),
		record("D, Four", utils.Float(10)),
	}
	got, err := ThresholdOf(records, 2)
	require.NoError(t, err)
	require.Equal(t, 20.0, got)
}

func TestAgree(t *testing.T) {
	require.True(t, Agree(4000000, 4000000.000001, 1e-6))
	require.False(t, Agree(4000000, 4100000, 1e-6))
	require.True(t, Agree(0, 0, 1e-6))
}
