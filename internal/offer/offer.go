// Package offer ranks salary records and estimates the qualifying offer,
// the mean of the N largest salaries.
//
// Ties at the cut are broken by source order: among equal salaries the
// record that appears first in the table ranks higher. The SQL path in
// the store orders by (salary DESC, row_id ASC) for the same result.
package offer

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/fr4nk3nst1ner/offersleuth/internal/models"
)

// ErrNoSalaries is returned when there is nothing to average
var ErrNoSalaries = errors.New("no parseable salaries")

// TopN returns the n highest paid records. Records without a salary are
// skipped. The input slice is not modified.
func TopN(records []models.SalaryRecord, n int) models.Cohort {
	if n <= 0 {
		return models.Cohort{}
	}

	ranked := make([]models.SalaryRecord, 0, len(records))
	for _, r := range records {
		if r.Salary != nil {
			ranked = append(ranked, r)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Salary > *ranked[j].Salary
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return models.Cohort(ranked)
}

// Threshold returns the mean of the n largest salaries
func Threshold(salaries []float64, n int) (float64, error) {
	if n <= 0 || len(salaries) == 0 {
		return 0, ErrNoSalaries
	}

	top := make([]float64, len(salaries))
	copy(top, salaries)
	sort.SliceStable(top, func(i, j int) bool { return top[i] > top[j] })
	if len(top) > n {
		top = top[:n]
	}
	return stat.Mean(top, nil), nil
}

// ThresholdOf is Threshold over the non-nil salaries of records
func ThresholdOf(records []models.SalaryRecord, n int) (float64, error) {
	salaries := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Salary != nil {
			salaries = append(salaries, *r.Salary)
		}
	}
	return Threshold(salaries, n)
}

// Agree reports whether two threshold estimates match within a relative
// tolerance.
func Agree(a, b, tolerance float64) bool {
	if a == b {
		return true
	}
	scale := max(abs(a), abs(b))
	return abs(a-b)/scale <= tolerance
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
