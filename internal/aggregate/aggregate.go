package aggregate

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/fr4nk3nst1ner/offersleuth/internal/models"
)

// Mean averages the non-nil values. Nil values are excluded from the
// denominator, so Mean([1, nil, 3]) is 2. Returns nil when every value is nil.
func Mean(values []*float64) *float64 {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			present = append(present, *v)
		}
	}
	if len(present) == 0 {
		return nil
	}
	m := stat.Mean(present, nil)
	return &m
}

// ByCategory computes per-category averages. Entities without a category
// (failed fetches included) are left out; the pitcher row comes first and
// the remaining categories follow alphabetically.
func ByCategory(entities []models.ScrapedEntity) []models.CategoryAggregate {
	groups := make(map[string][]models.ScrapedEntity)
	for _, e := range entities {
		if e.Category == nil {
			continue
		}
		groups[*e.Category] = append(groups[*e.Category], e)
	}

	categories := make([]string, 0, len(groups))
	for c := range groups {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i] == models.CategoryPitcher {
			return categories[j] != models.CategoryPitcher
		}
		if categories[j] == models.CategoryPitcher {
			return false
		}
		return categories[i] < categories[j]
	})

	aggs := make([]models.CategoryAggregate, 0, len(categories))
	for _, c := range categories {
		members := groups[c]
		agg := models.CategoryAggregate{
			Category:  c,
			Members:   len(members),
			AvgSalary: Mean(column(members, models.StatSalary)),
			Averages:  make(map[models.Stat]*float64),
		}
		for _, s := range models.StatsFor(c) {
			agg.Averages[s] = Mean(column(members, s))
		}
		aggs = append(aggs, agg)
	}
	return aggs
}

// Find returns the aggregate for a category
func Find(aggs []models.CategoryAggregate, category string) (models.CategoryAggregate, bool) {
	for _, a := range aggs {
		if a.Category == category {
			return a, true
		}
	}
	return models.CategoryAggregate{}, false
}

// Coverage counts entities with and without a value for a stat. The two
// counts always add up to len(entities).
func Coverage(entities []models.ScrapedEntity, s models.Stat) (present, missing int) {
	for _, e := range entities {
		if s.Value(e) != nil {
			present++
		} else {
			missing++
		}
	}
	return present, missing
}

// Members returns the entities belonging to a category
func Members(entities []models.ScrapedEntity, category string) []models.ScrapedEntity {
	var out []models.ScrapedEntity
	for _, e := range entities {
		if e.Category != nil && *e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

func column(entities []models.ScrapedEntity, s models.Stat) []*float64 {
	values := make([]*float64, len(entities))
	for i, e := range entities {
		values[i] = s.Value(e)
	}
	return values
}
