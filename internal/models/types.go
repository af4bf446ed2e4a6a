package models

import "strings"

// CategoryPitcher is the category every pitching position collapses into
const CategoryPitcher = "Pitcher"

// RawRow is one row of the source salary table as read from the page
type RawRow struct {
	Player string `json:"player"`
	Salary string `json:"salary"`
	Year   string `json:"year,omitempty"`
	Level  string `json:"level,omitempty"`
}

// SalaryRecord represents one player's cleaned salary line
type SalaryRecord struct {
	FullName  string   `json:"full_name"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Salary    *float64 `json:"salary,omitempty"`
}

// Cohort is the top-N salary records in ranking order
type Cohort []SalaryRecord

// FetchStatus records whether the encyclopedia page could be fetched
type FetchStatus int

const (
	FetchFailure FetchStatus = iota
	FetchSuccess
)

func (s FetchStatus) String() string {
	if s == FetchSuccess {
		return "success"
	}
	return "failure"
}

// ScrapedEntity is a cohort member enriched with scraped attributes.
// Every pointer field is nil when the value could not be determined.
type ScrapedEntity struct {
	SalaryRecord

	LookupURL string      `json:"lookup_url"`
	Status    FetchStatus `json:"fetch_status"`
	FetchErr  string      `json:"fetch_error,omitempty"`

	Category       *string  `json:"category,omitempty"`
	Age            *int     `json:"age,omitempty"`
	ERA            *float64 `json:"earned_run_average,omitempty"`
	Strikeouts     *int     `json:"strikeouts,omitempty"`
	BattingAverage *float64 `json:"batting_average,omitempty"`
	HomeRuns       *int     `json:"home_runs,omitempty"`
	RunsBattedIn   *int     `json:"runs_batted_in,omitempty"`
}

// CategoryName returns the category or "" when unknown
func (e ScrapedEntity) CategoryName() string {
	if e.Category == nil {
		return ""
	}
	return *e.Category
}

// Stat identifies a numeric attribute that can be averaged and plotted
type Stat int

const (
	StatSalary Stat = iota
	StatAge
	StatERA
	StatStrikeouts
	StatBattingAverage
	StatHomeRuns
	StatRunsBattedIn
)

var statLabels = map[Stat]string{
	StatSalary:         "Salary",
	StatAge:            "Age",
	StatERA:            "Earned Run Average",
	StatStrikeouts:     "Strikeouts",
	StatBattingAverage: "Batting Average",
	StatHomeRuns:       "Home Runs",
	StatRunsBattedIn:   "Runs Batted In",
}

var statColumns = map[Stat]string{
	StatSalary:         "salary",
	StatAge:            "age",
	StatERA:            "earned_run_average",
	StatStrikeouts:     "strikeouts",
	StatBattingAverage: "batting_average",
	StatHomeRuns:       "home_runs",
	StatRunsBattedIn:   "runs_batted_in",
}

// Label returns the human readable name of the stat
func (s Stat) Label() string { return statLabels[s] }

// Column returns the store column holding the stat
func (s Stat) Column() string { return statColumns[s] }

func (s Stat) String() string { return s.Column() }

// Value reads the stat from an entity as a float, nil when absent
func (s Stat) Value(e ScrapedEntity) *float64 {
	switch s {
	case StatSalary:
		return e.Salary
	case StatAge:
		return intPtrToFloat(e.Age)
	case StatERA:
		return e.ERA
	case StatStrikeouts:
		return intPtrToFloat(e.Strikeouts)
	case StatBattingAverage:
		return e.BattingAverage
	case StatHomeRuns:
		return intPtrToFloat(e.HomeRuns)
	case StatRunsBattedIn:
		return intPtrToFloat(e.RunsBattedIn)
	}
	return nil
}

func intPtrToFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

// PitcherStats are the stats compared for pitchers
var PitcherStats = []Stat{StatAge, StatERA, StatStrikeouts}

// PositionStats are the stats compared for every other position
var PositionStats = []Stat{StatAge, StatBattingAverage, StatHomeRuns, StatRunsBattedIn}

// StatsFor returns the stat set that applies to a category
func StatsFor(category string) []Stat {
	if strings.EqualFold(category, CategoryPitcher) {
		return PitcherStats
	}
	return PositionStats
}

// CategoryAggregate holds per-category averages. A nil average means no
// member of the category had a value for that stat.
type CategoryAggregate struct {
	Category  string            `json:"category"`
	Members   int               `json:"members"`
	AvgSalary *float64          `json:"avg_salary,omitempty"`
	Averages  map[Stat]*float64 `json:"averages"`
}

// Average returns the average for a stat, salary included
func (a CategoryAggregate) Average(s Stat) *float64 {
	if s == StatSalary {
		return a.AvgSalary
	}
	return a.Averages[s]
}

// ScrapeProgress represents the progress of a scraping operation
type ScrapeProgress struct {
	Fetched int `json:"fetched"`
	Failed  int `json:"failed"`
}
