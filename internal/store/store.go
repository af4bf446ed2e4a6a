// Package store stages pipeline tables in SQLite so they can be queried
// with plain SQL. Every write replaces its table; nothing here is the
// source of truth.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/fr4nk3nst1ner/offersleuth/internal/models"
	"github.com/fr4nk3nst1ner/offersleuth/internal/offer"
)

const salaryGuideSchema = `
CREATE TABLE salary_guide (
	row_id     INTEGER PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name  TEXT NOT NULL,
	full_name  TEXT NOT NULL,
	salary     REAL
)`

const topStatsSchema = `
CREATE TABLE top_stats (
	rank               INTEGER PRIMARY KEY,
	first_name         TEXT NOT NULL,
	last_name          TEXT NOT NULL,
	full_name          TEXT NOT NULL,
	salary             REAL,
	lookup_url         TEXT NOT NULL,
	fetch_ok           INTEGER NOT NULL,
	fetch_error        TEXT,
	position           TEXT,
	age                INTEGER,
	earned_run_average REAL,
	strikeouts         INTEGER,
	batting_average    REAL,
	home_runs          INTEGER,
	runs_batted_in     INTEGER
)`

// ErrNotStaged is returned by queries against a table that was never written
var ErrNotStaged = errors.New("table not staged")

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path. ":memory:" works;
// the pool is pinned to one connection so every query sees the same database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to store %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) replaceTable(ctx context.Context, name, schema string, fill func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return fmt.Errorf("dropping %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if err := fill(tx); err != nil {
		return fmt.Errorf("filling %s: %w", name, err)
	}
	return tx.Commit()
}

// ReplaceSalaries writes the cleaned salary table. row_id keeps source order.
func (s *Store) ReplaceSalaries(ctx context.Context, records []models.SalaryRecord) error {
	return s.replaceTable(ctx, "salary_guide", salaryGuideSchema, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO salary_guide (row_id, first_name, last_name, full_name, salary) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, r := range records {
			if _, err := stmt.ExecContext(ctx, i, r.FirstName, r.LastName, r.FullName, nullFloat(r.Salary)); err != nil {
				return err
			}
		}
		return nil
	})
}

// QueryThreshold averages the n highest salaries in SQL, ties broken by source order
func (s *Store) QueryThreshold(ctx context.Context, n int) (float64, error) {
	if err := s.requireTable(ctx, "salary_guide"); err != nil {
		return 0, err
	}
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT AVG(salary) FROM (
			SELECT salary FROM salary_guide
			WHERE salary IS NOT NULL
			ORDER BY salary DESC, row_id ASC
			LIMIT ?
		)`, n).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("querying threshold: %w", err)
	}
	if !avg.Valid {
		return 0, offer.ErrNoSalaries
	}
	return avg.Float64, nil
}

// QueryTopN returns the n highest paid records in ranking order
func (s *Store) QueryTopN(ctx context.Context, n int) (models.Cohort, error) {
	if err := s.requireTable(ctx, "salary_guide"); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT first_name, last_name, full_name, salary FROM salary_guide
		WHERE salary IS NOT NULL
		ORDER BY salary DESC, row_id ASC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying top %d: %w", n, err)
	}
	defer rows.Close()

	cohort := models.Cohort{}
	for rows.Next() {
		var r models.SalaryRecord
		var salary sql.NullFloat64
		if err := rows.Scan(&r.FirstName, &r.LastName, &r.FullName, &salary); err != nil {
			return nil, err
		}
		r.Salary = floatPtr(salary)
		cohort = append(cohort, r)
	}
	return cohort, rows.Err()
}

// ReplaceTopStats writes the enriched cohort, nil fields as NULL
func (s *Store) ReplaceTopStats(ctx context.Context, entities []models.ScrapedEntity) error {
	return s.replaceTable(ctx, "top_stats", topStatsSchema, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO top_stats (
				rank, first_name, last_name, full_name, salary, lookup_url, fetch_ok, fetch_error,
				position, age, earned_run_average, strikeouts, batting_average, home_runs, runs_batted_in
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, e := range entities {
			var fetchErr sql.NullString
			if e.FetchErr != "" {
				fetchErr = sql.NullString{String: e.FetchErr, Valid: true}
			}
			fetchOK := 0
			if e.Status == models.FetchSuccess {
				fetchOK = 1
			}
			_, err := stmt.ExecContext(ctx,
				i, e.FirstName, e.LastName, e.FullName, nullFloat(e.Salary), e.LookupURL,
				fetchOK, fetchErr,
				nullString(e.Category), nullInt(e.Age), nullFloat(e.ERA), nullInt(e.Strikeouts),
				nullFloat(e.BattingAverage), nullInt(e.HomeRuns), nullInt(e.RunsBattedIn),
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadTopStats reads the enriched cohort back in rank order
func (s *Store) LoadTopStats(ctx context.Context) ([]models.ScrapedEntity, error) {
	if err := s.requireTable(ctx, "top_stats"); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT first_name, last_name, full_name, salary, lookup_url, fetch_ok, fetch_error,
			position, age, earned_run_average, strikeouts, batting_average, home_runs, runs_batted_in
		FROM top_stats ORDER BY rank`)
	if err != nil {
		return nil, fmt.Errorf("loading top stats: %w", err)
	}
	defer rows.Close()

	var out []models.ScrapedEntity
	for rows.Next() {
		var e models.ScrapedEntity
		var salary, era, battingAverage sql.NullFloat64
		var fetchOK int
		var fetchErr, position sql.NullString
		var age, strikeouts, homeRuns, rbi sql.NullInt64
		err := rows.Scan(&e.FirstName, &e.LastName, &e.FullName, &salary, &e.LookupURL, &fetchOK, &fetchErr,
			&position, &age, &era, &strikeouts, &battingAverage, &homeRuns, &rbi)
		if err != nil {
			return nil, err
		}
		if fetchOK == 1 {
			e.Status = models.FetchSuccess
		}
		e.FetchErr = fetchErr.String
		e.Salary = floatPtr(salary)
		e.Category = stringPtr(position)
		e.Age = intPtr(age)
		e.ERA = floatPtr(era)
		e.Strikeouts = intPtr(strikeouts)
		e.BattingAverage = floatPtr(battingAverage)
		e.HomeRuns = intPtr(homeRuns)
		e.RunsBattedIn = intPtr(rbi)
		out = append(out, e)
	}
	return out, rows.Err()
}

// QueryCategoryAverages computes per-position averages with SQL AVG, which
// skips NULLs the same way the in-memory aggregator does.
func (s *Store) QueryCategoryAverages(ctx context.Context) ([]models.CategoryAggregate, error) {
	if err := s.requireTable(ctx, "top_stats"); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, COUNT(*), AVG(salary), AVG(age), AVG(earned_run_average), AVG(strikeouts),
			AVG(batting_average), AVG(home_runs), AVG(runs_batted_in)
		FROM top_stats
		WHERE position IS NOT NULL
		GROUP BY position
		ORDER BY position = ? DESC, position ASC`, models.CategoryPitcher)
	if err != nil {
		return nil, fmt.Errorf("querying category averages: %w", err)
	}
	defer rows.Close()

	var out []models.CategoryAggregate
	for rows.Next() {
		var agg models.CategoryAggregate
		var salary, age, era, so, ba, hr, rbi sql.NullFloat64
		if err := rows.Scan(&agg.Category, &agg.Members, &salary, &age, &era, &so, &ba, &hr, &rbi); err != nil {
			return nil, err
		}
		all := map[models.Stat]*float64{
			models.StatAge:            floatPtr(age),
			models.StatERA:            floatPtr(era),
			models.StatStrikeouts:     floatPtr(so),
			models.StatBattingAverage: floatPtr(ba),
			models.StatHomeRuns:       floatPtr(hr),
			models.StatRunsBattedIn:   floatPtr(rbi),
		}
		agg.AvgSalary = floatPtr(salary)
		agg.Averages = make(map[models.Stat]*float64)
		for _, st := range models.StatsFor(agg.Category) {
			agg.Averages[st] = all[st]
		}
		out = append(out, agg)
	}
	return out, rows.Err()
}

// HasTable reports whether a staged table exists
func (s *Store) HasTable(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) requireTable(ctx context.Context, name string) error {
	ok, err := s.HasTable(ctx, name)
	if err != nil {
		return fmt.Errorf("checking %s: %w", name, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotStaged, name)
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
