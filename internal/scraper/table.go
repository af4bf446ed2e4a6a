package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fr4nk3nst1ner/offersleuth/internal/client"
	"github.com/fr4nk3nst1ner/offersleuth/internal/models"
	"github.com/fr4nk3nst1ner/offersleuth/internal/utils"
)

var (
	// ErrNoTable is returned when the salary page holds no <table>
	ErrNoTable = errors.New("no table found in salary page")
	// ErrMissingColumn is returned when a required column header is absent
	ErrMissingColumn = errors.New("missing expected column")
)

const (
	columnPlayer = "player"
	columnSalary = "salary"
	columnYear   = "year"
	columnLevel  = "level"
)

// ReadSalaryTable fetches the salary page and parses its first table
func ReadSalaryTable(ctx context.Context, httpClient *http.Client, url string) ([]models.RawRow, error) {
	body, err := client.Get(ctx, httpClient, url)
	if err != nil {
		return nil, fmt.Errorf("fetching salary table: %w", err)
	}
	return ParseSalaryTable(bytes.NewReader(body))
}

// ParseSalaryTable reads the first table of an HTML document. Header names
// are matched case-insensitively; Player and Salary are required.
func ParseSalaryTable(r io.Reader) ([]models.RawRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing salary page: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, ErrNoTable
	}

	rows := table.Find("tr")
	headerIdx := -1
	rows.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if s.Find("th").Length() > 0 {
			headerIdx = i
			return false
		}
		return true
	})
	if headerIdx < 0 {
		headerIdx = 0
	}

	columns := make(map[string]int)
	rows.Eq(headerIdx).Find("th, td").Each(func(i int, s *goquery.Selection) {
		name := strings.ToLower(strings.TrimSpace(s.Text()))
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	})
	for _, required := range []string{columnPlayer, columnSalary} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, required)
		}
	}

	var out []models.RawRow
	rows.Each(func(i int, s *goquery.Selection) {
		if i == headerIdx {
			return
		}
		cells := s.Find("td")
		if cells.Length() == 0 {
			return
		}
		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= cells.Length() {
				return ""
			}
			return strings.TrimSpace(cells.Eq(idx).Text())
		}
		out = append(out, models.RawRow{
			Player: cell(columnPlayer),
			Salary: cell(columnSalary),
			Year:   cell(columnYear),
			Level:  cell(columnLevel),
		})
	})
	return out, nil
}

// NormalizeRows converts raw rows into salary records, keeping source order.
// Year and Level are dropped.
func NormalizeRows(rows []models.RawRow) []models.SalaryRecord {
	records := make([]models.SalaryRecord, len(rows))
	for i, row := range rows {
		last, first, _ := utils.SplitName(row.Player)
		records[i] = models.SalaryRecord{
			FullName:  row.Player,
			FirstName: first,
			LastName:  last,
			Salary:    utils.NormalizeSalary(row.Salary),
		}
	}
	return records
}
