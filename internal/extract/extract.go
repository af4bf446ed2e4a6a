// Package extract reads player attributes out of an encyclopedia page.
// Every field is optional: a missing marker or an unparseable value
// leaves that field nil and extraction carries on with the rest.
package extract

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/fr4nk3nst1ner/offersleuth/internal/models"
)

// Kind is the numeric type a rule parses its cell as
type Kind int

const (
	KindInt Kind = iota
	KindFloat
)

// Rule maps an infobox row label to a stat
type Rule struct {
	Label string
	Field models.Stat
	Kind  Kind
}

// DefaultRules are the career stats read from a player infobox
var DefaultRules = []Rule{
	{Label: "Earned run average", Field: models.StatERA, Kind: KindFloat},
	{Label: "Strikeouts", Field: models.StatStrikeouts, Kind: KindInt},
	{Label: "Batting average", Field: models.StatBattingAverage, Kind: KindFloat},
	{Label: "Home runs", Field: models.StatHomeRuns, Kind: KindInt},
	{Label: "Runs batted in", Field: models.StatRunsBattedIn, Kind: KindInt},
}

const (
	infoboxRowsXPath = `//table[contains(@class,"vcard")]//tr`
	ageXPath         = `//table[contains(@class,"vcard")]//span[@class="noprint ForceAgeToShow"]/text()`
	positionXPath    = `//table[contains(@class,"vcard")]//td[@class="infobox-full-data"]//a/text()`
	rowLabelXPath    = `.//th/a/text()`
	rowValueXPath    = `.//td[contains(@class,"infobox-data")]/text()`
	pitcherMarker    = "pitcher"
)

// "(age 33)", the space is usually a non-breaking one
var agePattern = regexp.MustCompile(`age[\s\x{00a0}]*(\d+)`)

// Stats holds everything extracted from one page
type Stats struct {
	Category *string
	Age      *int
	Ints     map[models.Stat]int
	Floats   map[models.Stat]float64
}

// Page parses an encyclopedia document and applies rules to its infobox.
// The only error is a document that cannot be parsed at all.
func Page(r io.Reader, rules []Rule) (Stats, error) {
	doc, err := htmlquery.Parse(r)
	if err != nil {
		return Stats{}, fmt.Errorf("parsing page: %w", err)
	}
	return Document(doc, rules), nil
}

// Document extracts stats from an already parsed page
func Document(doc *html.Node, rules []Rule) Stats {
	stats := Stats{
		Ints:   make(map[models.Stat]int),
		Floats: make(map[models.Stat]float64),
	}
	stats.Age = age(doc)
	stats.Category = category(doc)

	byLabel := make(map[string]Rule, len(rules))
	for _, rule := range rules {
		byLabel[rule.Label] = rule
	}

	rows, err := htmlquery.QueryAll(doc, infoboxRowsXPath)
	if err != nil {
		return stats
	}
	for _, row := range rows {
		label := firstText(row, rowLabelXPath)
		rule, ok := byLabel[label]
		if !ok {
			continue
		}
		value := firstText(row, rowValueXPath)
		switch rule.Kind {
		case KindInt:
			if v, err := strconv.Atoi(strings.ReplaceAll(value, ",", "")); err == nil {
				stats.Ints[rule.Field] = v
			}
		case KindFloat:
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				stats.Floats[rule.Field] = v
			}
		}
	}
	return stats
}

func age(doc *html.Node) *int {
	text := firstText(doc, ageXPath)
	m := agePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &v
}

// category collapses every pitching role into "Pitcher" and otherwise
// keeps the first listed position verbatim.
func category(doc *html.Node) *string {
	position := firstText(doc, positionXPath)
	if position == "" {
		return nil
	}
	if strings.Contains(strings.ToLower(position), pitcherMarker) {
		c := models.CategoryPitcher
		return &c
	}
	return &position
}

// firstText returns the first non-blank text matched by expr
func firstText(top *html.Node, expr string) string {
	nodes, err := htmlquery.QueryAll(top, expr)
	if err != nil {
		return ""
	}
	for _, n := range nodes {
		if text := strings.TrimSpace(htmlquery.InnerText(n)); text != "" {
			return text
		}
	}
	return ""
}

// Apply returns a copy of e with the extracted stats filled in
func (s Stats) Apply(e models.ScrapedEntity) models.ScrapedEntity {
	e.Category = s.Category
	e.Age = s.Age
	for stat, v := range s.Ints {
		v := v
		switch stat {
		case models.StatStrikeouts:
			e.Strikeouts = &v
		case models.StatHomeRuns:
			e.HomeRuns = &v
		case models.StatRunsBattedIn:
			e.RunsBattedIn = &v
		case models.StatAge:
			e.Age = &v
		}
	}
	for stat, v := range s.Floats {
		v := v
		switch stat {
		case models.StatERA:
			e.ERA = &v
		case models.StatBattingAverage:
			e.BattingAverage = &v
		}
	}
	return e
}
