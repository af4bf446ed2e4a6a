// Package pipeline runs the qualifying offer stages in order. Each stage
// takes the previous stage's output and returns a new value; nothing is
// mutated in place.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/fr4nk3nst1ner/offersleuth/internal/aggregate"
	"github.com/fr4nk3nst1ner/offersleuth/internal/chart"
	"github.com/fr4nk3nst1ner/offersleuth/internal/client"
	"github.com/fr4nk3nst1ner/offersleuth/internal/config"
	"github.com/fr4nk3nst1ner/offersleuth/internal/models"
	"github.com/fr4nk3nst1ner/offersleuth/internal/offer"
	"github.com/fr4nk3nst1ner/offersleuth/internal/scraper"
	"github.com/fr4nk3nst1ner/offersleuth/internal/store"
)

// agreementTolerance is the relative error allowed between the in-memory
// and SQL threshold estimates
const agreementTolerance = 1e-6

// FatalError is a failure of a whole-pipeline precondition
type FatalError struct {
	Stage string
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

func fatal(stage string, err error) error {
	return &FatalError{Stage: stage, Err: err}
}

// Result holds the output of every stage
type Result struct {
	Rows       []models.RawRow
	Records    []models.SalaryRecord
	Offer      float64
	OfferSQL   float64
	Cohort     models.Cohort
	Entities   []models.ScrapedEntity
	Summary    models.ScrapeProgress
	Aggregates []models.CategoryAggregate
	Plots      []string
}

type Pipeline struct {
	cfg      *config.AppConfig
	http     *http.Client
	store    *store.Store
	scraper  *scraper.Scraper
	renderer *chart.Renderer
	logger   *slog.Logger
}

// OpenStore opens the staging store, reporting failure as fatal
func OpenStore(path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, fatal("open store", err)
	}
	return st, nil
}

// New wires a pipeline from configuration. Charts are only rendered when
// output.plots is set.
func New(cfg *config.AppConfig, st *store.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := client.CreateHTTPClient(cfg.Scraper.ProxyURL, cfg.Scraper.Timeout)

	var limiter *rate.Limiter
	if cfg.Scraper.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Scraper.RateLimit), max(1, cfg.Scraper.Workers))
	}

	p := &Pipeline{
		cfg:   cfg,
		http:  httpClient,
		store: st,
		scraper: scraper.New(httpClient, scraper.Options{
			BaseURL:  cfg.Scraper.BaseURL,
			Workers:  cfg.Scraper.Workers,
			Limiter:  limiter,
			Progress: cfg.Scraper.Progress,
			Logger:   logger,
		}),
		logger: logger,
	}
	if cfg.Output.Plots {
		p.renderer = chart.NewRenderer(cfg.Output.Dir, cfg.Output.Width, cfg.Output.Height)
		p.renderer.Logger = logger
	}
	return p
}

// Estimate runs the stages up to the qualifying offer: fetch the salary
// table, normalize it, stage it and compute the threshold both ways.
func (p *Pipeline) Estimate(ctx context.Context) (Result, error) {
	var res Result

	rows, err := scraper.ReadSalaryTable(ctx, p.http, p.cfg.Source.URL)
	if err != nil {
		return res, fatal("read salary table", err)
	}
	res.Rows = rows
	res.Records = scraper.NormalizeRows(rows)
	p.logger.Debug("salary table read", "rows", len(rows))

	if err := p.store.ReplaceSalaries(ctx, res.Records); err != nil {
		return res, fatal("stage salaries", err)
	}

	n := p.cfg.Source.TopN
	res.Offer, err = offer.ThresholdOf(res.Records, n)
	if err != nil {
		return res, fatal("estimate offer", err)
	}
	res.OfferSQL, err = p.store.QueryThreshold(ctx, n)
	if err != nil {
		return res, fatal("estimate offer (sql)", err)
	}
	if !offer.Agree(res.Offer, res.OfferSQL, agreementTolerance) {
		p.logger.Warn("threshold estimates disagree", "in_memory", res.Offer, "sql", res.OfferSQL)
	}
	return res, nil
}

// Run executes the whole pipeline
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	res, err := p.Estimate(ctx)
	if err != nil {
		return res, err
	}

	res.Cohort, err = p.store.QueryTopN(ctx, p.cfg.Source.TopN)
	if err != nil {
		return res, fatal("rank cohort", err)
	}

	p.logger.Info("scraping player pages", "players", len(res.Cohort), "workers", p.cfg.Scraper.Workers)
	res.Entities = p.scraper.ScrapeCohort(ctx, res.Cohort)
	res.Summary = scraper.Summarize(res.Entities)

	if err := p.store.ReplaceTopStats(ctx, res.Entities); err != nil {
		return res, fatal("stage top stats", err)
	}

	res.Aggregates = aggregate.ByCategory(res.Entities)

	if p.renderer != nil {
		res.Plots, err = p.renderer.RenderAll(res.Entities, res.Aggregates, res.Offer)
		if err != nil {
			return res, fatal("render charts", err)
		}
	}
	return res, nil
}

// Report rebuilds the aggregates and charts from the last staged run
// without fetching anything.
func (p *Pipeline) Report(ctx context.Context) (Result, error) {
	var res Result
	var err error

	res.OfferSQL, err = p.store.QueryThreshold(ctx, p.cfg.Source.TopN)
	if err != nil {
		return res, fatal("estimate offer (sql)", err)
	}
	res.Offer = res.OfferSQL

	res.Entities, err = p.store.LoadTopStats(ctx)
	if err != nil {
		return res, fatal("load top stats", err)
	}
	res.Summary = scraper.Summarize(res.Entities)

	res.Aggregates, err = p.store.QueryCategoryAverages(ctx)
	if err != nil {
		return res, fatal("average by position", err)
	}

	if p.renderer != nil {
		res.Plots, err = p.renderer.RenderAll(res.Entities, res.Aggregates, res.Offer)
		if err != nil {
			return res, fatal("render charts", err)
		}
	}
	return res, nil
}
