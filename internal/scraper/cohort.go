package scraper

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/fr4nk3nst1ner/offersleuth/internal/client"
	"github.com/fr4nk3nst1ner/offersleuth/internal/extract"
	"github.com/fr4nk3nst1ner/offersleuth/internal/models"
	"github.com/fr4nk3nst1ner/offersleuth/internal/utils"
)

// LookupKey builds the encyclopedia page key "First_Last", with whitespace
// inside either part replaced by underscores. Empty parts are skipped.
func LookupKey(first, last string) string {
	var parts []string
	for _, p := range []string{first, last} {
		if p = utils.CollapseWhitespace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "_")
}

// LookupURL appends the percent-encoded key to the encyclopedia base URL
func LookupURL(base, key string) string {
	return base + url.PathEscape(key)
}

// Options configures a Scraper
type Options struct {
	BaseURL  string
	Workers  int
	Limiter  *rate.Limiter
	Rules    []extract.Rule
	Progress bool
	Logger   *slog.Logger
}

// Scraper enriches a cohort with encyclopedia stats
type Scraper struct {
	client   *http.Client
	baseURL  string
	workers  int
	limiter  *rate.Limiter
	rules    []extract.Rule
	progress bool
	logger   *slog.Logger
}

// New creates a Scraper. One worker means strictly sequential fetching.
func New(httpClient *http.Client, opts Options) *Scraper {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Rules == nil {
		opts.Rules = extract.DefaultRules
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Scraper{
		client:   httpClient,
		baseURL:  opts.BaseURL,
		workers:  opts.Workers,
		limiter:  opts.Limiter,
		rules:    opts.Rules,
		progress: opts.Progress,
		logger:   opts.Logger,
	}
}

// ScrapeCohort fetches one page per member and returns the enriched cohort
// in the same order. A failed fetch marks that entity as failed and never
// stops the batch.
func (s *Scraper) ScrapeCohort(ctx context.Context, cohort models.Cohort) []models.ScrapedEntity {
	out := make([]models.ScrapedEntity, len(cohort))

	var bar *pb.ProgressBar
	if s.progress {
		bar = pb.StartNew(len(cohort))
		defer bar.Finish()
	}

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, member := range cohort {
		i, member := i, member
		g.Go(func() error {
			out[i] = s.scrapeOne(ctx, member)
			if bar != nil {
				bar.Increment()
			}
			return nil
		})
	}
	g.Wait()

	return out
}

func (s *Scraper) scrapeOne(ctx context.Context, member models.SalaryRecord) models.ScrapedEntity {
	entity := models.ScrapedEntity{
		SalaryRecord: member,
		LookupURL:    LookupURL(s.baseURL, LookupKey(member.FirstName, member.LastName)),
		Status:       models.FetchFailure,
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			entity.FetchErr = err.Error()
			return entity
		}
	}

	body, err := client.Get(ctx, s.client, entity.LookupURL)
	if err != nil {
		entity.FetchErr = err.Error()
		s.logger.Debug("fetch failed", "player", member.FullName, "url", entity.LookupURL, "err", err)
		return entity
	}
	entity.Status = models.FetchSuccess

	stats, err := extract.Page(bytes.NewReader(body), s.rules)
	if err != nil {
		s.logger.Debug("unreadable page", "player", member.FullName, "err", err)
		return entity
	}
	return stats.Apply(entity)
}

// Summarize counts fetched and failed entities
func Summarize(entities []models.ScrapedEntity) models.ScrapeProgress {
	var p models.ScrapeProgress
	for _, e := range entities {
		if e.Status == models.FetchSuccess {
			p.Fetched++
		} else {
			p.Failed++
		}
	}
	return p
}
