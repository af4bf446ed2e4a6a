package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultSourceURL        = "https://questionnaire-148920.appspot.com/swe/data.html"
	DefaultEncyclopediaBase = "https://en.wikipedia.org/wiki/"
	DefaultTopN             = 125
	DefaultDBPath           = "local.db"
	DefaultOutputDir        = "plots"
)

// AppConfig represents the application configuration
type AppConfig struct {
	Source  SourceConfig  `yaml:"source"`
	Scraper ScraperConfig `yaml:"scraper"`
	Store   StoreConfig   `yaml:"store"`
	Output  OutputConfig  `yaml:"output"`
}

type SourceConfig struct {
	URL  string `yaml:"url"`
	TopN int    `yaml:"top_n"`
}

type ScraperConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	Workers   int           `yaml:"workers"`
	RateLimit float64       `yaml:"rate_limit"` // requests per second, 0 disables
	ProxyURL  string        `yaml:"proxy"`
	Progress  bool          `yaml:"progress"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type OutputConfig struct {
	Dir     string `yaml:"dir"`
	Plots   bool   `yaml:"plots"`
	Width   int    `yaml:"width"`  // centimeters
	Height  int    `yaml:"height"` // centimeters
	Silence bool   `yaml:"silence"`
}

// Default returns the configuration used when no file is given
func Default() *AppConfig {
	return &AppConfig{
		Source: SourceConfig{
			URL:  DefaultSourceURL,
			TopN: DefaultTopN,
		},
		Scraper: ScraperConfig{
			BaseURL:   DefaultEncyclopediaBase,
			Timeout:   15 * time.Second,
			Workers:   1,
			RateLimit: 5,
			Progress:  true,
		},
		Store: StoreConfig{
			Path: DefaultDBPath,
		},
		Output: OutputConfig{
			Dir:    DefaultOutputDir,
			Plots:  true,
			Width:  16,
			Height: 12,
		},
	}
}

// Load reads a YAML config file on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Source.URL == "" {
		errs = append(errs, errors.New("source.url is required"))
	}
	if c.Source.TopN <= 0 {
		errs = append(errs, fmt.Errorf("source.top_n must be positive, got %d", c.Source.TopN))
	}
	if c.Scraper.BaseURL == "" {
		errs = append(errs, errors.New("scraper.base_url is required"))
	}
	if c.Scraper.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("scraper.timeout must be positive, got %s", c.Scraper.Timeout))
	}
	if c.Scraper.Workers <= 0 {
		errs = append(errs, fmt.Errorf("scraper.workers must be positive, got %d", c.Scraper.Workers))
	}
	if c.Scraper.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("scraper.rate_limit must not be negative, got %g", c.Scraper.RateLimit))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	if c.Output.Plots && (c.Output.Width <= 0 || c.Output.Height <= 0) {
		errs = append(errs, fmt.Errorf("output.width and output.height must be positive, got %dx%d", c.Output.Width, c.Output.Height))
	}
	return errors.Join(errs...)
}
