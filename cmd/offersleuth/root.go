package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/fr4nk3nst1ner/offersleuth/internal/config"
	"github.com/fr4nk3nst1ner/offersleuth/internal/pipeline"
	"github.com/fr4nk3nst1ner/offersleuth/internal/store"
	"github.com/fr4nk3nst1ner/offersleuth/internal/ui"
)

var (
	configPath string
	debug      bool
	silence    bool

	topN    int
	workers int
	dbPath  string
	outDir  string
	noPlots bool
)

var rootCmd = &cobra.Command{
	Use:   "offersleuth",
	Short: "offersleuth estimates the MLB qualifying offer and compares the top earners by position.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initSlog(debug)
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "YAML config file")
	flags.BoolVar(&debug, "debug", false, "Enable debug logging")
	flags.BoolVar(&silence, "silence", false, "Silence the banner")
	flags.IntVar(&topN, "top", 0, "Number of top salaries averaged into the offer (default from config)")
	flags.IntVar(&workers, "workers", 0, "Concurrent encyclopedia fetches (default from config)")
	flags.StringVar(&dbPath, "db", "", "SQLite staging database (default from config)")
	flags.StringVar(&outDir, "out", "", "Directory charts are written to (default from config)")
	flags.BoolVar(&noPlots, "no-plots", false, "Skip rendering charts")
}

func executeContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}

// loadConfig reads the config file and applies flag overrides on top
func loadConfig() *config.AppConfig {
	cfg, err := config.Load(configPath)
	if err != nil {
		fatal("failed to read config", err)
	}
	if topN > 0 {
		cfg.Source.TopN = topN
	}
	if workers > 0 {
		cfg.Scraper.Workers = workers
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if noPlots {
		cfg.Output.Plots = false
	}
	if silence {
		cfg.Output.Silence = true
	}
	if err := cfg.Validate(); err != nil {
		fatal("invalid config", err)
	}
	return cfg
}

// withPipeline opens the store, builds the pipeline and closes the store
// once fn returns
func withPipeline(fn func(p *pipeline.Pipeline) error) error {
	cfg := loadConfig()
	ui.PrintBanner(cfg.Output.Silence)

	st, err := pipeline.OpenStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer closeStore(st)

	return fn(pipeline.New(cfg, st, slog.Default()))
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Warn("closing store", "err", err)
	}
}
