package main

import (
	"github.com/spf13/cobra"

	"github.com/fr4nk3nst1ner/offersleuth/internal/pipeline"
	"github.com/fr4nk3nst1ner/offersleuth/internal/ui"
)

func init() {
	rootCmd.AddCommand(runCmd, offerCmd, reportCmd, examplesCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Estimates the qualifying offer, scrapes the top earners and charts them by position.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := withPipeline(func(p *pipeline.Pipeline) error {
			res, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}
			ui.PrintOffer(res.Offer, res.OfferSQL)
			ui.PrintScrapeSummary(res.Summary)
			if err := ui.PrintAverages(res.Aggregates, res.Offer); err != nil {
				return err
			}
			ui.PrintPlots(res.Plots)
			return nil
		})
		if err != nil {
			fatal("pipeline failed", err)
		}
	},
}

var offerCmd = &cobra.Command{
	Use:   "offer",
	Short: "Estimates the qualifying offer only, without fetching player pages.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := withPipeline(func(p *pipeline.Pipeline) error {
			res, err := p.Estimate(cmd.Context())
			if err != nil {
				return err
			}
			ui.PrintOffer(res.Offer, res.OfferSQL)
			return nil
		})
		if err != nil {
			fatal("estimate failed", err)
		}
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Rebuilds the averages and charts from the last staged run without fetching.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := withPipeline(func(p *pipeline.Pipeline) error {
			res, err := p.Report(cmd.Context())
			if err != nil {
				return err
			}
			ui.PrintOffer(res.Offer, res.OfferSQL)
			ui.PrintScrapeSummary(res.Summary)
			if err := ui.PrintAverages(res.Aggregates, res.Offer); err != nil {
				return err
			}
			ui.PrintPlots(res.Plots)
			return nil
		})
		if err != nil {
			fatal("report failed", err)
		}
	},
}

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "Shows usage examples.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printExamples()
	},
}
