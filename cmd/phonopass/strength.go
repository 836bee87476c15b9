package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/phonopass/internal/report"
	"github.com/verte-zerg/phonopass/internal/tui"
	"github.com/verte-zerg/phonopass/pkg/pwgen"
	"github.com/verte-zerg/phonopass/pkg/weighted"
)

var (
	strengthSamples int
	pickPageSize    int
)

func newStrengthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strength [wordlist]",
		Short: "Count the distinct passwords a table can produce",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStrengthCmd,
	}
	cmd.Flags().IntVar(&strengthSamples, "samples", 2000, "passwords sampled for the length plot (0 skips the plot)")
	return cmd
}

func runStrengthCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if strengthSamples < 0 {
		return fmt.Errorf("--samples must be >= 0")
	}
	var wordPath string
	if len(args) > 0 {
		wordPath = args[0]
	}
	table, source, err := resolveTable(cmd.Context(), cfg, wordPath)
	if err != nil {
		return err
	}
	log.Debug().Str("source", source).Msg("computing strength")
	if err := writeStrength(cmd, table, cfg); err != nil {
		return err
	}
	if strengthSamples == 0 {
		return nil
	}
	sample, err := pwgen.Batch(cmd.Context(), table, pwgen.BatchRequest{
		Count:   strengthSamples,
		Digits:  cfg.Digits,
		Workers: cfg.Workers,
		Seed:    cfg.Seed,
		Seeded:  cfg.Seeded,
	}, generatorOptions(cfg)...)
	if err != nil {
		return fmt.Errorf("failed to sample passwords: %w", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout()); err != nil {
		return err
	}
	return report.PlotLengths(cmd.OutOrStdout(), sample, 0)
}

func newPickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pick [wordlist]",
		Short: "Pick a password interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPickCmd,
	}
	cmd.Flags().IntVar(&pickPageSize, "page", tui.DefaultPageSize, "candidates per page")
	return cmd
}

func runPickCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	var wordPath string
	if len(args) > 0 {
		wordPath = args[0]
	}
	table, _, err := resolveTable(cmd.Context(), cfg, wordPath)
	if err != nil {
		return err
	}
	opts := generatorOptions(cfg)
	if !cfg.Seeded {
		opts = append(opts, pwgen.WithSource(weighted.CryptoSource{}))
	}
	gen, err := pwgen.New(table, opts...)
	if err != nil {
		return err
	}
	strength := humanize.BigComma(gen.Strength(cfg.Digits)) + " possible"
	chosen, ok, err := tui.Run(gen, cfg.Digits, pickPageSize, strength)
	if err != nil {
		return err
	}
	if !ok {
		logErrln("No password picked.")
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), chosen)
	return err
}
