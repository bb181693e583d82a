package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/rescalc/internal/component"
	"github.com/dgallion1/rescalc/internal/config"
	"github.com/dgallion1/rescalc/internal/search"
)

var (
	// Global flags
	verbose     bool
	outputJSON  bool
	presetName  string
	presetsFile string
)

var rootCmd = &cobra.Command{
	Use:   "rescalc",
	Short: "Resistor network and divider calculator",
	Long: `Find series/parallel combinations of the resistors you have that come
closest to a target value, or pairs of them that make a voltage divider.

Values use the usual notations: 4k7, 4.7k, 470R, 0R47, 2M2, "10k 1%",
"4k99 E96" and carbon composition codes such as CB1025.

Examples:
  rescalc search 3k3 1k 2k2 4k7 10k          # Closest network to 3.3k
  rescalc divider --supply 5 --vout 3.3 1k 2k2 4k7 10k
  rescalc import bom.csv                     # List values found in a BOM
  rescalc series 4k7                         # Series membership and neighbours`,
	Version:      "0.1.0",
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print JSON")
	rootCmd.PersistentFlags().StringVar(&presetName, "preset", "", "named limit preset")
	rootCmd.PersistentFlags().StringVar(&presetsFile, "presets-file", os.Getenv("PRESETS_FILE"),
		"HCL file defining limit presets")
}

// env is what every subcommand needs before it can do work.
type env struct {
	cfg    config.Config
	log    *slog.Logger
	parser *component.Parser
	limits search.Limits
}

func setup(cmd *cobra.Command) (*env, error) {
	cfg := config.Load()
	level := "warn"
	if verbose {
		level = "debug"
	}
	log := config.NewLogger(level, "text", cmd.ErrOrStderr())

	limits := cfg.Limits
	switch {
	case presetsFile != "":
		presets, err := config.LoadPresets(presetsFile)
		if err != nil {
			return nil, err
		}
		limits, err = presets.Resolve(presetName, limits)
		if err != nil {
			return nil, err
		}
	case presetName != "":
		return nil, fmt.Errorf("--preset %q needs --presets-file", presetName)
	}

	parser, err := component.NewParser()
	if err != nil {
		return nil, fmt.Errorf("failed to create parser: %w", err)
	}
	return &env{cfg: cfg, log: log, parser: parser, limits: limits}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printWarnings(cmd *cobra.Command, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
}

func valueSpecs(values []string) []component.Spec {
	out := make([]component.Spec, len(values))
	for i, v := range values {
		out[i] = component.Spec{Value: v}
	}
	return out
}
