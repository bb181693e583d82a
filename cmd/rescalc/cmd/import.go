package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/rescalc/internal/component"
	"github.com/dgallion1/rescalc/internal/inventory"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "List the resistor values found in a parts list",
	Long: `Read a BOM or parts list and print every distinct resistor value in it,
with how often it appears and where.

Supported formats: .txt, .md, .csv, .html, .pdf and .docx.

Examples:
  rescalc import bom.csv
  rescalc import --json datasheet.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func importFile(e *env, path string) (inventory.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return inventory.Result{}, err
	}
	defer f.Close()

	res, err := inventory.Import(f, filepath.Base(path), e.parser, inventory.Options{
		PDFFallbackPdftotext: e.cfg.PDFFallbackPdftotext,
	})
	if err != nil {
		return inventory.Result{}, fmt.Errorf("import %s: %w", path, err)
	}
	e.log.Debug("imported inventory", "file", path, "values", len(res.Items), "warnings", len(res.Warnings))
	return res, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	res, err := importFile(e, args[0])
	if err != nil {
		return err
	}

	if outputJSON {
		if res.Items == nil {
			res.Items = []inventory.Item{}
		}
		if res.Warnings == nil {
			res.Warnings = []string{}
		}
		return printJSON(cmd.OutOrStdout(), res)
	}

	printWarnings(cmd, res.Warnings)
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d distinct values in %s\n\n", len(res.Items), filepath.Base(args[0]))
	for _, it := range res.Items {
		fmt.Fprintf(w, "%-16s %10s  x%-3d %s\n", it.Value, component.FormatValue(it.Ohms), it.Count, strings.Join(it.Sources, ", "))
	}
	return nil
}
