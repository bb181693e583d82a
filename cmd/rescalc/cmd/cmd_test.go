package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// run executes the root command with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Reset flags to prevent accumulation between tests
	verbose, outputJSON, presetName, presetsFile = false, false, "", ""
	searchSnap, searchSort, searchFrom = "", "", ""
	searchTop, searchWorkers, searchChunks = 20, 0, 0
	searchDisable = nil
	searchMaxParallel, searchMaxSeries, searchMaxCombos = 0, 0, 0
	dividerRatio, dividerSupply, dividerVout = 0, 0, 0
	dividerComposite, dividerOvershoot = false, false
	dividerTop, dividerSnap, dividerFrom = 10, "", ""

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSearchE2E(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "exact series pair",
			args:        []string{"search", "3k", "1k", "2k"},
			wantContain: []string{"Target: 3k", "1k + 2k", "+0.000%"},
		},
		{
			name:        "chunked",
			args:        []string{"search", "--chunks", "3", "--workers", "2", "3k3", "100", "220", "470", "1k", "2k2"},
			wantContain: []string{"Target: 3k3", "+0.000%"},
		},
		{
			name:    "missing target",
			args:    []string{"search"},
			wantErr: true,
		},
		{
			name:    "bad target",
			args:    []string{"search", "lots", "1k"},
			wantErr: true,
		},
		{
			name:    "preset without file",
			args:    []string{"search", "--preset", "deep", "1k", "1k"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := run(t, tt.args...)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, output)
				}
			}
		})
	}
}

func TestSearchJSONWithDisable(t *testing.T) {
	output, err := run(t, "search", "--json", "--disable", "2k", "3k", "1k", "2k")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var res struct {
		Candidates []struct {
			Label           string  `json:"label"`
			TotalResistance float64 `json:"total_resistance"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal([]byte(output), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, output)
	}
	if len(res.Candidates) == 0 {
		t.Fatal("no candidates")
	}
	for _, c := range res.Candidates {
		if strings.Contains(c.Label, "2k") {
			t.Errorf("disabled value in %q", c.Label)
		}
	}
	if res.Candidates[0].TotalResistance != 3000 {
		t.Errorf("best = %v, want 1k + 1k + 1k", res.Candidates[0].TotalResistance)
	}
}

func TestSearchDisabledSingleDoesNotHideCombos(t *testing.T) {
	output, err := run(t, "search", "--json", "--disable", "10k", "10k", "4k99", "10k")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var res struct {
		Candidates []struct {
			Label string `json:"label"`
		} `json:"candidates"`
		Stats struct {
			PrunedCombos int `json:"pruned_combos"`
		} `json:"stats"`
	}
	if err := json.Unmarshal([]byte(output), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, output)
	}
	if len(res.Candidates) == 0 {
		t.Fatal("no candidates")
	}
	if got := res.Candidates[0].Label; got != "4k99 + 4k99" {
		t.Errorf("best = %q, want 4k99 + 4k99", got)
	}
	if res.Stats.PrunedCombos != 0 {
		t.Errorf("pruned_combos = %d with the only covering part disabled", res.Stats.PrunedCombos)
	}
}

func TestSearchWithPresetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.hcl")
	preset := "preset \"flat\" {\n  max_parallel = 1\n  max_series_blocks = 2\n}\n"
	if err := os.WriteFile(path, []byte(preset), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := run(t, "search", "--presets-file", path, "--preset", "flat", "--top", "0", "1k5", "1k", "2k", "4k7")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if strings.Contains(output, "||") {
		t.Errorf("parallel block despite max_parallel = 1:\n%s", output)
	}

	if _, err := run(t, "search", "--presets-file", path, "--preset", "missing", "1k", "1k"); err == nil {
		t.Error("unknown preset accepted")
	}
}

func TestDividerE2E(t *testing.T) {
	output, err := run(t, "divider", "--supply", "10", "--vout", "5", "10k", "10k")
	if err != nil {
		t.Fatalf("divider: %v", err)
	}
	for _, want := range []string{"Ratio: 0.500000", "10k / 10k", "5V (4.75..5.25)"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q\nGot:\n%s", want, output)
		}
	}

	if _, err := run(t, "divider", "10k"); err == nil {
		t.Error("divider without ratio accepted")
	}
}

func TestImportE2E(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.txt")
	if err := os.WriteFile(path, []byte("R1 10k\nR2 4k7 1%\nR3 10k\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := run(t, "import", path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	for _, want := range []string{"2 distinct values in bom.txt", "x2", "line 1, line 3"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q\nGot:\n%s", want, output)
		}
	}

	output, err = run(t, "search", "--from", path, "14k7")
	if err != nil {
		t.Fatalf("search --from: %v", err)
	}
	if !strings.Contains(output, "+0.000%") {
		t.Errorf("expected an exact match from imported values:\n%s", output)
	}

	if _, err := run(t, "import", filepath.Join(t.TempDir(), "bom.exe")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestSeriesE2E(t *testing.T) {
	output, err := run(t, "series", "4k7")
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if !strings.Contains(output, "4k7 is in: E24") {
		t.Errorf("Got:\n%s", output)
	}

	output, err = run(t, "series")
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	for _, want := range []string{"E24 (5%, 24 values)", "E192 (0.5%, 192 values)"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q\nGot:\n%s", want, output)
		}
	}
}
