package config

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/dgallion1/rescalc/internal/search"
)

// Presets maps a preset name to the limits it overrides. Fields a preset
// leaves unset stay zero and are filled from the defaults on Resolve.
type Presets map[string]search.Limits

type presetFile struct {
	Presets []presetBlock `hcl:"preset,block"`
}

type presetBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

// LoadPresets reads an HCL file of preset blocks:
//
//	preset "deep" {
//	  max_parallel      = 3
//	  max_series_blocks = 4
//	}
func LoadPresets(path string) (Presets, error) {
	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse presets file %s: %w", path, diags)
	}
	return decodePresets(file)
}

// ParsePresets is LoadPresets over in-memory source.
func ParsePresets(src []byte, filename string) (Presets, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse presets %s: %w", filename, diags)
	}
	return decodePresets(file)
}

func decodePresets(file *hcl.File) (Presets, error) {
	var raw presetFile
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("invalid presets: %w", diags)
	}

	out := make(Presets, len(raw.Presets))
	for _, b := range raw.Presets {
		if _, dup := out[b.Name]; dup {
			return nil, fmt.Errorf("preset %q defined twice", b.Name)
		}
		var limits search.Limits
		if diags := gohcl.DecodeBody(b.Body, nil, &limits); diags.HasErrors() {
			return nil, fmt.Errorf("preset %q: %w", b.Name, diags)
		}
		out[b.Name] = limits
	}
	return out, nil
}

// Resolve layers the named preset over base. An empty name returns base.
func (p Presets) Resolve(name string, base search.Limits) (search.Limits, error) {
	if name == "" {
		return base, nil
	}
	l, ok := p[name]
	if !ok {
		return search.Limits{}, fmt.Errorf("unknown preset %q", name)
	}
	return base.Merge(l), nil
}

// Names returns the preset names in sorted order.
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for n := range p {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
