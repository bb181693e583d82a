package inventory

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/dgallion1/rescalc/internal/component"
)

var (
	abCode      = regexp.MustCompile(`(?i)^(BB|CB|EB|GB|HB)[0-9]{4}$`)
	suffixToken = regexp.MustCompile(`(?i)^((k|m|g|r)?(Ω|ohms?)|[kmg]|±?[0-9]*\.?[0-9]+%|E(24|48|96|192))$`)
	designator  = regexp.MustCompile(`^[A-Z]{1,3}[0-9]+$`)
)

// Quantities are written "qty 5" or "5 pcs" / "5 x 10k"; those numbers are
// counts, not values.
var (
	quantityBefore = map[string]bool{"qty": true, "quantity": true, "count": true}
	quantityAfter  = map[string]bool{"x": true, "pcs": true, "pc": true}
)

// Item is one distinct value found in a document.
type Item struct {
	Value            string   `json:"value"`
	Ohms             float64  `json:"ohms"`
	TolerancePercent *float64 `json:"tolerance_percent,omitempty"`
	Series           string   `json:"series,omitempty"`
	Count            int      `json:"count"`
	Sources          []string `json:"sources"`
}

// Result lists the distinct values of a document in first-seen order.
type Result struct {
	Items    []Item   `json:"items"`
	Warnings []string `json:"warnings"`
}

// Specs converts the items into search input, one spec per distinct value.
func (r Result) Specs() []component.Spec {
	out := make([]component.Spec, len(r.Items))
	for i, it := range r.Items {
		out[i] = component.Spec{Value: it.Value}
	}
	return out
}

// Import parses a file by extension and extracts its values.
func Import(r io.Reader, filename string, p *component.Parser, opts Options) (Result, error) {
	fp, err := ForFile(filename, opts)
	if err != nil {
		return Result{}, err
	}
	doc, err := fp.Parse(r, filename)
	if err != nil {
		return Result{}, err
	}
	return Extract(doc, p), nil
}

// Extract scans every fragment for value notation. Tokens that look like a
// value but do not parse become warnings.
func Extract(doc *Document, p *component.Parser) Result {
	res := Result{Warnings: []string{}}
	index := map[string]int{}

	for _, frag := range doc.Fragments {
		for _, tok := range candidates(frag.Text) {
			parsed, err := p.Parse(tok)
			if err != nil {
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %s", frag.Source, err))
				continue
			}
			for _, w := range parsed.Warnings {
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %s", frag.Source, w))
			}

			key := component.Component{
				Value:            parsed.Value,
				TolerancePercent: parsed.TolerancePercent,
				SeriesName:       parsed.SeriesName,
			}.Key()
			if i, ok := index[key]; ok {
				res.Items[i].Count++
				res.Items[i].Sources = append(res.Items[i].Sources, frag.Source)
				continue
			}
			index[key] = len(res.Items)
			res.Items = append(res.Items, Item{
				Value:            tok,
				Ohms:             parsed.Value,
				TolerancePercent: parsed.TolerancePercent,
				Series:           parsed.SeriesName,
				Count:            1,
				Sources:          []string{frag.Source},
			})
		}
	}
	return res
}

// candidates splits text into value-looking tokens. A number is joined with
// the unit, multiplier, tolerance and series tokens that follow it, so
// "4.7 k 1%" stays one value.
func candidates(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(",;|()[]\"'", r)
	})
	for i, f := range fields {
		fields[i] = strings.TrimRight(f, ".:")
	}

	var out []string
	for i := 0; i < len(fields); i++ {
		tok := fields[i]
		if tok == "" || !looksLikeValue(tok) {
			continue
		}
		if i > 0 && quantityBefore[strings.ToLower(fields[i-1])] {
			continue
		}
		if i+1 < len(fields) && quantityAfter[strings.ToLower(fields[i+1])] {
			continue
		}
		lower := strings.ToLower(tok)
		if strings.HasSuffix(lower, "pcs") || (strings.HasSuffix(lower, "x") && !abCode.MatchString(tok)) {
			continue
		}
		for i+1 < len(fields) && suffixToken.MatchString(fields[i+1]) {
			tok += " " + fields[i+1]
			i++
		}
		out = append(out, tok)
	}
	return out
}

// looksLikeValue accepts tokens that start with a digit or a decimal point,
// and Allen-Bradley type codes. Reference designators such as R12 are not
// values.
func looksLikeValue(tok string) bool {
	if abCode.MatchString(tok) {
		return true
	}
	if designator.MatchString(tok) {
		return false
	}
	c := tok[0]
	return (c >= '0' && c <= '9') || (c == '.' && len(tok) > 1 && tok[1] >= '0' && tok[1] <= '9')
}
