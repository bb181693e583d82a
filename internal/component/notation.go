package component

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/dgallion1/rescalc/internal/series"
)

// notationLexer tokenizes resistor value notation: RKM codes ("4k7", "R47"),
// decimals with a multiplier ("4.7k"), Allen-Bradley type codes ("EB1041"),
// tolerance ("±1%") and series tags ("E96").
var notationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Code", Pattern: `(?i)\b(BB|CB|EB|GB|HB)[0-9]{4}\b`},
	{Name: "Series", Pattern: `(?i)\bE(24|48|96|192)\b`},
	{Name: "Percent", Pattern: `±?[0-9]*\.?[0-9]+\s*%`},
	{Name: "Number", Pattern: `[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?`},
	{Name: "Unit", Pattern: `(?i)ohms?|Ω`},
	{Name: "Mult", Pattern: `[RrKkMmGg]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type notation struct {
	Code      string     `(  @Code`
	Magnitude *magnitude `| @@ )`
	Unit      string     `@Unit?`
	Tags      []string   `( @Percent | @Series )*`
}

type magnitude struct {
	Whole    string `  @Number`
	Mult     string `  ( @Mult`
	Frac     string `    @Number? )?`
	LeadMult string `| @Mult`
	LeadFrac string `  @Number`
}

var multipliers = map[string]float64{
	"R": 1, "r": 1,
	"k": 1e3, "K": 1e3,
	"M": 1e6,
	"m": 1e-3,
	"G": 1e9, "g": 1e9,
}

// Allen-Bradley tolerance digit → percent.
var codeTolerance = map[byte]float64{'5': 5, '1': 10, '2': 20}

// Parsed is the result of reading one value string.
type Parsed struct {
	Value            float64  `json:"value"`
	TolerancePercent *float64 `json:"tolerance_percent,omitempty"`
	SeriesName       string   `json:"series,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Parser reads human resistor notation.
type Parser struct {
	parser *participle.Parser[notation]
}

// NewParser builds the notation grammar.
func NewParser() (*Parser, error) {
	p, err := participle.Build[notation](
		participle.Lexer(notationLexer),
		participle.Elide("Whitespace"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build notation parser: %w", err)
	}
	return &Parser{parser: p}, nil
}

// Parse converts s into a value with optional tolerance and series. Failures
// are *InputError.
func (p *Parser) Parse(s string) (Parsed, error) {
	item := strings.TrimSpace(s)
	if item == "" {
		return Parsed{}, &InputError{Item: s, Reason: "empty value"}
	}

	n, err := p.parser.ParseString("", item)
	if err != nil {
		return Parsed{}, &InputError{Item: item, Reason: err.Error()}
	}

	var out Parsed
	if n.Code != "" {
		out, err = fromCode(n.Code)
	} else {
		out, err = fromMagnitude(n.Magnitude)
	}
	if err != nil {
		return Parsed{}, &InputError{Item: item, Reason: err.Error()}
	}

	for _, tag := range n.Tags {
		if strings.HasSuffix(tag, "%") {
			num := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(tag, "±"), "%"))
			t, err := strconv.ParseFloat(num, 64)
			if err != nil || t < 0 || t >= 100 {
				return Parsed{}, &InputError{Item: item, Reason: "tolerance must be in [0, 100)"}
			}
			out.TolerancePercent = &t
			continue
		}
		sr, ok := series.Lookup(tag)
		if !ok {
			return Parsed{}, &InputError{Item: item, Reason: fmt.Sprintf("unknown series %q", tag)}
		}
		out.SeriesName = sr.Name
	}

	if out.Value <= 0 || math.IsInf(out.Value, 0) || math.IsNaN(out.Value) {
		return Parsed{}, &InputError{Item: item, Reason: "value must be positive"}
	}
	if out.SeriesName != "" {
		sr, _ := series.Lookup(out.SeriesName)
		if !sr.Contains(out.Value) {
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s is not a member of %s", item, sr.Name))
		}
	}
	return out, nil
}

func fromMagnitude(m *magnitude) (Parsed, error) {
	if m.LeadMult != "" {
		// "R47", "k22"
		v, err := strconv.ParseFloat("0."+m.LeadFrac, 64)
		if err != nil || strings.ContainsAny(m.LeadFrac, ".eE") {
			return Parsed{}, fmt.Errorf("malformed fraction %q", m.LeadFrac)
		}
		return Parsed{Value: v * multipliers[m.LeadMult]}, nil
	}

	var out Parsed
	mult := 1.0
	if m.Mult != "" {
		mult = multipliers[m.Mult]
		if m.Mult == "m" {
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s%s: 'm' read as milli, use 'M' for mega", m.Whole, m.Mult))
		}
	}
	digits := m.Whole
	if m.Frac != "" {
		if strings.ContainsAny(m.Whole, ".eE") || strings.ContainsAny(m.Frac, ".eE") {
			return Parsed{}, fmt.Errorf("multiplier used as decimal point with fractional part %s%s%s", m.Whole, m.Mult, m.Frac)
		}
		digits = m.Whole + "." + m.Frac
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return Parsed{}, fmt.Errorf("malformed number %q", digits)
	}
	out.Value = v * mult
	return out, nil
}

// fromCode decodes Allen-Bradley type designations: two-letter wattage
// prefix, two significant digits, a decade multiplier and a tolerance digit.
func fromCode(code string) (Parsed, error) {
	d := code[2:]
	sig, _ := strconv.Atoi(d[:2])
	exp := int(d[2] - '0')
	out := Parsed{Value: float64(sig) * math.Pow(10, float64(exp))}
	if t, ok := codeTolerance[d[3]]; ok {
		out.TolerancePercent = &t
	} else {
		out.Warnings = append(out.Warnings, fmt.Sprintf("%s: unknown tolerance digit %c", code, d[3]))
	}
	return out, nil
}
