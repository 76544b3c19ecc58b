package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/labelscan/backend/internal/domain"
)

const (
	// numberPattern matches an integer or decimal token such as "12" or "12.5"
	numberPattern = `([0-9]+(?:\.[0-9]+)?)`

	// spaceClass is any Unicode whitespace. RE2's \s is ASCII only, and OCR
	// output regularly carries NBSP, thin spaces and vertical tabs.
	spaceClass = `\s\v\p{Z}\x{85}\x{1c}-\x{1f}`
	gap        = `[` + spaceClass + `]*`
	separator  = `[:` + spaceClass + `]*`
)

// Placement says where a pattern expects the label relative to the number and unit
type Placement int

const (
	// LabelBefore matches "label: 12 g"
	LabelBefore Placement = iota
	// LabelAfter matches "12 g label"
	LabelAfter
	// Bare matches "12 g" with no label at all
	Bare
)

func (p Placement) String() string {
	switch p {
	case LabelBefore:
		return "label_before"
	case LabelAfter:
		return "label_after"
	case Bare:
		return "bare"
	}
	return fmt.Sprintf("placement(%d)", int(p))
}

// Pattern is one candidate template for a field. Label is a regular expression
// fragment matched against lowercase text; it is ignored for Bare patterns.
type Pattern struct {
	Label     string
	Placement Placement
}

// FieldSpec holds the ordered candidate patterns for one field.
// Earlier patterns take precedence over later ones.
type FieldSpec struct {
	Field    domain.Field
	Units    []string
	Patterns []Pattern
}

// Unit synonyms, in the order they are tried inside a match
var (
	servingUnits = []string{"g", "gram", "grams", "ml", "milliliter", "milliliters"}
	energyUnits  = []string{"kcal", "calories", "cal"}
	massUnits    = []string{"g", "gram", "grams"}
)

// DefaultFieldTable returns the label field table. Order matters everywhere:
// fields are extracted in this order and each field's patterns are tried in order.
func DefaultFieldTable() []FieldSpec {
	return []FieldSpec{
		{
			Field: domain.FieldServingSize,
			Units: servingUnits,
			Patterns: []Pattern{
				{Label: `serving size`, Placement: LabelBefore},
				{Label: `per serving`, Placement: LabelBefore},
				{Label: `per serving`, Placement: LabelAfter},
			},
		},
		{
			Field: domain.FieldEnergy,
			Units: energyUnits,
			Patterns: []Pattern{
				{Label: `energy`, Placement: LabelBefore},
				{Label: `calories`, Placement: LabelBefore},
				// OCR often drops the word next to the big printed number.
				// This also picks up unrelated numbers followed by "cal".
				{Placement: Bare},
			},
		},
		{
			Field: domain.FieldProtein,
			Units: massUnits,
			Patterns: []Pattern{
				{Label: `protein`, Placement: LabelBefore},
				{Label: `protein`, Placement: LabelAfter},
			},
		},
		{
			Field: domain.FieldCarbohydrates,
			Units: massUnits,
			Patterns: []Pattern{
				{Label: `carbohydrates?`, Placement: LabelBefore},
				{Label: `carbs?`, Placement: LabelBefore},
				{Label: `carbohydrates?`, Placement: LabelAfter},
				{Label: `carbs?`, Placement: LabelAfter},
			},
		},
		{
			Field: domain.FieldFiber,
			Units: massUnits,
			Patterns: []Pattern{
				{Label: `fiber`, Placement: LabelBefore},
				{Label: `dietary fiber`, Placement: LabelBefore},
				{Label: `fiber`, Placement: LabelAfter},
				{Label: `dietary fiber`, Placement: LabelAfter},
			},
		},
		{
			Field: domain.FieldTotalFat,
			Units: massUnits,
			Patterns: []Pattern{
				{Label: `total fat`, Placement: LabelBefore},
				{Label: `fat`, Placement: LabelBefore},
				{Label: `total fat`, Placement: LabelAfter},
				{Label: `fat`, Placement: LabelAfter},
			},
		},
	}
}

// Expression renders the pattern as a regular expression with two groups:
// the number and the unit.
func (p Pattern) Expression(units []string) string {
	quoted := make([]string, len(units))
	for i, u := range units {
		quoted[i] = regexp.QuoteMeta(u)
	}
	unit := "(" + strings.Join(quoted, "|") + ")"
	switch p.Placement {
	case LabelBefore:
		return p.Label + separator + numberPattern + gap + unit
	case LabelAfter:
		return numberPattern + gap + unit + gap + p.Label
	default:
		return numberPattern + gap + unit
	}
}

type compiledPattern struct {
	Pattern
	re *regexp.Regexp
}

type compiledField struct {
	field    domain.Field
	patterns []compiledPattern
}

// compileFieldTable validates the table and compiles every pattern
func compileFieldTable(table []FieldSpec) ([]compiledField, error) {
	compiled := make([]compiledField, 0, len(table))
	for _, spec := range table {
		if len(spec.Units) == 0 {
			return nil, fmt.Errorf("field %s: no units configured", spec.Field)
		}
		for _, u := range spec.Units {
			if u == "" {
				return nil, fmt.Errorf("field %s: empty unit", spec.Field)
			}
		}

		cf := compiledField{field: spec.Field}
		for i, p := range spec.Patterns {
			if p.Placement != Bare && p.Label == "" {
				return nil, fmt.Errorf("field %s pattern %d: %s pattern needs a label", spec.Field, i, p.Placement)
			}
			re, err := regexp.Compile(p.Expression(spec.Units))
			if err != nil {
				return nil, fmt.Errorf("field %s pattern %d: %w", spec.Field, i, err)
			}
			if re.NumSubexp() != 2 {
				return nil, fmt.Errorf("field %s pattern %d: label must not contain capture groups", spec.Field, i)
			}
			cf.patterns = append(cf.patterns, compiledPattern{Pattern: p, re: re})
		}
		compiled = append(compiled, cf)
	}
	return compiled, nil
}
