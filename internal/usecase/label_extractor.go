package usecase

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/labelscan/backend/internal/domain"
)

// LabelExtractor turns raw OCR text into a NutritionRecord.
// It only holds compiled patterns and is safe for concurrent use.
type LabelExtractor struct {
	table      []FieldSpec
	fields     []compiledField
	compileErr error
	logger     *slog.Logger
}

// NewLabelExtractor creates an extractor over DefaultFieldTable
func NewLabelExtractor(logger *slog.Logger) *LabelExtractor {
	return NewLabelExtractorWithTable(DefaultFieldTable(), logger)
}

// NewLabelExtractorWithTable creates an extractor over a custom table.
// A table that fails to compile does not panic: every Extract call then
// returns a record carrying the compile error.
func NewLabelExtractorWithTable(table []FieldSpec, logger *slog.Logger) *LabelExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	fields, err := compileFieldTable(table)
	if err != nil {
		logger.Error("invalid label field table", "error", err)
	}
	return &LabelExtractor{
		table:      table,
		fields:     fields,
		compileErr: err,
		logger:     logger,
	}
}

// Table returns a copy of the field table the extractor was built from
func (e *LabelExtractor) Table() []FieldSpec {
	out := make([]FieldSpec, len(e.table))
	for i, spec := range e.table {
		out[i] = FieldSpec{
			Field:    spec.Field,
			Units:    append([]string(nil), spec.Units...),
			Patterns: append([]Pattern(nil), spec.Patterns...),
		}
	}
	return out
}

// Extract parses text into a record. It never panics: a field that is not
// found is left nil, and an internal fault is reported through record.Error.
func (e *LabelExtractor) Extract(text string) (record *domain.NutritionRecord) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("label extraction panicked", "panic", r, "text_length", len(text))
			record = faultRecord(text, fmt.Sprintf("extraction failed: %v", r))
		}
	}()

	if e.compileErr != nil {
		e.logger.Error("label extraction unavailable", "error", e.compileErr, "text_length", len(text))
		return faultRecord(text, fmt.Sprintf("extraction failed: %v", e.compileErr))
	}

	lower := strings.ToLower(text)
	record = &domain.NutritionRecord{RawText: text}

	for _, f := range e.fields {
		m, pattern := matchField(f, lower)
		if m == nil {
			continue
		}
		record.Set(f.field, m)
		e.logger.Debug("found label field",
			"field", f.field,
			"value", m.Value,
			"unit", m.Unit,
			"pattern", pattern)
	}

	e.logger.Info("parsed nutritional values",
		"found", record.Found(),
		"text_length", len(text))

	return record
}

// matchField tries the field's patterns in order and returns the first hit
// along with the index of the pattern that produced it
func matchField(f compiledField, lower string) (*domain.Measurement, int) {
	for i, p := range f.patterns {
		groups := p.re.FindStringSubmatch(lower)
		if groups == nil {
			continue
		}
		value, err := strconv.ParseFloat(groups[1], 64)
		if err != nil {
			// out of float64 range; not a usable number
			continue
		}
		return &domain.Measurement{Value: value, Unit: groups[2]}, i
	}
	return nil, -1
}

func faultRecord(text, msg string) *domain.NutritionRecord {
	return &domain.NutritionRecord{
		RawText: text,
		Error:   msg,
	}
}
