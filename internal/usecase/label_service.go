package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/labelscan/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// LabelServiceConfig holds configuration for the label service
type LabelServiceConfig struct {
	MaxTextBytes     int
	MaxBatchSize     int
	BatchConcurrency int
}

// LabelService validates incoming OCR text, consults the record cache
// and runs the extractor
type LabelService struct {
	extractor        *LabelExtractor
	cache            domain.RecordCache
	logger           *slog.Logger
	maxTextBytes     int
	maxBatchSize     int
	batchConcurrency int
}

// BatchItem is the outcome for one text in a batch, in input order
type BatchItem struct {
	Index  int                 `json:"index"`
	Result *domain.ParseResult `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// FieldDescription describes one entry of the field table
type FieldDescription struct {
	Field    domain.Field         `json:"field"`
	Units    []string             `json:"units"`
	Patterns []PatternDescription `json:"patterns"`
}

// PatternDescription describes one candidate pattern, in priority order
type PatternDescription struct {
	Priority   int    `json:"priority"`
	Label      string `json:"label,omitempty"`
	Placement  string `json:"placement"`
	Expression string `json:"expression"`
}

// NewLabelService creates a label service. cache may be nil to disable caching.
func NewLabelService(
	extractor *LabelExtractor,
	cache domain.RecordCache,
	logger *slog.Logger,
	config LabelServiceConfig,
) *LabelService {
	if logger == nil {
		logger = slog.Default()
	}

	maxTextBytes := config.MaxTextBytes
	if maxTextBytes <= 0 {
		maxTextBytes = 1 << 20
	}
	maxBatchSize := config.MaxBatchSize
	if maxBatchSize <= 0 {
		maxBatchSize = 50
	}
	concurrency := config.BatchConcurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	return &LabelService{
		extractor:        extractor,
		cache:            cache,
		logger:           logger,
		maxTextBytes:     maxTextBytes,
		maxBatchSize:     maxBatchSize,
		batchConcurrency: concurrency,
	}
}

// Parse extracts a record from one block of OCR text.
// Flow: validate -> check cache -> extract -> cache -> return
func (s *LabelService) Parse(ctx context.Context, text string) (*domain.ParseResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrNoTextDetected
	}
	if len(text) > s.maxTextBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", domain.ErrTextTooLarge, len(text), s.maxTextBytes)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := cacheKey(text)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil && cached != nil {
			s.logger.Debug("label record served from cache", "key", key)
			return newParseResult(text, cached, true), nil
		}
	}

	record := s.extractor.Extract(text)

	// Faults are not cached so a fixed table takes effect on the next call.
	if s.cache != nil && record.Error == "" {
		if err := s.cache.Set(ctx, key, record); err != nil {
			s.logger.Warn("failed to cache label record", "key", key, "error", err)
		}
	}

	return newParseResult(text, record, false), nil
}

// ParseBatch parses several texts concurrently. Per-text failures are
// reported on the matching BatchItem; the returned error is only set when
// the batch itself is rejected or ctx is cancelled.
func (s *LabelService) ParseBatch(ctx context.Context, texts []string) ([]BatchItem, error) {
	if len(texts) == 0 {
		return nil, domain.ErrInvalidRequest
	}
	if len(texts) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: %d texts (max %d)", domain.ErrBatchTooLarge, len(texts), s.maxBatchSize)
	}

	items := make([]BatchItem, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := s.Parse(gctx, text)
			items[i] = BatchItem{Index: i, Result: result}
			if err != nil {
				items[i].Error = err.Error()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("parsed label batch", "size", len(texts))
	return items, nil
}

// Fields describes the field table in priority order
func (s *LabelService) Fields() []FieldDescription {
	table := s.extractor.Table()
	out := make([]FieldDescription, 0, len(table))
	for _, spec := range table {
		desc := FieldDescription{
			Field: spec.Field,
			Units: spec.Units,
		}
		for i, p := range spec.Patterns {
			pd := PatternDescription{
				Priority:   i + 1,
				Placement:  p.Placement.String(),
				Expression: p.Expression(spec.Units),
			}
			if p.Placement != Bare {
				pd.Label = p.Label
			}
			desc.Patterns = append(desc.Patterns, pd)
		}
		out = append(out, desc)
	}
	return out
}

// cacheKey hashes the raw text. Format: "label:{sha256 hex}"
func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "label:" + hex.EncodeToString(sum[:])
}

func newParseResult(text string, record *domain.NutritionRecord, cached bool) *domain.ParseResult {
	return &domain.ParseResult{
		RawText:    text,
		TextLength: utf8.RuneCountInString(text),
		Record:     record,
		Cached:     cached,
	}
}
