package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/godilite/reviewsent/internal/dataset"
	"go.uber.org/zap"
)

const defaultTopN = 20

// AnalyzeOptions tunes one analyze run.
type AnalyzeOptions struct {
	TopN       int
	TextColumn string
}

// PipelineService runs the normalise, score, rank and aggregate stages.
type PipelineService struct {
	scorer PolarityScorer
	logger *zap.Logger
}

// NewPipelineService creates a PipelineService. A nil scorer makes every
// scoring step fall back to neutral scores.
func NewPipelineService(scorer PolarityScorer, logger *zap.Logger) *PipelineService {
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &PipelineService{
		scorer: scorer,
		logger: logger,
	}
}

// Analyze ranks the worst reviews of a table and counts its labels.
func (s *PipelineService) Analyze(ctx context.Context, table *dataset.Table, opts AnalyzeOptions) (*Result, error) {
	if opts.TopN == 0 {
		opts.TopN = defaultTopN
	}

	ds, err := dataset.FromTable(table, opts.TextColumn)
	if err != nil {
		return nil, err
	}
	ds = normalizeAll(ds)
	ds = reconcile(ds)

	strategy := SelectStrategy(ds.Capabilities())
	ranked := RankWorst(ds, opts.TopN)

	s.logger.Info("ranked reviews",
		zap.String("table", table.Name),
		zap.Int("records", ds.Len()),
		zap.String("strategy", string(strategy)),
		zap.Int("ranked", len(ranked)))

	var warnings []string
	if ds.Labelled() == 0 {
		var warn string
		ds, warn, err = s.scoreAll(ctx, ds)
		if err != nil {
			return nil, err
		}
		if warn != "" {
			warnings = append(warnings, warn)
		}
	}

	report, err := Aggregate(ds)
	if err != nil {
		return nil, err
	}

	return &Result{
		Records:  ds.Len(),
		Strategy: strategy,
		Ranked:   Project(ranked),
		Report:   report,
		Warnings: warnings,
	}, nil
}

// Score normalises and scores every record of a table, replacing any score
// or label it came with.
func (s *PipelineService) Score(ctx context.Context, table *dataset.Table, textColumn string) (*ScoreResult, error) {
	ds, err := dataset.FromTable(table, textColumn)
	if err != nil {
		return nil, err
	}
	ds, warn, err := s.scoreAll(ctx, normalizeAll(ds))
	if err != nil {
		return nil, err
	}

	result := &ScoreResult{Dataset: ds}
	if warn != "" {
		result.Warnings = append(result.Warnings, warn)
	}
	return result, nil
}

func normalizeAll(ds *dataset.Dataset) *dataset.Dataset {
	return ds.Map(func(r dataset.Record) dataset.Record {
		r.CleanedText = normalizeOptional(r.Text)
		return r
	})
}

// scoreAll sets a score and label on every record. If the scorer is missing
// or fails on any record, every record gets 0.0 and a warning is returned.
// Only a cancelled context is an error.
func (s *PipelineService) scoreAll(ctx context.Context, ds *dataset.Dataset) (*dataset.Dataset, string, error) {
	scores, err := s.scoreTexts(ctx, ds)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, "", ctxErr
		}
		warn := fmt.Sprintf("%v; assigning neutral scores", err)
		s.logger.Warn("falling back to neutral scores", zap.Int("records", ds.Len()), zap.Error(err))
		return fill(ds, func(dataset.Record) float64 { return 0 }), warn, nil
	}

	s.logger.Info("scored records", zap.Int("records", ds.Len()), zap.Int("distinct_texts", len(scores)))
	return fill(ds, func(r dataset.Record) float64 { return scores[r.CleanedText] }), "", nil
}

// scoreTexts queries the scorer once per distinct cleaned text.
func (s *PipelineService) scoreTexts(ctx context.Context, ds *dataset.Dataset) (map[string]float64, error) {
	if s.scorer == nil {
		return nil, ErrScorerUnavailable
	}

	scores := make(map[string]float64)
	for _, r := range ds.Records() {
		if _, ok := scores[r.CleanedText]; ok {
			continue
		}
		score, err := s.scorer.Score(ctx, r.CleanedText)
		if err != nil {
			if errors.Is(err, ErrScorerUnavailable) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrScorerUnavailable, err)
		}
		if math.IsNaN(score) {
			return nil, fmt.Errorf("%w: score for row %d is NaN", ErrScorerUnavailable, r.Row)
		}
		scores[r.CleanedText] = clamp(score)
	}
	return scores, nil
}

func fill(ds *dataset.Dataset, score func(dataset.Record) float64) *dataset.Dataset {
	out := ds.Map(func(r dataset.Record) dataset.Record {
		v := score(r)
		r.Score = &v
		r.Sentiment = Classify(v)
		return r
	})
	caps := out.Capabilities()
	caps.HasScore = true
	caps.HasLabel = true
	return out.WithCapabilities(caps)
}

func clamp(score float64) float64 {
	return math.Max(-1, math.Min(1, score))
}
