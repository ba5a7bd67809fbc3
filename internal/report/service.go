package report

import (
	"context"
	"fmt"
	"time"

	"github.com/vivabem/vivabem-server/internal/metrics"
	"go.uber.org/zap"
)

// Generator produces text from a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Notifier delivers a finished report to the user's caregiver. Implementations
// decide authorization themselves and never return an error to the pipeline.
type Notifier interface {
	Notify(ctx context.Context, userID string, report *StructuredReport)
}

// Service runs the daily report pipeline
type Service struct {
	aggregator *Aggregator
	generator  Generator
	notifier   Notifier
	logger     *zap.Logger
}

// NewService creates a new report service
func NewService(agg *Aggregator, gen Generator, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		aggregator: agg,
		generator:  gen,
		notifier:   notifier,
		logger:     logger.Named("report"),
	}
}

// GenerateDaily aggregates the user's day, asks the model for the structured
// report, and decodes it. The caregiver notification is fired on a detached
// context so caller cancellation or delivery failures never affect the result.
func (s *Service) GenerateDaily(ctx context.Context, userID string, day time.Time) (*StructuredReport, error) {
	bundle, err := s.aggregator.Collect(ctx, userID, day)
	if err != nil {
		metrics.ReportsGenerated.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to aggregate daily data: %w", err)
	}
	if len(bundle.Failed) > 0 {
		s.logger.Warn("Report built from partial data",
			zap.String("user_id", userID),
			zap.Strings("failed_sections", bundle.Failed),
		)
	}

	raw, err := s.generator.Generate(ctx, BuildExtractionPrompt(bundle))
	if err != nil {
		metrics.ReportsGenerated.WithLabelValues("error").Inc()
		return nil, err
	}

	result := ParseStructuredReport(raw)
	metrics.ReportsGenerated.WithLabelValues("success").Inc()

	s.logger.Info("Daily report generated",
		zap.String("user_id", userID),
		zap.Time("day", bundle.Day),
		zap.Int("recommendations", len(result.Recommendations)),
	)

	if s.notifier != nil {
		go s.notifier.Notify(context.Background(), userID, result)
	}

	return result, nil
}

// GenerateNarrative produces the Portuguese e-mail text for the user's day.
// No decoding, no caregiver notification.
func (s *Service) GenerateNarrative(ctx context.Context, userID string, day time.Time) (string, error) {
	bundle, err := s.aggregator.Collect(ctx, userID, day)
	if err != nil {
		return "", fmt.Errorf("failed to aggregate daily data: %w", err)
	}

	text, err := s.generator.Generate(ctx, BuildNarrativePrompt(bundle))
	if err != nil {
		return "", err
	}

	s.logger.Info("Narrative report generated",
		zap.String("user_id", userID),
		zap.Time("day", bundle.Day),
	)
	return text, nil
}
