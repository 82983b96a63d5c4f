package analyzer

import (
	"context"
	"log/slog"
	"strings"

	"journai/internal/journal"
)

// Service turns journal text into an Analysis. It never fails: provider
// errors and unusable replies both end in journal.DefaultAnalysis.
type Service struct {
	client Client
	logger *slog.Logger
}

func NewService(client Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger}
}

func (s *Service) Analyze(ctx context.Context, text string) journal.Analysis {
	analysis, _ := s.AnalyzeWithTier(ctx, text)
	return analysis
}

// AnalyzeWithTier also reports which interpretation tier produced the result.
// A failed provider call reports TierDefault.
func (s *Service) AnalyzeWithTier(ctx context.Context, text string) (journal.Analysis, journal.Tier) {
	if strings.TrimSpace(text) == "" || s.client == nil {
		return journal.DefaultAnalysis(), journal.TierDefault
	}

	reply, err := s.client.Generate(ctx, BuildPrompt(text))
	if err != nil {
		s.logger.WarnContext(ctx, "analysis.provider_failed",
			slog.String("provider", s.client.Name()),
			slog.Int("text_length", len(text)),
			slog.String("error", err.Error()),
		)
		return journal.DefaultAnalysis(), journal.TierDefault
	}

	analysis, tier := journal.InterpretWithTier(reply)
	level := slog.LevelInfo
	if tier != journal.TierStructured {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "analysis.interpreted",
		slog.String("provider", s.client.Name()),
		slog.String("tier", tier.String()),
		slog.String("mood", analysis.Mood.String()),
		slog.Int("reply_length", len(reply)),
	)
	return analysis, tier
}
