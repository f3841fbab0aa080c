package fetch

import (
	"context"

	"go.uber.org/zap"
)

// CaptchaSolver is consulted when the marketplace answers with a status that
// usually means a captcha page was served instead of content.
type CaptchaSolver interface {
	Solve(ctx context.Context, pageURL string) error
}

// NoopCaptchaSolver records the blocked page and does nothing else
type NoopCaptchaSolver struct {
	logger *zap.Logger
}

// NewNoopCaptchaSolver creates the default captcha solver
func NewNoopCaptchaSolver(logger *zap.Logger) *NoopCaptchaSolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoopCaptchaSolver{logger: logger}
}

// Solve logs the blocked URL
func (s *NoopCaptchaSolver) Solve(_ context.Context, pageURL string) error {
	s.logger.Warn("likely captcha, page skipped", zap.String("url", pageURL))
	return nil
}
