package workers

import (
	"context"
	"time"

	"foodshare_backend/internal/logger"
	"foodshare_backend/internal/repositories"
)

// TokenCleanupWorker purges expired refresh tokens.
type TokenCleanupWorker struct {
	tokens repositories.RefreshTokenRepository
	now    func() time.Time
}

func NewTokenCleanupWorker(tokens repositories.RefreshTokenRepository) *TokenCleanupWorker {
	return &TokenCleanupWorker{tokens: tokens, now: time.Now}
}

func (w *TokenCleanupWorker) Name() string { return "token_cleanup" }

func (w *TokenCleanupWorker) Run(ctx context.Context) error {
	n, err := w.tokens.DeleteExpired(ctx, w.now())
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("Expired refresh tokens purged", "count", n)
	}
	return nil
}
