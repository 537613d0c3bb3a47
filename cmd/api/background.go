package main

import (
	"context"
	"time"
)

const tokenPurgeInterval = 30 * time.Minute

// purgeExpiredTokensEvery deletes expired refresh tokens on a fixed interval
// until ctx is cancelled.
func (app *application) purgeExpiredTokensEvery(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Run once immediately
		app.purgeExpiredTokens(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				app.purgeExpiredTokens(ctx)
			}
		}
	}()
}

func (app *application) purgeExpiredTokens(ctx context.Context) {
	n, err := app.accounts.PurgeExpiredTokens(ctx)
	if err != nil {
		app.logger.Errorw("purging expired refresh tokens", "error", err)
		return
	}
	if n > 0 {
		app.logger.Infow("purged expired refresh tokens", "count", n)
	}
}
