package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	connectAttempts = 5
	connectBackoff  = time.Second
	pingTimeout     = 3 * time.Second
)

// pingWithRetry calls ping until it succeeds, attempts run out or ctx ends.
// The wait between attempts grows linearly from backoff.
func pingWithRetry(ctx context.Context, name string, attempts int, backoff time.Duration, log zerolog.Logger, ping func(context.Context) error) error {
	var err error
	for i := 1; i <= attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if i == attempts {
			break
		}

		wait := time.Duration(i) * backoff
		log.Warn().Err(err).Str("backend", name).Int("attempt", i).Dur("retry_in", wait).Msg("Backend not ready")

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("ping %s: %w", name, ctx.Err())
		case <-t.C:
		}
	}
	return fmt.Errorf("ping %s after %d attempts: %w", name, attempts, err)
}
