package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Amund211/saberwatch/internal/logging"
	"github.com/Amund211/saberwatch/internal/reporting"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

// RunPoller polls every player in order, then waits interval before the next round.
//
// Runs until ctx is cancelled, and returns ctx.Err(). Rounds never overlap.
func RunPoller(
	ctx context.Context,
	pollPlayer PollPlayer,
	playerIDs []string,
	interval time.Duration,
	afterFunc func(time.Duration) <-chan time.Time,
) error {
	if len(playerIDs) == 0 {
		return fmt.Errorf("no players to poll")
	}
	if interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", interval)
	}

	ctx = reporting.AddExtrasToContext(ctx, map[string]string{
		"pollInterval": interval.String(),
		"playerCount":  strconv.Itoa(len(playerIDs)),
	})

	for {
		iterationID := uuid.New().String()
		iterationCtx := logging.AddMetaToContext(ctx, slog.String("iterationID", iterationID))
		iterationCtx = reporting.StartIterationInContext(iterationCtx, iterationID, time.Now())

		logging.FromContext(iterationCtx).InfoContext(iterationCtx, "Starting poll iteration", "players", len(playerIDs))

		for i, playerID := range playerIDs {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			playerCtx := reporting.AddExtrasToContext(iterationCtx, map[string]string{
				"playerIndex": fmt.Sprintf("%d/%d", i+1, len(playerIDs)),
			})
			pollOne(playerCtx, pollPlayer, playerID)
		}

		logging.FromContext(iterationCtx).InfoContext(iterationCtx, "Poll iteration done", "sleep", interval.String())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-afterFunc(interval):
		}
	}
}

func pollOne(ctx context.Context, pollPlayer PollPlayer, playerID string) {
	ctx = reporting.AddHubToContext(ctx)
	ctx = reporting.SetPlayerInContext(ctx, playerID)

	defer func() {
		if r := recover(); r != nil {
			logging.FromContext(ctx).ErrorContext(ctx, "Recovered from panic while polling player", "playerID", playerID, "panic", fmt.Sprint(r))
			if hub := sentry.GetHubFromContext(ctx); hub != nil {
				hub.RecoverWithContext(ctx, r)
			}
		}
	}()

	// NOTE: PollPlayer records the outcome of every step
	_ = pollPlayer(ctx, playerID)
}
