package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Amund211/saberwatch/internal/adapters/notifier"
	"github.com/Amund211/saberwatch/internal/adapters/playerprovider"
	"github.com/Amund211/saberwatch/internal/adapters/playerrepository"
	"github.com/Amund211/saberwatch/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	STEP_FETCH  = "fetch"
	STEP_STORE  = "store"
	STEP_NOTIFY = "notify"

	STATUS_SUCCESS = "success"
	STATUS_FAILURE = "failure"
)

// PollPlayer fetches, stores and announces the current data for one player.
//
// A failed fetch skips the rest. Store and notify are attempted independently.
// The returned error joins the failed steps.
type PollPlayer func(ctx context.Context, playerID string) error

type pollMetricsCollection struct {
	stepCount metric.Int64Counter
}

func setupPollMetrics(meter metric.Meter) (pollMetricsCollection, error) {
	stepCount, err := meter.Int64Counter("app/poll_steps")
	if err != nil {
		return pollMetricsCollection{}, fmt.Errorf("failed to create metric: %w", err)
	}

	return pollMetricsCollection{
		stepCount: stepCount,
	}, nil
}

// stepRecorder is the single sink for step outcomes
type stepRecorder func(ctx context.Context, step string, err error)

func buildStepRecorder(metrics pollMetricsCollection) stepRecorder {
	return func(ctx context.Context, step string, err error) {
		logger := logging.FromContext(ctx)

		status := STATUS_SUCCESS
		if err != nil {
			status = STATUS_FAILURE
		}

		metrics.stepCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("step", step),
			attribute.String("status", status),
		))

		if err != nil {
			logger.ErrorContext(ctx, "poll step failed", "step", step, "status", status, "error", err.Error())
			return
		}
		logger.InfoContext(ctx, "poll step succeeded", "step", step, "status", status)
	}
}

func BuildPollPlayer(
	provider playerprovider.PlayerProvider,
	repo playerrepository.PlayerRepository,
	playerNotifier notifier.Notifier,
	meter metric.Meter,
) (PollPlayer, error) {
	metrics, err := setupPollMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}
	record := buildStepRecorder(metrics)
	tracer := otel.Tracer("app/poll")

	return func(ctx context.Context, playerID string) error {
		ctx = logging.AddMetaToContext(ctx, slog.String("playerID", playerID))
		ctx, span := tracer.Start(ctx, "PollPlayer", trace.WithAttributes(attribute.String("playerID", playerID)))
		defer span.End()

		// NOTE: The adapters handle their own error reporting
		player, err := provider.GetPlayer(ctx, playerID)
		record(ctx, STEP_FETCH, err)
		if err != nil {
			span.SetStatus(codes.Error, "fetch failed")
			return fmt.Errorf("could not get player: %w", err)
		}

		var stepErrs []error

		err = repo.UpsertPlayer(ctx, player)
		record(ctx, STEP_STORE, err)
		if err != nil {
			stepErrs = append(stepErrs, fmt.Errorf("could not store player: %w", err))
		}

		// Notify even if storing failed
		err = playerNotifier.Notify(ctx, player)
		record(ctx, STEP_NOTIFY, err)
		if err != nil {
			stepErrs = append(stepErrs, fmt.Errorf("could not notify: %w", err))
		}

		joined := errors.Join(stepErrs...)
		if joined != nil {
			span.SetStatus(codes.Error, joined.Error())
		}
		return joined
	}, nil
}
