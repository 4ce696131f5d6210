package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/Amund211/saberwatch/internal/config"
	"github.com/Amund211/saberwatch/internal/logging"
	"github.com/getsentry/sentry-go"
)

var webhookRx = regexp.MustCompile(`/webhooks/[^/\s"]+/[^/\s"?]+`)
var playerPathRx = regexp.MustCompile(`/player/[^/\s"]+/full`)
var hostRx = regexp.MustCompile(`\[:{0,2}([0-9a-f]{0,4}:?){1,8}\]:\d+`)
var ipv4HostRx = regexp.MustCompile(`\b\d{1,3}(\.\d{1,3}){3}:\d+\b`)

// Strip secrets and high cardinality parts so similar errors group together
func sanitizeError(err string) string {
	err = webhookRx.ReplaceAllString(err, "/webhooks/<webhook>")
	err = playerPathRx.ReplaceAllString(err, "/player/<id>/full")
	err = hostRx.ReplaceAllString(err, "<host>")
	err = ipv4HostRx.ReplaceAllString(err, "<host>")
	return err
}

func Report(ctx context.Context, err error, extras ...map[string]string) {
	hub := sentry.GetHubFromContext(ctx)
	logger := logging.FromContext(ctx)
	if hub == nil {
		logger.WarnContext(ctx, "Failed to get Sentry hub from context", "error", sanitizeNilError(err), "extras", extras)
		return
	}

	logger.ErrorContext(
		ctx,
		"Reporting error to Sentry",
		slog.String("error", sanitizeNilError(err)),
		slog.Any("extras", extras),
	)

	hub.WithScope(func(scope *sentry.Scope) {
		meta := MetaFromContext(ctx)
		scope.SetTags(meta.tags())
		for key, value := range meta.extras {
			scope.SetExtra(key, value)
		}
		if !meta.startedAt.IsZero() {
			scope.SetExtra("secondsSinceIterationStart", time.Since(meta.startedAt).Seconds())
		}

		for _, extra := range extras {
			if extra == nil {
				continue
			}
			for key, value := range extra {
				scope.SetExtra(key, value)
			}
		}

		if err == nil {
			err = errors.New("No error provided")
		}

		scope.SetFingerprint([]string{"{{ default }}", sanitizeError(err.Error())})
		hub.CaptureException(errors.New(sanitizeError(err.Error())))
	})
}

func sanitizeNilError(err error) string {
	if err == nil {
		return "<nil>"
	}
	return sanitizeError(err.Error())
}

// AddHubToContext gives the context its own hub so scopes don't leak between iterations
func AddHubToContext(ctx context.Context) context.Context {
	hub := sentry.CurrentHub().Clone()
	return sentry.SetHubOnContext(ctx, hub)
}

func InitSentry(sentryDSN string, environment string) (func(), error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         sentryDSN,
		Environment: environment,
	})
	if err != nil {
		return nil, err
	}

	flush := func() {
		sentry.Flush(5 * time.Second)
	}

	return flush, nil
}

func NewSentryOrMock(conf config.Config) (func(), error) {
	if conf.SentryDSN() != "" {
		environment := "development"
		if conf.IsProduction() {
			environment = "production"
		} else if conf.IsStaging() {
			environment = "staging"
		}
		return InitSentry(conf.SentryDSN(), environment)
	}

	if conf.IsDevelopment() {
		flush := func() {}
		return flush, nil
	}

	return nil, fmt.Errorf("Missing Sentry DSN in non-development environment")
}
