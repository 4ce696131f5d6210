package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Amund211/saberwatch/internal/adapters/database"
	"github.com/Amund211/saberwatch/internal/adapters/notifier"
	"github.com/Amund211/saberwatch/internal/adapters/playerprovider"
	"github.com/Amund211/saberwatch/internal/adapters/playerrepository"
	"github.com/Amund211/saberwatch/internal/app"
	"github.com/Amund211/saberwatch/internal/config"
	"github.com/Amund211/saberwatch/internal/logging"
	"github.com/Amund211/saberwatch/internal/reporting"
	"github.com/Amund211/saberwatch/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	_ "golang.org/x/crypto/x509roots/fallback"
)

const SERVICE_NAME = "saberwatch"

const webhookTimeout = 10 * time.Second

// newHTTPClients returns the client for ScoreSaber and the client for the webhook.
// ScoreSaber requests rely on the transport defaults and the context.
func newHTTPClients() (*http.Client, *http.Client) {
	scoreSaberClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	webhookClient := &http.Client{
		Timeout:   webhookTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	return scoreSaberClient, webhookClient
}

// pollerExitCode maps the result of the poller to a process exit code
func pollerExitCode(err error) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}
	return 1
}

func main() {
	os.Exit(run(context.Background()))
}

// run returns the exit code after every deferred cleanup has run
func run(ctx context.Context) int {
	instanceID := uuid.New().String()
	logger := logging.NewLogger(os.Stdout, instanceID)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.AddToContext(ctx, logger)

	config, err := config.ConfigFromEnv()
	if err != nil {
		logger.Error("Failed to load config", "error", err.Error())
		return 1
	}
	logger.Info("Loaded config", "config", config.NonSensitiveString())

	flush, err := reporting.NewSentryOrMock(config)
	if err != nil {
		logger.Error("Failed to initialize Sentry", "error", err.Error())
		return 1
	}
	defer flush()
	logger.Info("Initialized Sentry")

	if config.TelemetryEnabled() {
		otelShutdown, err := telemetry.SetupOTelSDK(ctx, SERVICE_NAME)
		if err != nil {
			logger.Error("Failed to initialize OpenTelemetry", "error", err.Error())
			return 1
		}
		defer func() {
			// The signal context is done by now
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				logger.Error("Failed to shut down OpenTelemetry", "error", err.Error())
			}
		}()
		logger.Info("Initialized OpenTelemetry")
	}
	meter := otel.Meter(SERVICE_NAME)

	scoreSaberClient, webhookClient := newHTTPClients()

	logger.Info("Initializing database connection")
	db, err := database.NewDatabase(config)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err.Error())
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database", "error", err.Error())
		}
	}()
	logger.Info("Initialized database connection", "driver", db.DriverName())

	playerRepo := playerrepository.NewSQLPlayerRepository(db)
	err = playerRepo.EnsureSchema(ctx)
	if err != nil {
		logger.Error("Failed to ensure database schema", "error", err.Error())
		return 1
	}
	logger.Info("Initialized PlayerRepository")

	scoreSaberAPI, err := playerprovider.NewScoreSaberAPI(scoreSaberClient, config.APIBaseURL(), time.Now, time.After)
	if err != nil {
		logger.Error("Failed to initialize ScoreSaber API", "error", err.Error())
		return 1
	}
	playerProvider, err := playerprovider.NewScoreSaberPlayerProvider(scoreSaberAPI, meter)
	if err != nil {
		logger.Error("Failed to initialize PlayerProvider", "error", err.Error())
		return 1
	}

	if config.WebhookURL() == "" {
		logger.Warn("WEBHOOK_URL is not set, notifications will fail")
	}
	webhookLimiter, stopWebhookLimiter := notifier.NewWebhookLimiter()
	defer stopWebhookLimiter()
	playerNotifier := notifier.NewWebhookNotifier(webhookClient, config.WebhookURL(), webhookLimiter)

	pollPlayer, err := app.BuildPollPlayer(playerProvider, playerRepo, playerNotifier, meter)
	if err != nil {
		logger.Error("Failed to initialize poller", "error", err.Error())
		return 1
	}

	logger.Info("Init complete", "players", len(config.PlayerIDs()), "interval", config.PollInterval().String())
	err = app.RunPoller(ctx, pollPlayer, config.PlayerIDs(), config.PollInterval(), time.After)
	code := pollerExitCode(err)
	if code != 0 {
		logger.Error("Poller error", "error", err.Error())
		return code
	}
	logger.Info("Poller shutdown")
	return 0
}
