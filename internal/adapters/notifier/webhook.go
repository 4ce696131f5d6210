package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Amund211/saberwatch/internal/constants"
	"github.com/Amund211/saberwatch/internal/domain"
	"github.com/Amund211/saberwatch/internal/logging"
	"github.com/Amund211/saberwatch/internal/ratelimiting"
	"github.com/Amund211/saberwatch/internal/reporting"
)

// Stands in for an unset webhook url. Never sent over the network.
const MISSING_WEBHOOK_URL = "<missing webhook url>"

const maxBodyExcerpt = 512

// Discord allows 30 messages per minute per webhook
const webhookRefillPerSecond = 0.5
const webhookBurstSize = 5

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Notifier interface {
	// All errors wrap domain.ErrNotifyFailed
	//
	// Raises domain.ErrMissingWebhookURL without sending anything when no webhook url is configured
	Notify(ctx context.Context, player domain.PlayerData) error
}

type webhookNotifier struct {
	httpClient HttpClient
	webhookURL string
	limiter    ratelimiting.KeyedLimiter
}

func NewWebhookNotifier(httpClient HttpClient, webhookURL string, limiter ratelimiting.KeyedLimiter) Notifier {
	if webhookURL == "" {
		webhookURL = MISSING_WEBHOOK_URL
	}

	return &webhookNotifier{
		httpClient: httpClient,
		webhookURL: webhookURL,
		limiter:    limiter,
	}
}

// NewWebhookLimiter paces posts to each webhook below Discord's limits. Call the returned func to stop it.
func NewWebhookLimiter() (ratelimiting.KeyedLimiter, func()) {
	return ratelimiting.NewTokenBucketLimiter(
		ratelimiting.RefillPerSecond(webhookRefillPerSecond),
		ratelimiting.BurstSize(webhookBurstSize),
	)
}

func (n *webhookNotifier) Notify(ctx context.Context, player domain.PlayerData) error {
	logger := logging.FromContext(ctx)

	if n.webhookURL == MISSING_WEBHOOK_URL {
		logger.WarnContext(ctx, "No webhook url configured, skipping notification")
		return domain.ErrMissingWebhookURL
	}

	body, err := json.Marshal(BuildPayload(player))
	if err != nil {
		err := fmt.Errorf("%w: failed to marshal payload: %w", domain.ErrNotifyFailed, err)
		reporting.Report(ctx, err)
		return err
	}

	err = n.limiter.Wait(ctx, n.webhookURL)
	if err != nil {
		return fmt.Errorf("%w: waiting for webhook limiter: %w", domain.ErrNotifyFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", n.webhookURL, bytes.NewReader(body))
	if err != nil {
		err := fmt.Errorf("%w: failed to create request: %w", domain.ErrNotifyFailed, err)
		reporting.Report(ctx, err)
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", constants.USER_AGENT)

	start := time.Now()
	resp, err := n.httpClient.Do(req)
	if err != nil {
		// The url contains the webhook token
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		err := fmt.Errorf("%w: failed to send request: %w", domain.ErrNotifyFailed, err)
		reporting.Report(ctx, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyExcerpt))
		err := fmt.Errorf("%w: webhook returned status code %d: %s", domain.ErrNotifyFailed, resp.StatusCode, string(excerpt))
		reporting.Report(ctx, err, map[string]string{
			"statusCode": fmt.Sprint(resp.StatusCode),
		})
		return err
	}

	logger.InfoContext(ctx, "webhook notification sent", "status", resp.StatusCode, "duration", time.Since(start).String())

	return nil
}
