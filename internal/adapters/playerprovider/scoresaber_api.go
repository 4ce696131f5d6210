package playerprovider

import (
	"context"
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

// ScoreSaber allows 400 requests per minute. Stay well below it.
const requestsPerWindow = 300
const requestWindow = time.Minute
const maxRequestTime = 10 * time.Second

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type ScoreSaberAPI interface {
	GetPlayerData(ctx context.Context, playerID string) ([]byte, int, error)
}

type scoreSaberAPIImpl struct {
	httpClient HttpClient
	baseURL    string
	limiter    *ratelimiting.WindowLimiter
}

func (api *scoreSaberAPIImpl) GetPlayerData(ctx context.Context, playerID string) ([]byte, int, error) {
	logger := logging.FromContext(ctx)
	requestURL := fmt.Sprintf("%s/player/%s/full", api.baseURL, url.PathEscape(playerID))

	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		err := fmt.Errorf("%w: failed to create request: %w", domain.ErrFetchFailed, err)
		logger.ErrorContext(ctx, err.Error())
		reporting.Report(ctx, err)
		return []byte{}, -1, err
	}

	req.Header.Set("User-Agent", constants.USER_AGENT)

	var resp *http.Response
	var requestErr error
	start := time.Now()
	ran := api.limiter.Limit(ctx, maxRequestTime, func() {
		resp, requestErr = api.httpClient.Do(req)
	})
	if !ran {
		err := fmt.Errorf("%w: %w: request limit reached", domain.ErrFetchFailed, domain.ErrTemporarilyUnavailable)
		logger.WarnContext(ctx, err.Error())
		return []byte{}, -1, err
	}
	if requestErr != nil {
		err := fmt.Errorf("%w: failed to send request: %w", domain.ErrFetchFailed, requestErr)
		logger.ErrorContext(ctx, err.Error())
		reporting.Report(ctx, err)
		return []byte{}, -1, err
	}

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		err := fmt.Errorf("%w: failed to read response body: %w", domain.ErrFetchFailed, err)
		logger.ErrorContext(ctx, err.Error())
		reporting.Report(ctx, err)
		return []byte{}, -1, err
	}
	logger.InfoContext(ctx, "scoresaber request completed", "url", requestURL, "status", resp.StatusCode, "duration", time.Since(start).String())

	return data, resp.StatusCode, nil
}

func NewScoreSaberAPI(
	httpClient HttpClient,
	baseURL string,
	nowFunc func() time.Time,
	afterFunc func(time.Duration) <-chan time.Time,
) (ScoreSaberAPI, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("missing scoresaber api base url")
	}

	return &scoreSaberAPIImpl{
		httpClient: httpClient,
		baseURL:    baseURL,
		limiter:    ratelimiting.NewWindowLimiter(requestsPerWindow, requestWindow, nowFunc, afterFunc),
	}, nil
}
