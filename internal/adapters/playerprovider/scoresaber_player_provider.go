package playerprovider

import (
	"context"
	"fmt"

	"github.com/Amund211/saberwatch/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type scoreSaberPlayerProvider struct {
	scoreSaberAPI ScoreSaberAPI

	metrics scoreSaberPlayerProviderMetricsCollection
}

func NewScoreSaberPlayerProvider(scoreSaberAPI ScoreSaberAPI, meter metric.Meter) (PlayerProvider, error) {
	metrics, err := setupScoreSaberPlayerProviderMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	return &scoreSaberPlayerProvider{
		scoreSaberAPI: scoreSaberAPI,

		metrics: metrics,
	}, nil
}

func (s *scoreSaberPlayerProvider) GetPlayer(ctx context.Context, playerID string) (domain.PlayerData, error) {
	if playerID == "" {
		return domain.PlayerData{}, fmt.Errorf("%w: empty player id", domain.ErrFetchFailed)
	}

	playerData, statusCode, err := s.scoreSaberAPI.GetPlayerData(ctx, playerID)
	if err != nil {
		// NOTE: ScoreSaberAPI implementations handle their own error reporting
		return domain.PlayerData{}, fmt.Errorf("failed to get player data: %w", err)
	}

	s.metrics.requestCount.Add(ctx, 1, metric.WithAttributes(attribute.Int("status_code", statusCode)))

	player, err := ScoreSaberResponseToPlayerData(ctx, playerID, statusCode, playerData)
	if err != nil {
		// NOTE: ScoreSaberResponseToPlayerData handles its own error reporting
		return domain.PlayerData{}, fmt.Errorf("failed to convert scoresaber api response to player: %w", err)
	}

	return player, nil
}

type scoreSaberPlayerProviderMetricsCollection struct {
	requestCount metric.Int64Counter
}

func setupScoreSaberPlayerProviderMetrics(meter metric.Meter) (scoreSaberPlayerProviderMetricsCollection, error) {
	requestCount, err := meter.Int64Counter("playerprovider/scoresaber/requests")
	if err != nil {
		return scoreSaberPlayerProviderMetricsCollection{}, fmt.Errorf("failed to create metric: %w", err)
	}

	return scoreSaberPlayerProviderMetricsCollection{
		requestCount: requestCount,
	}, nil
}
