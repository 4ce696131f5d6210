package playerprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Amund211/saberwatch/internal/domain"
	"github.com/Amund211/saberwatch/internal/logging"
	"github.com/Amund211/saberwatch/internal/reporting"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var scoreSaberPlayerKeys = []string{
	"id", "name", "profilePicture", "country", "pp", "rank", "countryRank",
	"histories", "banned", "inactive", "scoreStats", "firstSeen",
}

var scoreSaberScoreStatsKeys = []string{
	"totalScore", "totalRankedScore", "averageRankedAccuracy",
	"totalPlayCount", "rankedPlayCount", "replaysWatched",
}

// Pointers tell an absent key apart from a zero value
type scoreSaberPlayerResponse struct {
	ID             *string               `json:"id" validate:"required,min=1"`
	Name           *string               `json:"name" validate:"required,min=1"`
	ProfilePicture *string               `json:"profilePicture" validate:"required"`
	Country        *string               `json:"country" validate:"required"`
	PP             *float64              `json:"pp" validate:"required,gte=0"`
	Rank           *int                  `json:"rank" validate:"required,gte=0"`
	CountryRank    *int                  `json:"countryRank" validate:"required,gte=0"`
	Histories      *string               `json:"histories" validate:"required"`
	Banned         *bool                 `json:"banned" validate:"required"`
	Inactive       *bool                 `json:"inactive" validate:"required"`
	ScoreStats     *scoreSaberScoreStats `json:"scoreStats" validate:"required"`
	FirstSeen      *string               `json:"firstSeen" validate:"required"`
}

type scoreSaberScoreStats struct {
	TotalScore            *int64   `json:"totalScore" validate:"required,gte=0"`
	TotalRankedScore      *int64   `json:"totalRankedScore" validate:"required,gte=0"`
	AverageRankedAccuracy *float64 `json:"averageRankedAccuracy" validate:"required,gte=0,lte=100"`
	TotalPlayCount        *int     `json:"totalPlayCount" validate:"required,gte=0"`
	RankedPlayCount       *int     `json:"rankedPlayCount" validate:"required,gte=0"`
	ReplaysWatched        *int     `json:"replaysWatched" validate:"required,gte=0"`
}

// checkExactKeys requires every key to be present with its exact casing.
// json.Unmarshal into a struct matches keys case-insensitively.
func checkExactKeys(data []byte, keys []string) (map[string]json.RawMessage, error) {
	var object map[string]json.RawMessage
	err := json.Unmarshal(data, &object)
	if err != nil {
		return nil, err
	}
	if object == nil {
		return nil, fmt.Errorf("expected an object, got null")
	}

	for key := range object {
		for _, expected := range keys {
			if key != expected && strings.EqualFold(key, expected) {
				return nil, fmt.Errorf("key %q does not match %q", key, expected)
			}
		}
	}
	for _, expected := range keys {
		if _, ok := object[expected]; !ok {
			return nil, fmt.Errorf("missing key %q", expected)
		}
	}
	return object, nil
}

func checkForScoreSaberError(statusCode int, playerData []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		if len(playerData) > 0 && playerData[0] == '<' {
			return fmt.Errorf("%w: ScoreSaber API returned HTML", domain.ErrFetchFailed)
		}
		return nil
	}

	switch {
	case statusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w", domain.ErrFetchFailed, domain.ErrPlayerNotFound)
	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: ScoreSaber ratelimit exceeded (%w)", domain.ErrFetchFailed, domain.ErrTemporarilyUnavailable)
	case statusCode >= 500:
		return fmt.Errorf("%w: ScoreSaber returned status code %d (%s) (%w)", domain.ErrFetchFailed, statusCode, http.StatusText(statusCode), domain.ErrTemporarilyUnavailable)
	}
	return fmt.Errorf("%w: ScoreSaber returned status code %d (%s)", domain.ErrFetchFailed, statusCode, http.StatusText(statusCode))
}

func parseScoreSaberPlayer(data []byte) (*scoreSaberPlayerResponse, error) {
	object, err := checkExactKeys(data, scoreSaberPlayerKeys)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse player data: %w", domain.ErrFetchFailed, err)
	}
	_, err = checkExactKeys(object["scoreStats"], scoreSaberScoreStatsKeys)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse player score stats: %w", domain.ErrFetchFailed, err)
	}

	var response scoreSaberPlayerResponse
	err = json.Unmarshal(data, &response)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse player data: %w", domain.ErrFetchFailed, err)
	}

	err = validate.Struct(&response)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid player data: %w", domain.ErrFetchFailed, err)
	}

	return &response, nil
}

func ScoreSaberResponseToPlayerData(ctx context.Context, playerID string, statusCode int, playerData []byte) (domain.PlayerData, error) {
	logger := logging.FromContext(ctx)

	err := checkForScoreSaberError(statusCode, playerData)
	if err != nil {
		logger.ErrorContext(ctx, "Got response from ScoreSaber", "status", "error", "error", err.Error(), "statusCode", statusCode)
		return domain.PlayerData{}, err
	}

	response, err := parseScoreSaberPlayer(playerData)
	if err != nil {
		logger.ErrorContext(ctx, err.Error(), "statusCode", statusCode, "length", len(playerData))
		reporting.Report(ctx, err, map[string]string{
			"statusCode": fmt.Sprint(statusCode),
			"data":       string(playerData),
		})
		return domain.PlayerData{}, err
	}

	if *response.ID != playerID {
		err := fmt.Errorf("%w: requested player %s, got %s", domain.ErrFetchFailed, playerID, *response.ID)
		logger.ErrorContext(ctx, err.Error())
		reporting.Report(ctx, err)
		return domain.PlayerData{}, err
	}

	stats := response.ScoreStats
	return domain.PlayerData{
		ID:             *response.ID,
		Name:           *response.Name,
		ProfilePicture: *response.ProfilePicture,
		Country:        *response.Country,
		PP:             *response.PP,
		Rank:           *response.Rank,
		CountryRank:    *response.CountryRank,
		Histories:      *response.Histories,
		Banned:         *response.Banned,
		Inactive:       *response.Inactive,
		ScoreStats: domain.ScoreStats{
			TotalScore:            *stats.TotalScore,
			TotalRankedScore:      *stats.TotalRankedScore,
			AverageRankedAccuracy: *stats.AverageRankedAccuracy,
			TotalPlayCount:        *stats.TotalPlayCount,
			RankedPlayCount:       *stats.RankedPlayCount,
			ReplaysWatched:        *stats.ReplaysWatched,
		},
		FirstSeen: *response.FirstSeen,
	}, nil
}
