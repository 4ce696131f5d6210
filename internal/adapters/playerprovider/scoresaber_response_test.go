package playerprovider

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Amund211/saberwatch/internal/domain"
	"github.com/stretchr/testify/require"
)

const fullPlayerResponse = `{
	"id": "76561198000000001",
	"name": "Alice",
	"profilePicture": "https://cdn.scoresaber.com/avatars/76561198000000001.jpg",
	"bio": null,
	"country": "NO",
	"pp": 10432.87,
	"rank": 120,
	"countryRank": 3,
	"role": null,
	"badges": [],
	"histories": "130,128,125,120",
	"scoreStats": {
		"totalScore": 4123456789,
		"totalRankedScore": 1234567890,
		"averageRankedAccuracy": 82.345678,
		"totalPlayCount": 2345,
		"rankedPlayCount": 1234,
		"replaysWatched": 56
	},
	"permissions": 0,
	"banned": false,
	"inactive": false,
	"firstSeen": "2019-05-01T12:34:56.000Z"
}`

var playerKeys = []string{
	"id", "name", "profilePicture", "country", "pp", "rank", "countryRank",
	"histories", "banned", "inactive", "scoreStats", "firstSeen",
}

var scoreStatsKeys = []string{
	"totalScore", "totalRankedScore", "averageRankedAccuracy",
	"totalPlayCount", "rankedPlayCount", "replaysWatched",
}

// playerBody returns a complete response for player "1", changed by modify
func playerBody(t *testing.T, modify func(player map[string]any)) string {
	t.Helper()

	player := map[string]any{
		"id":             "1",
		"name":           "Alice",
		"profilePicture": "https://cdn.scoresaber.com/avatars/1.jpg",
		"country":        "NO",
		"pp":             321.5,
		"rank":           7,
		"countryRank":    2,
		"histories":      "9,8,7",
		"banned":         true,
		"inactive":       false,
		"scoreStats": map[string]any{
			"totalScore":            5,
			"totalRankedScore":      4,
			"averageRankedAccuracy": 91.5,
			"totalPlayCount":        3,
			"rankedPlayCount":       2,
			"replaysWatched":        1,
		},
		"firstSeen": "2024-01-02T00:00:00Z",
	}
	modify(player)

	data, err := json.Marshal(player)
	require.NoError(t, err)
	return string(data)
}

func scoreStatsOf(player map[string]any) map[string]any {
	return player["scoreStats"].(map[string]any)
}

func TestCheckForScoreSaberError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		statusCode  int
		body        string
		wantErr     bool
		notFound    bool
		unavailable bool
	}{
		{name: "ok", statusCode: 200, body: `{}`},
		{name: "ok empty", statusCode: 204, body: ``},
		{name: "html", statusCode: 200, body: `<!DOCTYPE html>`, wantErr: true},
		{name: "not found", statusCode: 404, body: `{}`, wantErr: true, notFound: true},
		{name: "ratelimited", statusCode: 429, body: `{}`, wantErr: true, unavailable: true},
		{name: "internal server error", statusCode: 500, body: `{}`, wantErr: true, unavailable: true},
		{name: "bad gateway html", statusCode: 502, body: `<html>`, wantErr: true, unavailable: true},
		{name: "bad request", statusCode: 400, body: `{}`, wantErr: true},
		{name: "redirect", statusCode: 301, body: ``, wantErr: true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			err := checkForScoreSaberError(c.statusCode, []byte(c.body))
			if !c.wantErr {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, domain.ErrFetchFailed)
			require.Equal(t, c.notFound, errors.Is(err, domain.ErrPlayerNotFound))
			require.Equal(t, c.unavailable, errors.Is(err, domain.ErrTemporarilyUnavailable))
		})
	}
}

func TestScoreSaberResponseToPlayerData(t *testing.T) {
	t.Parallel()

	t.Run("full response", func(t *testing.T) {
		t.Parallel()

		player, err := ScoreSaberResponseToPlayerData(t.Context(), "76561198000000001", 200, []byte(fullPlayerResponse))
		require.NoError(t, err)

		require.Equal(t, domain.PlayerData{
			ID:             "76561198000000001",
			Name:           "Alice",
			ProfilePicture: "https://cdn.scoresaber.com/avatars/76561198000000001.jpg",
			Country:        "NO",
			PP:             10432.87,
			Rank:           120,
			CountryRank:    3,
			Histories:      "130,128,125,120",
			Banned:         false,
			Inactive:       false,
			ScoreStats: domain.ScoreStats{
				TotalScore:            4123456789,
				TotalRankedScore:      1234567890,
				AverageRankedAccuracy: 82.345678,
				TotalPlayCount:        2345,
				RankedPlayCount:       1234,
				ReplaysWatched:        56,
			},
			FirstSeen: "2019-05-01T12:34:56.000Z",
		}, player)
	})

	t.Run("invalid responses", func(t *testing.T) {
		t.Parallel()

		cases := map[string]string{
			"not json":               `not json`,
			"empty":                  ``,
			"null":                   `null`,
			"array":                  `[]`,
			"empty object":           `{}`,
			"empty id":               playerBody(t, func(p map[string]any) { p["id"] = "" }),
			"empty name":             playerBody(t, func(p map[string]any) { p["name"] = "" }),
			"null score stats":       playerBody(t, func(p map[string]any) { p["scoreStats"] = nil }),
			"score stats not object": playerBody(t, func(p map[string]any) { p["scoreStats"] = "1000" }),
			"negative rank":          playerBody(t, func(p map[string]any) { p["rank"] = -1 }),
			"negative pp":            playerBody(t, func(p map[string]any) { p["pp"] = -1 }),
			"accuracy out of range":  playerBody(t, func(p map[string]any) { scoreStatsOf(p)["averageRankedAccuracy"] = 101 }),
			"wrong type":             playerBody(t, func(p map[string]any) { p["id"] = 1 }),
			"fractional play count":  playerBody(t, func(p map[string]any) { scoreStatsOf(p)["totalPlayCount"] = 1.5 }),
			"null pp":                playerBody(t, func(p map[string]any) { p["pp"] = nil }),
			"null banned":            playerBody(t, func(p map[string]any) { p["banned"] = nil }),
			"null total score":       playerBody(t, func(p map[string]any) { scoreStatsOf(p)["totalScore"] = nil }),
			"different player":       playerBody(t, func(p map[string]any) { p["id"] = "2" }),
			"upper case keys":        `{"ID":"1","NAME":"Alice","RANK":7,"SCORESTATS":{"TOTALSCORE":5}}`,
			"exact and folded key":   playerBody(t, func(p map[string]any) { p["RANK"] = 7 }),
		}

		for _, key := range playerKeys {
			cases["missing "+key] = playerBody(t, func(p map[string]any) { delete(p, key) })
			cases["wrong case "+key] = playerBody(t, func(p map[string]any) {
				p[strings.ToUpper(key)] = p[key]
				delete(p, key)
			})
		}
		for _, key := range scoreStatsKeys {
			cases["missing scoreStats."+key] = playerBody(t, func(p map[string]any) { delete(scoreStatsOf(p), key) })
			cases["wrong case scoreStats."+key] = playerBody(t, func(p map[string]any) {
				stats := scoreStatsOf(p)
				stats[strings.ToLower(key)] = stats[key]
				delete(stats, key)
			})
		}

		for name, body := range cases {
			t.Run(name, func(t *testing.T) {
				t.Parallel()

				_, err := ScoreSaberResponseToPlayerData(t.Context(), "1", 200, []byte(body))
				require.ErrorIs(t, err, domain.ErrFetchFailed)
			})
		}
	})

	t.Run("zero values are kept", func(t *testing.T) {
		t.Parallel()

		body := playerBody(t, func(p map[string]any) {
			p["profilePicture"] = ""
			p["country"] = ""
			p["pp"] = 0
			p["rank"] = 0
			p["countryRank"] = 0
			p["histories"] = ""
			p["banned"] = false
			p["inactive"] = false
			p["firstSeen"] = ""
			for _, key := range scoreStatsKeys {
				scoreStatsOf(p)[key] = 0
			}
		})

		player, err := ScoreSaberResponseToPlayerData(t.Context(), "1", 200, []byte(body))
		require.NoError(t, err)
		require.Equal(t, domain.PlayerData{ID: "1", Name: "Alice"}, player)
	})

	t.Run("unknown keys are ignored", func(t *testing.T) {
		t.Parallel()

		body := playerBody(t, func(p map[string]any) {
			p["bio"] = nil
			p["badges"] = []any{}
		})

		player, err := ScoreSaberResponseToPlayerData(t.Context(), "1", 200, []byte(body))
		require.NoError(t, err)
		require.Equal(t, 7, player.Rank)
		require.True(t, player.Banned)
		require.Equal(t, int64(5), player.ScoreStats.TotalScore)
	})

	t.Run("status code is checked before parsing", func(t *testing.T) {
		t.Parallel()

		_, err := ScoreSaberResponseToPlayerData(t.Context(), "76561198000000001", 404, []byte(fullPlayerResponse))
		require.ErrorIs(t, err, domain.ErrPlayerNotFound)
		require.ErrorIs(t, err, domain.ErrFetchFailed)
	})
}
