package playerprovider_test

import (
	"context"
	"testing"

	"github.com/Amund211/saberwatch/internal/adapters/playerprovider"
	"github.com/Amund211/saberwatch/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

const playerID = "76561198000000001"

const aliceResponse = `{
	"id": "76561198000000001",
	"name": "Alice",
	"profilePicture": "",
	"country": "NO",
	"pp": 12.5,
	"rank": 5,
	"countryRank": 1,
	"histories": "",
	"banned": false,
	"inactive": false,
	"scoreStats": {
		"totalScore": 1000,
		"totalRankedScore": 0,
		"averageRankedAccuracy": 0,
		"totalPlayCount": 7,
		"rankedPlayCount": 0,
		"replaysWatched": 0
	},
	"firstSeen": "2024-01-02T00:00:00Z"
}`

type mockedScoreSaberAPI struct {
	t          *testing.T
	data       []byte
	statusCode int
	err        error
	calls      int
}

func (m *mockedScoreSaberAPI) GetPlayerData(ctx context.Context, id string) ([]byte, int, error) {
	m.t.Helper()

	require.Equal(m.t, playerID, id)
	m.calls++

	return m.data, m.statusCode, m.err
}

func newProvider(t *testing.T, api playerprovider.ScoreSaberAPI) playerprovider.PlayerProvider {
	t.Helper()

	provider, err := playerprovider.NewScoreSaberPlayerProvider(api, noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	return provider
}

func TestScoreSaberPlayerProvider(t *testing.T) {
	t.Parallel()

	t.Run("GetPlayer", func(t *testing.T) {
		t.Parallel()

		t.Run("basic", func(t *testing.T) {
			t.Parallel()

			api := &mockedScoreSaberAPI{
				t:          t,
				data:       []byte(aliceResponse),
				statusCode: 200,
			}
			player, err := newProvider(t, api).GetPlayer(t.Context(), playerID)
			require.NoError(t, err)

			require.Equal(t, playerID, player.ID)
			require.Equal(t, "Alice", player.Name)
			require.Equal(t, 5, player.Rank)
			require.Equal(t, int64(1000), player.ScoreStats.TotalScore)
			require.Equal(t, 7, player.ScoreStats.TotalPlayCount)
			require.Equal(t, "2024-01-02", player.FirstSeenDate())
			require.Equal(t, 1, api.calls)
		})

		t.Run("player not found", func(t *testing.T) {
			t.Parallel()

			api := &mockedScoreSaberAPI{
				t:          t,
				data:       []byte(`{"errorMessage":"Player not found"}`),
				statusCode: 404,
			}
			_, err := newProvider(t, api).GetPlayer(t.Context(), playerID)
			require.ErrorIs(t, err, domain.ErrPlayerNotFound)
			require.ErrorIs(t, err, domain.ErrFetchFailed)
		})

		t.Run("server error is temporary", func(t *testing.T) {
			t.Parallel()

			api := &mockedScoreSaberAPI{
				t:          t,
				data:       []byte(`<html>Bad Gateway</html>`),
				statusCode: 502,
			}
			_, err := newProvider(t, api).GetPlayer(t.Context(), playerID)
			require.ErrorIs(t, err, domain.ErrTemporarilyUnavailable)
			require.ErrorIs(t, err, domain.ErrFetchFailed)
		})

		t.Run("api error", func(t *testing.T) {
			t.Parallel()

			api := &mockedScoreSaberAPI{
				t:   t,
				err: assert.AnError,
			}
			_, err := newProvider(t, api).GetPlayer(t.Context(), playerID)
			require.ErrorIs(t, err, assert.AnError)
		})

		t.Run("malformed body", func(t *testing.T) {
			t.Parallel()

			api := &mockedScoreSaberAPI{
				t:          t,
				data:       []byte(`{"id":`),
				statusCode: 200,
			}
			_, err := newProvider(t, api).GetPlayer(t.Context(), playerID)
			require.ErrorIs(t, err, domain.ErrFetchFailed)
			require.NotErrorIs(t, err, domain.ErrTemporarilyUnavailable)
		})

		t.Run("empty id is rejected without a request", func(t *testing.T) {
			t.Parallel()

			api := &mockedScoreSaberAPI{t: t}
			_, err := newProvider(t, api).GetPlayer(t.Context(), "")
			require.ErrorIs(t, err, domain.ErrFetchFailed)
			require.Equal(t, 0, api.calls)
		})
	})
}
