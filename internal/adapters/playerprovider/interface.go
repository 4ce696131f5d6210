package playerprovider

import (
	"context"

	"github.com/Amund211/saberwatch/internal/domain"
)

type PlayerProvider interface {
	// All errors wrap domain.ErrFetchFailed
	//
	// Raises domain.ErrPlayerNotFound if the upstream has no player with the given id
	//
	// Raises domain.ErrTemporarilyUnavailable if the provider implementation receives an error believed to be intermittent. The call may be retried later.
	GetPlayer(ctx context.Context, playerID string) (domain.PlayerData, error)
}
