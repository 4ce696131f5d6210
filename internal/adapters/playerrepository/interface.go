package playerrepository

import (
	"context"

	"github.com/Amund211/saberwatch/internal/domain"
)

// All errors wrap domain.ErrStoreFailed
type PlayerRepository interface {
	// EnsureSchema creates the players table if needed. Safe to call repeatedly.
	EnsureSchema(ctx context.Context) error

	// UpsertPlayer inserts the player, or replaces every field of the row with the same id
	UpsertPlayer(ctx context.Context, player domain.PlayerData) error

	// ReadAll returns every stored player, in no particular order
	ReadAll(ctx context.Context) ([]domain.PlayerData, error)
}
