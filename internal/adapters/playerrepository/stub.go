package playerrepository

import (
	"context"

	"github.com/Amund211/saberwatch/internal/domain"
)

type stubPlayerRepository struct{}

func NewStubPlayerRepository() PlayerRepository {
	return &stubPlayerRepository{}
}

func (s *stubPlayerRepository) EnsureSchema(ctx context.Context) error {
	return nil
}

func (s *stubPlayerRepository) UpsertPlayer(ctx context.Context, player domain.PlayerData) error {
	return nil
}

func (s *stubPlayerRepository) ReadAll(ctx context.Context) ([]domain.PlayerData, error) {
	return []domain.PlayerData{}, nil
}
