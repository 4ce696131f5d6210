package playerrepository

import (
	"context"
	"fmt"

	"github.com/Amund211/saberwatch/internal/adapters/database"
	"github.com/Amund211/saberwatch/internal/domain"
	"github.com/Amund211/saberwatch/internal/logging"
	"github.com/Amund211/saberwatch/internal/reporting"
	"github.com/jmoiron/sqlx"
)

type SQLPlayerRepository struct {
	db *sqlx.DB
}

func NewSQLPlayerRepository(db *sqlx.DB) *SQLPlayerRepository {
	return &SQLPlayerRepository{db: db}
}

type dbPlayer struct {
	ID                    string  `db:"id"`
	Name                  string  `db:"name"`
	ProfilePicture        string  `db:"profile_picture"`
	Country               string  `db:"country"`
	PP                    float64 `db:"pp"`
	Rank                  int     `db:"rank"`
	CountryRank           int     `db:"country_rank"`
	Histories             string  `db:"histories"`
	Banned                bool    `db:"banned"`
	Inactive              bool    `db:"inactive"`
	TotalScore            int64   `db:"total_score"`
	TotalRankedScore      int64   `db:"total_ranked_score"`
	AverageRankedAccuracy float64 `db:"average_ranked_accuracy"`
	TotalPlayCount        int     `db:"total_play_count"`
	RankedPlayCount       int     `db:"ranked_play_count"`
	ReplaysWatched        int     `db:"replays_watched"`
	FirstSeen             string  `db:"first_seen"`
}

func playerToDB(player domain.PlayerData) dbPlayer {
	return dbPlayer{
		ID:                    player.ID,
		Name:                  player.Name,
		ProfilePicture:        player.ProfilePicture,
		Country:               player.Country,
		PP:                    player.PP,
		Rank:                  player.Rank,
		CountryRank:           player.CountryRank,
		Histories:             player.Histories,
		Banned:                player.Banned,
		Inactive:              player.Inactive,
		TotalScore:            player.ScoreStats.TotalScore,
		TotalRankedScore:      player.ScoreStats.TotalRankedScore,
		AverageRankedAccuracy: player.ScoreStats.AverageRankedAccuracy,
		TotalPlayCount:        player.ScoreStats.TotalPlayCount,
		RankedPlayCount:       player.ScoreStats.RankedPlayCount,
		ReplaysWatched:        player.ScoreStats.ReplaysWatched,
		FirstSeen:             player.FirstSeen,
	}
}

func dbToPlayer(row dbPlayer) domain.PlayerData {
	return domain.PlayerData{
		ID:             row.ID,
		Name:           row.Name,
		ProfilePicture: row.ProfilePicture,
		Country:        row.Country,
		PP:             row.PP,
		Rank:           row.Rank,
		CountryRank:    row.CountryRank,
		Histories:      row.Histories,
		Banned:         row.Banned,
		Inactive:       row.Inactive,
		ScoreStats: domain.ScoreStats{
			TotalScore:            row.TotalScore,
			TotalRankedScore:      row.TotalRankedScore,
			AverageRankedAccuracy: row.AverageRankedAccuracy,
			TotalPlayCount:        row.TotalPlayCount,
			RankedPlayCount:       row.RankedPlayCount,
			ReplaysWatched:        row.ReplaysWatched,
		},
		FirstSeen: row.FirstSeen,
	}
}

func (r *SQLPlayerRepository) EnsureSchema(ctx context.Context) error {
	err := database.NewDatabaseMigrator(r.db, logging.FromContext(ctx)).Migrate(ctx)
	if err != nil {
		err := fmt.Errorf("%w: failed to ensure schema: %w", domain.ErrStoreFailed, err)
		reporting.Report(ctx, err)
		return err
	}
	return nil
}

const upsertPlayerQuery = `INSERT INTO players (
	id, name, profile_picture, country, pp, rank, country_rank, histories, banned, inactive,
	total_score, total_ranked_score, average_ranked_accuracy, total_play_count, ranked_play_count,
	replays_watched, first_seen
) VALUES (
	:id, :name, :profile_picture, :country, :pp, :rank, :country_rank, :histories, :banned, :inactive,
	:total_score, :total_ranked_score, :average_ranked_accuracy, :total_play_count, :ranked_play_count,
	:replays_watched, :first_seen
)
ON CONFLICT (id) DO UPDATE SET
	name = excluded.name,
	profile_picture = excluded.profile_picture,
	country = excluded.country,
	pp = excluded.pp,
	rank = excluded.rank,
	country_rank = excluded.country_rank,
	histories = excluded.histories,
	banned = excluded.banned,
	inactive = excluded.inactive,
	total_score = excluded.total_score,
	total_ranked_score = excluded.total_ranked_score,
	average_ranked_accuracy = excluded.average_ranked_accuracy,
	total_play_count = excluded.total_play_count,
	ranked_play_count = excluded.ranked_play_count,
	replays_watched = excluded.replays_watched,
	first_seen = excluded.first_seen`

func (r *SQLPlayerRepository) UpsertPlayer(ctx context.Context, player domain.PlayerData) error {
	if player.ID == "" {
		err := fmt.Errorf("%w: player id is empty", domain.ErrStoreFailed)
		reporting.Report(ctx, err)
		return err
	}

	_, err := r.db.NamedExecContext(ctx, upsertPlayerQuery, playerToDB(player))
	if err != nil {
		err := fmt.Errorf("%w: failed to upsert player: %w", domain.ErrStoreFailed, err)
		reporting.Report(ctx, err, map[string]string{
			"playerID": player.ID,
		})
		return err
	}

	return nil
}

func (r *SQLPlayerRepository) ReadAll(ctx context.Context) ([]domain.PlayerData, error) {
	stmt, err := r.db.PreparexContext(ctx, "SELECT * FROM players")
	if err != nil {
		err := fmt.Errorf("%w: failed to prepare read: %w", domain.ErrStoreFailed, err)
		reporting.Report(ctx, err)
		return nil, err
	}
	defer stmt.Close()

	var rows []dbPlayer
	err = stmt.SelectContext(ctx, &rows)
	if err != nil {
		err := fmt.Errorf("%w: failed to read players: %w", domain.ErrStoreFailed, err)
		reporting.Report(ctx, err)
		return nil, err
	}

	players := make([]domain.PlayerData, 0, len(rows))
	for _, row := range rows {
		players = append(players, dbToPlayer(row))
	}

	return players, nil
}
