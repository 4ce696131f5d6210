package domaintest

import (
	"github.com/Amund211/saberwatch/internal/domain"
)

type playerBuilder struct {
	player *domain.PlayerData
}

func (pb *playerBuilder) WithName(name string) *playerBuilder {
	pb.player.Name = name
	return pb
}

func (pb *playerBuilder) WithRank(rank int) *playerBuilder {
	pb.player.Rank = rank
	return pb
}

func (pb *playerBuilder) WithPP(pp float64) *playerBuilder {
	pb.player.PP = pp
	return pb
}

func (pb *playerBuilder) WithCountry(country string, countryRank int) *playerBuilder {
	pb.player.Country = country
	pb.player.CountryRank = countryRank
	return pb
}

func (pb *playerBuilder) WithFirstSeen(firstSeen string) *playerBuilder {
	pb.player.FirstSeen = firstSeen
	return pb
}

func (pb *playerBuilder) WithBanned(banned bool) *playerBuilder {
	pb.player.Banned = banned
	return pb
}

func (pb *playerBuilder) WithScoreStats(stats domain.ScoreStats) *playerBuilder {
	pb.player.ScoreStats = stats
	return pb
}

func (pb *playerBuilder) Build() domain.PlayerData {
	return *pb.player
}

func NewPlayerBuilder(id string) *playerBuilder {
	player := &domain.PlayerData{
		ID:             id,
		Name:           "player-" + id,
		ProfilePicture: "https://cdn.scoresaber.com/avatars/" + id + ".jpg",
		Country:        "NO",
		PP:             1234.56,
		Rank:           100,
		CountryRank:    5,
		Histories:      "120,115,110,100",
		ScoreStats: domain.ScoreStats{
			TotalScore:            1_234_567_890,
			TotalRankedScore:      987_654_321,
			AverageRankedAccuracy: 92.345,
			TotalPlayCount:        4321,
			RankedPlayCount:       1234,
			ReplaysWatched:        42,
		},
		FirstSeen: "2021-06-19T12:34:56.000Z",
	}
	return &playerBuilder{
		player: player,
	}
}
