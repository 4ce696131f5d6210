package domain

// PlayerData is one snapshot of a player's statistics, identified by ID
type PlayerData struct {
	ID             string
	Name           string
	ProfilePicture string
	Country        string

	PP          float64
	Rank        int
	CountryRank int

	// Opaque, passed through as received
	Histories string

	Banned   bool
	Inactive bool

	ScoreStats ScoreStats

	// ISO-8601 date-time as received
	FirstSeen string
}

type ScoreStats struct {
	TotalScore            int64
	TotalRankedScore      int64
	AverageRankedAccuracy float64
	TotalPlayCount        int
	RankedPlayCount       int
	ReplaysWatched        int
}

// FirstSeenDate returns the calendar date part of FirstSeen
func (p *PlayerData) FirstSeenDate() string {
	if len(p.FirstSeen) <= 10 {
		return p.FirstSeen
	}
	return p.FirstSeen[:10]
}
