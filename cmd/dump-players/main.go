package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Amund211/saberwatch/internal/adapters/database"
	"github.com/Amund211/saberwatch/internal/adapters/notifier"
	"github.com/Amund211/saberwatch/internal/adapters/playerrepository"
	"github.com/Amund211/saberwatch/internal/config"
	"github.com/Amund211/saberwatch/internal/domain"
	"github.com/Amund211/saberwatch/internal/logging"
	"github.com/jmoiron/sqlx"
	_ "golang.org/x/crypto/x509roots/fallback"
)

type scoreStatsJSON struct {
	TotalScore            int64   `json:"totalScore"`
	TotalRankedScore      int64   `json:"totalRankedScore"`
	AverageRankedAccuracy float64 `json:"averageRankedAccuracy"`
	TotalPlayCount        int     `json:"totalPlayCount"`
	RankedPlayCount       int     `json:"rankedPlayCount"`
	ReplaysWatched        int     `json:"replaysWatched"`
}

type playerJSON struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	ProfilePicture string         `json:"profilePicture"`
	Country        string         `json:"country"`
	PP             float64        `json:"pp"`
	Rank           int            `json:"rank"`
	CountryRank    int            `json:"countryRank"`
	Histories      string         `json:"histories"`
	Banned         bool           `json:"banned"`
	Inactive       bool           `json:"inactive"`
	ScoreStats     scoreStatsJSON `json:"scoreStats"`
	FirstSeen      string         `json:"firstSeen"`
}

func toJSON(player domain.PlayerData) playerJSON {
	return playerJSON{
		ID:             player.ID,
		Name:           player.Name,
		ProfilePicture: player.ProfilePicture,
		Country:        player.Country,
		PP:             player.PP,
		Rank:           player.Rank,
		CountryRank:    player.CountryRank,
		Histories:      player.Histories,
		Banned:         player.Banned,
		Inactive:       player.Inactive,
		ScoreStats: scoreStatsJSON{
			TotalScore:            player.ScoreStats.TotalScore,
			TotalRankedScore:      player.ScoreStats.TotalRankedScore,
			AverageRankedAccuracy: player.ScoreStats.AverageRankedAccuracy,
			TotalPlayCount:        player.ScoreStats.TotalPlayCount,
			RankedPlayCount:       player.ScoreStats.RankedPlayCount,
			ReplaysWatched:        player.ScoreStats.ReplaysWatched,
		},
		FirstSeen: player.FirstSeen,
	}
}

func openDatabase(path, url string) (*sqlx.DB, error) {
	if url != "" {
		return database.NewPostgresDatabase(url)
	}
	return database.NewSQLiteDatabase(path)
}

func main() {
	defaultPath := os.Getenv("DATABASE_PATH")
	if defaultPath == "" {
		defaultPath = config.DEFAULT_DATABASE_PATH
	}

	path := flag.String("db", defaultPath, "path to the sqlite database")
	url := flag.String("postgres", os.Getenv("DATABASE_URL"), "postgres connection string, takes precedence over -db")
	notify := flag.Bool("notify", false, "re-send a notification for every stored player to WEBHOOK_URL")
	flag.Parse()

	ctx := context.Background()

	db, err := openDatabase(*path, *url)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repo := playerrepository.NewSQLPlayerRepository(db)
	players, err := repo.ReadAll(ctx)
	if err != nil {
		log.Fatalf("Failed to read players: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	for _, player := range players {
		if err := encoder.Encode(toJSON(player)); err != nil {
			log.Fatalf("Failed to write player %s: %v", player.ID, err)
		}
	}

	if !*notify {
		return
	}

	limiter, stop := notifier.NewWebhookLimiter()
	defer stop()
	httpClient := &http.Client{Timeout: 10 * time.Second}
	n := notifier.NewWebhookNotifier(httpClient, os.Getenv("WEBHOOK_URL"), limiter)

	// Stdout carries the dump
	ctx = logging.AddToContext(ctx, logging.NewLogger(os.Stderr, "dump-players"))

	failed := 0
	for _, player := range players {
		playerCtx := logging.AddMetaToContext(ctx, slog.String("playerID", player.ID))
		if err := n.Notify(playerCtx, player); err != nil {
			log.Printf("Failed to notify for player %s: %v", player.ID, err)
			failed++
		}
	}
	log.Printf("Sent %d of %d notifications", len(players)-failed, len(players))
}
