package notifier

import (
	"fmt"
	"strings"

	"github.com/Amund211/saberwatch/internal/domain"
	"github.com/Amund211/saberwatch/internal/strutils"
)

const EMBED_COLOR = 16768538

// Zero width space. Discord rejects fields with empty names or values.
const spacerText = "\u200b"

type WebhookPayload struct {
	Embeds []Embed `json:"embeds"`
}

type Embed struct {
	Author EmbedAuthor  `json:"author"`
	Color  int          `json:"color"`
	Fields []EmbedField `json:"fields"`
}

type EmbedAuthor struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

func inlineField(name, value string) EmbedField {
	return EmbedField{Name: name, Value: value, Inline: true}
}

// Forces a line break so each row holds two values
func spacerField() EmbedField {
	return inlineField(spacerText, spacerText)
}

func profileValue(player domain.PlayerData) string {
	return fmt.Sprintf(
		":flag_%s: #%d (%s)\nFirst seen %s",
		strings.ToLower(player.Country),
		player.CountryRank,
		player.Country,
		player.FirstSeenDate(),
	)
}

// BuildPayload renders the embed posted for player
func BuildPayload(player domain.PlayerData) WebhookPayload {
	stats := player.ScoreStats

	return WebhookPayload{
		Embeds: []Embed{
			{
				Author: EmbedAuthor{
					Name:    fmt.Sprintf("%s #%d", player.Name, player.Rank),
					IconURL: player.ProfilePicture,
				},
				Color: EMBED_COLOR,
				Fields: []EmbedField{
					{Name: "Profile", Value: profileValue(player), Inline: false},

					inlineField("Total Score", strutils.FormatThousands(stats.TotalScore)),
					inlineField("Total Ranked Score", strutils.FormatThousands(stats.TotalRankedScore)),
					spacerField(),

					inlineField("Average Ranked Accuracy", fmt.Sprintf("%.2f%%", stats.AverageRankedAccuracy)),
					inlineField("Performance Points", fmt.Sprintf("%.2fpp", player.PP)),
					spacerField(),

					inlineField("Ranked Play Count", strutils.FormatThousands(int64(stats.RankedPlayCount))),
					inlineField("Total Play Count", strutils.FormatThousands(int64(stats.TotalPlayCount))),
				},
			},
		},
	}
}
