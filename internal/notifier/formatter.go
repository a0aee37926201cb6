package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/aleister1102/scamsiren/internal/models"
)

const (
	colorHigh        = 0xE74C3C
	colorMedium      = 0xF39C12
	colorUnreachable = 0x9B59B6
	colorDefault     = 0x95A5A6
)

func embedColor(c models.Classification) int {
	switch c {
	case models.ClassificationHigh:
		return colorHigh
	case models.ClassificationMedium:
		return colorMedium
	case models.ClassificationUnreachable:
		return colorUnreachable
	default:
		return colorDefault
	}
}

// FormatVerdict builds the webhook payload announcing one verdict.
func FormatVerdict(report models.URLReport, username string, roleIDs []string) DiscordMessagePayload {
	v := report.Verdict

	title := fmt.Sprintf("%s risk: %s", strings.ToUpper(string(v.Classification)), report.OriginalURL)
	description := v.Summary
	if v.Advice != "" {
		description = strings.TrimSpace(description + "\n\n" + v.Advice)
	}

	fields := []DiscordEmbedField{
		{Name: "Score", Value: fmt.Sprintf("%d/100", v.Score), Inline: true},
		{Name: "Source", Value: string(report.SourceTier), Inline: true},
	}
	if report.FinalURL != "" && report.FinalURL != report.OriginalURL {
		fields = append(fields, DiscordEmbedField{
			Name:  fmt.Sprintf("Final URL (%d hop(s))", max(len(report.HopChain)-1, 0)),
			Value: truncate("`"+report.FinalURL+"`", maxEmbedFieldValueLength),
		})
	}
	if len(v.Categories) > 0 {
		fields = append(fields, DiscordEmbedField{Name: "Categories", Value: strings.Join(v.Categories, ", "), Inline: true})
	}
	if len(v.Reasons) > 0 {
		fields = append(fields, DiscordEmbedField{
			Name:  "Reasons",
			Value: truncate("- "+strings.Join(v.Reasons, "\n- "), maxEmbedFieldValueLength),
		})
	}

	timestamp := report.StartedAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	embed := DiscordEmbed{
		Title:       truncate(title, maxEmbedTitleLength),
		Description: truncate(description, maxEmbedDescriptionLength),
		Color:       embedColor(v.Classification),
		Timestamp:   timestamp.UTC().Format(time.RFC3339),
		Fields:      fields,
	}
	if report.BatchID != "" {
		embed.Footer = &DiscordEmbedFooter{Text: "Batch " + report.BatchID}
	}

	payload := DiscordMessagePayload{
		Username: username,
		Embeds:   []DiscordEmbed{embed},
	}
	if len(roleIDs) > 0 {
		mentions := make([]string, len(roleIDs))
		for i, id := range roleIDs {
			mentions[i] = "<@&" + id + ">"
		}
		payload.Content = strings.Join(mentions, " ")
		payload.AllowedMentions = &AllowedMentions{Parse: []string{}, Roles: roleIDs}
	}
	return payload
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return strings.ToValidUTF8(s[:limit-3], "") + "..."
}
