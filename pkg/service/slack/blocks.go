package slack

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/secmon-lab/kujo/pkg/domain/model"
	"github.com/slack-go/slack"
)

// maxDescriptionLength keeps the section text well below the Slack limit of 3000 characters
const maxDescriptionLength = 1500

// GetSeverityEmoji returns emoji based on severity score
func GetSeverityEmoji(score model.Score) string {
	if !score.IsDefined() {
		return "❓"
	}
	switch v := score.Float64(); {
	case v >= 9:
		return "🚨" // Critical
	case v >= model.HighSeverityThreshold:
		return "⚠️" // High
	case v >= 4:
		return "🔶" // Medium
	default:
		return "ℹ️" // Low
	}
}

// formatSeverityText formats severity for display with emoji
func formatSeverityText(c *model.Complaint) string {
	emoji := GetSeverityEmoji(c.SeverityScore)
	switch {
	case c.Severity != "" && c.SeverityScore.IsDefined():
		return fmt.Sprintf("%s %s (%s)", emoji, c.Severity, c.SeverityScore.String())
	case c.Severity != "":
		return fmt.Sprintf("%s %s", emoji, c.Severity)
	case c.SeverityScore.IsDefined():
		return fmt.Sprintf("%s %s", emoji, c.SeverityScore.String())
	default:
		return emoji + " Unknown"
	}
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

// BlockBuilder provides methods to build Slack message blocks
type BlockBuilder struct{}

// NewBlockBuilder creates a new BlockBuilder instance
func NewBlockBuilder() *BlockBuilder {
	return &BlockBuilder{}
}

// BuildComplaintText builds the plain text fallback shown in notifications
func (b *BlockBuilder) BuildComplaintText(c *model.Complaint) string {
	return fmt.Sprintf("New complaint: %s / %s", orDash(c.Category), orDash(c.Severity))
}

// BuildComplaintBlocks builds blocks announcing a submitted complaint. total is the number of
// stored complaints after the submission; zero omits the counter.
func (b *BlockBuilder) BuildComplaintBlocks(c *model.Complaint, total int) []slack.Block {
	description := c.Description
	if len(description) > maxDescriptionLength {
		description = description[:maxDescriptionLength-3] + "..."
	}
	if description == "" {
		description = "_No description_"
	}

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, "*Category:*\n"+orDash(c.Category), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Severity:*\n"+formatSeverityText(c), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Municipality:*\n"+orDash(c.Municipality), false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Submitted by:*\n"+submitter(c), false, false),
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(
				slack.PlainTextType,
				"📝 New complaint",
				false,
				false,
			),
		),
		slack.NewSectionBlock(nil, fields, nil),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(
				slack.MarkdownType,
				description,
				false,
				false,
			),
			nil,
			nil,
		),
	}

	footer := fmt.Sprintf("ID: `%s` | %s", c.ID, c.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"))
	if c.Status.IsKnown() {
		footer = fmt.Sprintf("%s | Status: %s", footer, c.Status)
	}
	if total > 0 {
		footer = fmt.Sprintf("%s | %s complaints on record", footer, humanize.Comma(int64(total)))
	}
	blocks = append(blocks, b.BuildContextBlocks(footer)...)

	return blocks
}

// BuildContextBlocks builds generic context blocks with the given message
func (b *BlockBuilder) BuildContextBlocks(message string) []slack.Block {
	return []slack.Block{
		slack.NewContextBlock(
			"",
			slack.NewTextBlockObject(
				slack.MarkdownType,
				message,
				false,
				false,
			),
		),
	}
}

func submitter(c *model.Complaint) string {
	switch {
	case c.Name != "" && c.Email != "":
		return fmt.Sprintf("%s <mailto:%s|%s>", c.Name, c.Email, c.Email)
	case c.Name != "":
		return c.Name
	case c.Email != "":
		return fmt.Sprintf("<mailto:%s|%s>", c.Email, c.Email)
	default:
		return "Anonymous"
	}
}
