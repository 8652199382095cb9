package bot

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/brokechubb/jakeybot-degen-sub001/internal/tools"
)

// embedColor is the accent used on every result embed.
const embedColor = 0x5865F2

// followUpParams renders a tool output as a followup message: text and
// fields become an embed, a file becomes an attachment.
func followUpParams(out *tools.Output) *discordgo.WebhookParams {
	params := &discordgo.WebhookParams{}
	if out == nil {
		params.Content = "Done."
		return params
	}

	if out.Text != "" || len(out.Fields) > 0 {
		params.Embeds = []*discordgo.MessageEmbed{buildEmbed(out)}
	}

	if out.File != nil {
		params.Files = []*discordgo.File{{
			Name:        out.File.Name,
			ContentType: out.File.ContentType,
			Reader:      bytes.NewReader(out.File.Data),
		}}
	}

	if len(params.Embeds) == 0 && len(params.Files) == 0 {
		params.Content = "Done."
	}
	return params
}

func buildEmbed(out *tools.Output) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Description: out.Text,
		Color:       embedColor,
	}
	for _, f := range out.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return embed
}

// errorMessage turns a dispatch failure into a user-facing string.
// Configuration gaps get a distinct message so server admins know the
// tool is unconfigured rather than broken.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, tools.ErrMissingConfig):
		return "⚠️ This tool is not configured on this bot instance."
	case errors.Is(err, tools.ErrToolNotFound):
		return "⚠️ Unknown command."
	case errors.Is(err, tools.ErrMissingRequiredArg), errors.Is(err, tools.ErrInvalidArgType):
		return fmt.Sprintf("⚠️ Invalid arguments: %v", err)
	default:
		return fmt.Sprintf("⚠️ %v", err)
	}
}
