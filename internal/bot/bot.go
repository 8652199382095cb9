// Package bot wires the tool registry to Discord: cogs become slash
// commands, command options become tool arguments, and tool outputs
// become embeds or file attachments.
package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brokechubb/jakeybot-degen-sub001/internal/config"
	"github.com/brokechubb/jakeybot-degen-sub001/internal/tools"
)

// attachmentFetchTimeout bounds downloading a user-attached reference
// image before it is handed to a tool.
const attachmentFetchTimeout = 30 * time.Second

// maxAttachmentSize caps reference image downloads.
const maxAttachmentSize = 8 << 20 // 8MB

// Bot runs the Discord session and dispatches interactions.
type Bot struct {
	session  *discordgo.Session
	registry *tools.Registry
	guildID  string
	log      *zap.Logger

	httpClient *http.Client
}

// New creates the bot. The registry must already hold every tool.
func New(cfg *config.Config, registry *tools.Registry, log *zap.Logger) (*Bot, error) {
	if err := cfg.ValidateBot(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	b := &Bot{
		session:    session,
		registry:   registry,
		guildID:    cfg.Discord.GuildID,
		log:        log,
		httpClient: &http.Client{Timeout: attachmentFetchTimeout},
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteractionCreate)
	return b, nil
}

// Start opens the gateway connection and syncs slash commands.
// It returns once the bot is serving; Close shuts it down.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	commands := commandsFromRegistry(b.registry)
	synced, err := b.session.ApplicationCommandBulkOverwrite(
		b.session.State.User.ID, b.guildID, commands)
	if err != nil {
		_ = b.session.Close()
		return fmt.Errorf("failed to sync commands: %w", err)
	}

	b.log.Info("commands synced",
		zap.Int("count", len(synced)),
		zap.String("scope", scopeName(b.guildID)))
	return nil
}

// Close tears down the session.
func (b *Bot) Close() error {
	return b.session.Close()
}

func scopeName(guildID string) string {
	if guildID == "" {
		return "global"
	}
	return "guild " + guildID
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("bot ready",
		zap.String("username", r.User.Username),
		zap.Int("guilds", len(r.Guilds)))
}

// onInteractionCreate dispatches one slash command invocation. Handlers
// are independent: no state is shared between in-flight interactions.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()

	reqID := uuid.NewString()[:8]
	log := b.log.With(
		zap.String("req", reqID),
		zap.String("command", data.Name),
		zap.String("guild_id", i.GuildID))

	// Defer immediately: image generation can take up to two minutes.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Error("failed to defer interaction", zap.Error(err))
		return
	}

	args, err := b.buildArgs(i, data)
	if err != nil {
		log.Warn("failed to build arguments", zap.Error(err))
		b.followUpError(s, i, err)
		return
	}

	result, err := b.registry.Dispatch(context.Background(), tools.Request{
		Tool: data.Name,
		Args: args,
	})
	if err != nil {
		// Surface to the user, then log so the failure is not silent.
		b.followUpError(s, i, err)
		log.Error("tool invocation failed", zap.Error(err))
		return
	}

	if err := b.followUp(s, i, result.Output); err != nil {
		log.Error("failed to send response", zap.Error(err))
		return
	}
	log.Info("command handled", zap.Int64("duration_ms", result.DurationMs))
}

// buildArgs converts interaction options into tool arguments, consulting
// the tool's declared schema for array splitting, and injects the
// interaction scope key.
func (b *Bot) buildArgs(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) (map[string]any, error) {
	tool := b.registry.Get(data.Name)
	if tool == nil {
		return nil, fmt.Errorf("%w: %s", tools.ErrToolNotFound, data.Name)
	}

	args := make(map[string]any, len(data.Options)+1)
	for _, opt := range data.Options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionString:
			val := opt.StringValue()
			if prop, ok := tool.Schema.Properties[opt.Name]; ok && prop.Type == "array" {
				args[opt.Name] = splitList(val)
			} else {
				args[opt.Name] = val
			}
		case discordgo.ApplicationCommandOptionInteger:
			args[opt.Name] = opt.IntValue()
		case discordgo.ApplicationCommandOptionNumber:
			args[opt.Name] = opt.FloatValue()
		case discordgo.ApplicationCommandOptionBoolean:
			args[opt.Name] = opt.BoolValue()
		case discordgo.ApplicationCommandOptionAttachment:
			att := resolveAttachment(i, opt)
			if att == nil {
				return nil, fmt.Errorf("attachment %s could not be resolved", opt.Name)
			}
			payload, err := b.fetchAttachment(att.URL)
			if err != nil {
				return nil, fmt.Errorf("failed to download attachment: %w", err)
			}
			args["reference_image"] = payload
			args["reference_mime"] = att.ContentType
		}
	}

	args["guild_id"] = scopeKey(i)
	return args, nil
}

// scopeKey is the storage key for the interaction: the guild for server
// channels, the user for DMs.
func scopeKey(i *discordgo.InteractionCreate) string {
	if i.GuildID != "" {
		return i.GuildID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func resolveAttachment(i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) *discordgo.MessageAttachment {
	id, ok := opt.Value.(string)
	if !ok {
		return nil
	}
	resolved := i.ApplicationCommandData().Resolved
	if resolved == nil {
		return nil
	}
	return resolved.Attachments[id]
}

func (b *Bot) fetchAttachment(url string) ([]byte, error) {
	resp, err := b.httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attachment fetch returned status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxAttachmentSize))
}

func (b *Bot) followUp(s *discordgo.Session, i *discordgo.InteractionCreate, out *tools.Output) error {
	params := followUpParams(out)
	_, err := s.FollowupMessageCreate(i.Interaction, true, params)
	return err
}

func (b *Bot) followUpError(s *discordgo.Session, i *discordgo.InteractionCreate, dispatchErr error) {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: errorMessage(dispatchErr),
	})
	if err != nil {
		b.log.Error("failed to send error response", zap.Error(err))
	}
}
