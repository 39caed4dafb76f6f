package bot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/Digital-Creators-Team/trick-or-treat-bot/claim"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/config"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/game"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/ledger"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/progress"
)

// Bot is the interaction front door: it owns the gateway session, routes
// commands and button clicks to the core services, and renders every
// user-facing message. The core never sees platform identities beyond the
// numeric user id.
type Bot struct {
	session   *discordgo.Session
	cfg       *config.Config
	store     *ledger.Store
	gate      *claim.Gate
	converter *progress.Converter
	notifier  *progress.Notifier
	manager   *game.Manager
	logger    zerolog.Logger
}

// New wires the bot against the core services
func New(cfg *config.Config, store *ledger.Store, gate *claim.Gate, converter *progress.Converter, notifier *progress.Notifier, manager *game.Manager, logger zerolog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	b := &Bot{
		session:   session,
		cfg:       cfg,
		store:     store,
		gate:      gate,
		converter: converter,
		notifier:  notifier,
		manager:   manager,
		logger:    logger.With().Str("component", "bot").Logger(),
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteractionCreate)
	session.AddHandler(b.onMessageCreate)

	return b, nil
}

// Run opens the gateway connection and blocks until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord connection: %w", err)
	}
	defer func() { _ = b.session.Close() }()

	go b.announceAwards(ctx)

	b.logger.Info().Msg("Bot is running")
	<-ctx.Done()
	b.logger.Info().Msg("Shutting down")
	return nil
}

// Session exposes the gateway session, for the health surface
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// onReady registers the guild-scoped slash commands
func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info().
		Str("username", event.User.Username).
		Str("guild_id", b.cfg.Discord.GuildID).
		Msg("Logged in")

	if err := b.registerCommands(s); err != nil {
		b.logger.Error().Err(err).Msg("Failed to register slash commands")
	}
}

// announceAwards posts the congratulation embed for each progress award.
// The point has already been credited when the award arrives.
func (b *Bot) announceAwards(ctx context.Context) {
	awards, cancel := b.notifier.Listen(ctx)
	defer cancel()

	for award := range awards {
		embed := &discordgo.MessageEmbed{
			Title: "🎉 Congratulations!",
			Description: fmt.Sprintf("<@%d> reached **%d** messages and earned **1 point**!",
				award.UserID, award.Threshold),
			Color: colorGold,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Total Points", Value: fmt.Sprintf("**%d** points", award.TotalPoints)},
			},
			Footer: &discordgo.MessageEmbedFooter{Text: "Keep chatting to earn more points!"},
		}
		if _, err := b.session.ChannelMessageSendEmbed(award.ChannelID, embed); err != nil {
			b.logger.Warn().Err(err).Int64("user_id", award.UserID).Msg("Failed to announce award")
		}
	}
}

// isAdmin reports whether the interaction member has the Administrator
// permission
func isAdmin(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

// hasManagerRole reports whether the member carries the configured point
// manager role. This is a role id check, deliberately not an admin check.
func (b *Bot) hasManagerRole(i *discordgo.InteractionCreate) bool {
	if i.Member == nil || b.cfg.Discord.ManagerRoleID == "" {
		return false
	}
	return lo.Contains(i.Member.Roles, b.cfg.Discord.ManagerRoleID)
}

// parseUserID converts a snowflake into the opaque numeric id the ledger
// is keyed by
func parseUserID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// memberID returns the numeric id of the interaction member
func memberID(i *discordgo.InteractionCreate) (int64, error) {
	if i.Member == nil || i.Member.User == nil {
		return 0, fmt.Errorf("interaction has no member")
	}
	return parseUserID(i.Member.User.ID)
}
