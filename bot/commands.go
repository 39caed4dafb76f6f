package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Component custom id prefixes. The session id rides in the custom id so a
// click can be matched back to its ephemeral session.
const (
	customIDPlay   = "tot:play:"
	customIDCancel = "tot:cancel:"
)

// commands returns the guild-scoped slash command set
func commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "point",
			Description: "Manage user points (Manager Role Only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "Choose action: increase, decrease, reset, list",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "increase", Value: "increase"},
						{Name: "decrease", Value: "decrease"},
						{Name: "reset", Value: "reset"},
						{Name: "list", Value: "list"},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Target user (optional for 'list')",
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount of points (for increase/decrease)",
				},
			},
		},
		{
			Name:        "trickortreat",
			Description: "Send Trick or Treat game (Admin Only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to send the game to",
				},
			},
		},
		{
			Name:        "freeplay",
			Description: "Send a free Trick or Treat (one-time only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to send freeplay to",
					Required:    true,
				},
			},
		},
		{
			Name:        "resetfreeplay",
			Description: "Reset freeplay claim",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to reset (blank = reset ALL)",
				},
			},
		},
		{
			Name:        "messagecount",
			Description: "Check your message progress",
		},
		{
			Name:        "pointdisplay",
			Description: "Check your total points",
		},
		{
			Name:        "leaderboard",
			Description: "View point leaderboard (2+ points)",
		},
		{
			Name:        "resetmessages",
			Description: "Reset message count for a user (Admin only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to reset message count for",
					Required:    true,
				},
			},
		},
		{
			Name:        "setchannel",
			Description: "View counted channels (Admin only)",
		},
	}
}

// registerCommands overwrites the guild command set in one call
func (b *Bot) registerCommands(s *discordgo.Session) error {
	cmds := commands()
	_, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, b.cfg.Discord.GuildID, cmds)
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	b.logger.Info().Int("count", len(cmds)).Msg("Registered slash commands")
	return nil
}

// onInteractionCreate routes slash commands and button clicks
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().Name {
		case "point":
			b.handlePoint(s, i)
		case "trickortreat":
			b.handleTrickOrTreat(s, i)
		case "freeplay":
			b.handleFreeplay(s, i)
		case "resetfreeplay":
			b.handleResetFreeplay(s, i)
		case "messagecount":
			b.handleMessageCount(s, i)
		case "pointdisplay":
			b.handlePointDisplay(s, i)
		case "leaderboard":
			b.handleLeaderboard(s, i)
		case "resetmessages":
			b.handleResetMessages(s, i)
		case "setchannel":
			b.handleSetChannel(s, i)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		switch {
		case strings.HasPrefix(customID, customIDPlay):
			b.handlePlayButton(s, i, strings.TrimPrefix(customID, customIDPlay))
		case strings.HasPrefix(customID, customIDCancel):
			b.handleCancelButton(s, i, strings.TrimPrefix(customID, customIDCancel))
		}
	}
}

// optionMap indexes command options by name
func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}
