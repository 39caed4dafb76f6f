package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"

	"github.com/Digital-Creators-Team/trick-or-treat-bot/ledger"
)

// onMessageCreate feeds qualifying messages into the progress converter and
// routes the unlisted prefix command
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	if strings.HasPrefix(m.Content, "!secretdragon") {
		b.handleSecretDragon(s, m)
		return
	}

	if !b.converter.Counts(m.ChannelID) {
		return
	}

	userID, err := parseUserID(m.Author.ID)
	if err != nil {
		return
	}

	if _, err := b.converter.Record(context.Background(), userID, m.ChannelID); err != nil {
		b.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to record message")
	}
}

// handleMessageCount implements /messagecount
func (b *Bot) handleMessageCount(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID, err := memberID(i)
	if err != nil {
		return
	}

	ctx := context.Background()
	count, threshold, err := b.converter.Progress(ctx, userID)
	if err != nil {
		b.respondError(s, i, err)
		return
	}
	points, err := b.store.GetPoints(ctx, userID)
	if err != nil {
		b.respondError(s, i, err)
		return
	}

	percent := float64(count) / float64(threshold) * 100
	bar := progressBar(percent)

	embed := &discordgo.MessageEmbed{
		Title: "📊 Your Message Stats",
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Progress to Next Point",
				Value: fmt.Sprintf("%s %.1f%%\n**%d/%d** messages", bar, percent, count, threshold),
			},
			{Name: "📝 Messages Remaining", Value: fmt.Sprintf("**%d** more", threshold-count), Inline: true},
			{Name: "🎯 Total Points", Value: fmt.Sprintf("**%d** points", points), Inline: true},
		},
	}
	b.respondEmbed(s, i, embed, false)
}

// progressBar renders a 20-segment bar for a percentage
func progressBar(percent float64) string {
	filled := int(percent / 5)
	if filled > 20 {
		filled = 20
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)
}

// handlePointDisplay implements /pointdisplay
func (b *Bot) handlePointDisplay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID, err := memberID(i)
	if err != nil {
		return
	}

	points, err := b.store.GetPoints(context.Background(), userID)
	if err != nil {
		b.respondError(s, i, err)
		return
	}

	b.respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "🎯 Your Points",
		Description: fmt.Sprintf("You currently have **%d** points!", points),
		Color:       colorGreen,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Earn more by sending messages in counted channels!"},
	}, false)
}

// handleLeaderboard implements /leaderboard: users with 2+ points, top 10
func (b *Bot) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	entries, err := b.store.AllPoints(context.Background())
	if err != nil {
		b.respondError(s, i, err)
		return
	}

	ranked := lo.Filter(entries, func(e ledger.Entry, _ int) bool {
		return e.Points >= 2
	})
	if len(ranked) == 0 {
		b.respondText(s, i, "No one has 2+ points yet!", true)
		return
	}

	medals := []string{"🥇", "🥈", "🥉"}
	fields := lo.Map(lo.Slice(ranked, 0, 10), func(e ledger.Entry, idx int) *discordgo.MessageEmbedField {
		medal := fmt.Sprintf("#%d", idx+1)
		if idx < len(medals) {
			medal = medals[idx]
		}
		return &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s %s", medal, displayName(s, b.cfg.Discord.GuildID, e.UserID)),
			Value: fmt.Sprintf("🎯 **%d** points", e.Points),
		}
	})

	b.respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "🏆 Point Leaderboard",
		Description: "Users with 2+ points (highest to lowest)",
		Color:       colorGold,
		Fields:      fields,
	}, false)
}

// handleResetMessages implements /resetmessages user (Admin only)
func (b *Bot) handleResetMessages(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		b.respondText(s, i, "You don't have permission to use this command!", true)
		return
	}

	opt, ok := optionMap(i)["user"]
	if !ok {
		b.respondText(s, i, "Please mention a user!", true)
		return
	}
	target := opt.UserValue(s)
	targetID, err := parseUserID(target.ID)
	if err != nil {
		b.respondText(s, i, "Please mention a user!", true)
		return
	}

	if err := b.store.ResetMessageCount(context.Background(), targetID); err != nil {
		b.respondError(s, i, err)
		return
	}
	b.logger.Info().Str("admin", i.Member.User.Username).Int64("user_id", targetID).Msg("Message count reset")
	b.respondText(s, i, fmt.Sprintf("✅ Reset message count for %s", target.Mention()), true)
}

// handleSetChannel implements /setchannel: lists the counted channels
func (b *Bot) handleSetChannel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		b.respondText(s, i, "You don't have permission to use this command!", true)
		return
	}

	channels := b.converter.Channels()
	var lines []string
	if len(channels) == 0 {
		lines = []string{"• All channels are counted"}
	} else {
		lines = lo.Map(channels, func(id string, _ int) string {
			if ch, err := s.State.Channel(id); err == nil && ch != nil {
				return fmt.Sprintf("• <#%s>", ch.ID)
			}
			return fmt.Sprintf("• Unknown Channel (ID: %s)", id)
		})
	}

	b.respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "📢 Counted Channels",
		Description: "Messages are counted in these channels:\n\n" + strings.Join(lines, "\n"),
		Color:       colorGreen,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Every %d messages = 1 point", b.converter.Threshold())},
	}, true)
}
