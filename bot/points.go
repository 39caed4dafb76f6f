package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"

	"github.com/Digital-Creators-Team/trick-or-treat-bot/ledger"
)

// handlePoint implements /point action user amount. Gated on the configured
// manager role id, not on the Administrator permission.
func (b *Bot) handlePoint(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.hasManagerRole(i) {
		b.respondText(s, i, "❌ You don't have the required role to manage points!", true)
		return
	}

	ctx := context.Background()
	opts := optionMap(i)
	action := strings.ToLower(opts["action"].StringValue())

	var target *discordgo.User
	if opt, ok := opts["user"]; ok {
		target = opt.UserValue(s)
	}

	if action == "list" {
		b.handlePointList(ctx, s, i, target)
		return
	}

	if target == nil {
		b.respondText(s, i, "Please mention a user!", true)
		return
	}
	targetID, err := parseUserID(target.ID)
	if err != nil {
		b.respondText(s, i, "Please mention a user!", true)
		return
	}

	var amount int
	if opt, ok := opts["amount"]; ok {
		amount = int(opt.IntValue())
	}

	admin := i.Member.User.Username

	switch action {
	case "increase":
		if amount <= 0 {
			b.respondText(s, i, "Please provide a valid amount!", true)
			return
		}
		if err := b.store.AddPoints(ctx, targetID, amount); err != nil {
			b.respondError(s, i, err)
			return
		}
		points, err := b.store.GetPoints(ctx, targetID)
		if err != nil {
			b.respondError(s, i, err)
			return
		}
		b.logger.Info().Str("admin", admin).Int64("user_id", targetID).Int("amount", amount).Int("total", points).Msg("Points added")
		b.respondText(s, i, fmt.Sprintf("Added **%d** points to %s! They now have **%d** points.", amount, target.Mention(), points), false)

	case "decrease":
		if amount <= 0 {
			b.respondText(s, i, "Please provide a valid amount!", true)
			return
		}
		if err := b.store.RemovePoints(ctx, targetID, amount); err != nil {
			b.respondError(s, i, err)
			return
		}
		points, err := b.store.GetPoints(ctx, targetID)
		if err != nil {
			b.respondError(s, i, err)
			return
		}
		b.logger.Info().Str("admin", admin).Int64("user_id", targetID).Int("amount", amount).Int("total", points).Msg("Points removed")
		b.respondText(s, i, fmt.Sprintf("Removed **%d** points from %s! They now have **%d** points.", amount, target.Mention(), points), false)

	case "reset":
		if err := b.store.ResetPoints(ctx, targetID); err != nil {
			b.respondError(s, i, err)
			return
		}
		b.logger.Info().Str("admin", admin).Int64("user_id", targetID).Msg("Points reset")
		b.respondText(s, i, fmt.Sprintf("Reset points for %s. They now have **0** points.", target.Mention()), false)

	default:
		b.respondText(s, i, "Unknown action! Use increase, decrease, reset, or list.", true)
	}
}

// handlePointList renders a single balance or the full listing
func (b *Bot) handlePointList(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, target *discordgo.User) {
	if target != nil {
		targetID, err := parseUserID(target.ID)
		if err != nil {
			b.respondText(s, i, "Please mention a user!", true)
			return
		}
		points, err := b.store.GetPoints(ctx, targetID)
		if err != nil {
			b.respondError(s, i, err)
			return
		}
		b.respondEmbed(s, i, &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("Points for %s", target.Username),
			Description: fmt.Sprintf("**%d** points", points),
			Color:       colorOrange,
		}, false)
		return
	}

	entries, err := b.store.AllPoints(ctx)
	if err != nil {
		b.respondError(s, i, err)
		return
	}
	if len(entries) == 0 {
		b.respondText(s, i, "No users have points yet.", false)
		return
	}

	fields := lo.Map(lo.Slice(entries, 0, 10), func(e ledger.Entry, _ int) *discordgo.MessageEmbedField {
		return &discordgo.MessageEmbedField{
			Name:  displayName(s, b.cfg.Discord.GuildID, e.UserID),
			Value: fmt.Sprintf("%d points", e.Points),
		}
	})

	b.respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:  "All User Points",
		Color:  colorOrange,
		Fields: fields,
	}, false)
}

// displayName resolves a ledger user id back to a guild display name,
// falling back to the raw id when the member is gone
func displayName(s *discordgo.Session, guildID string, userID int64) string {
	id := fmt.Sprintf("%d", userID)
	member, err := s.State.Member(guildID, id)
	if err != nil || member == nil {
		member, err = s.GuildMember(guildID, id)
		if err != nil || member == nil {
			return fmt.Sprintf("User %d", userID)
		}
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User != nil {
		return member.User.Username
	}
	return fmt.Sprintf("User %d", userID)
}
