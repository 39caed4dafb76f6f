package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"

	"github.com/Digital-Creators-Team/trick-or-treat-bot/errors"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/game"
	"github.com/Digital-Creators-Team/trick-or-treat-bot/reward"
)

// rewardsText renders the displayed table, the one players see
func (b *Bot) rewardsText() string {
	lines := lo.Map(b.cfg.Game.Display, func(d reward.DisplayOption, _ int) string {
		return fmt.Sprintf("• **%s** - %s", d.Label, d.Shown)
	})
	return strings.Join(lines, "\n")
}

// sessionButtons builds the Play/Cancel row for a session
func sessionButtons(s *game.Session) []discordgo.MessageComponent {
	playLabel := "Trick or Treat"
	playStyle := discordgo.PrimaryButton
	if s.Kind == game.KindFreeplay {
		playLabel = "Play Freeplay"
		playStyle = discordgo.SuccessButton
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: playLabel, Style: playStyle, CustomID: customIDPlay + s.ID},
				discordgo.Button{Label: "Cancel", Style: discordgo.SecondaryButton, CustomID: customIDCancel + s.ID},
			},
		},
	}
}

// handleTrickOrTreat implements /trickortreat [user] (Admin only)
func (b *Bot) handleTrickOrTreat(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		b.respondText(s, i, "You don't have permission!", true)
		return
	}

	target := i.Member.User
	if opt, ok := optionMap(i)["user"]; ok {
		target = opt.UserValue(s)
	}
	targetID, err := parseUserID(target.ID)
	if err != nil {
		b.respondText(s, i, "Please mention a user!", true)
		return
	}

	ctx := context.Background()
	points, err := b.store.GetPoints(ctx, targetID)
	if err != nil {
		b.respondError(s, i, err)
		return
	}
	if points < b.cfg.Game.Cost {
		b.respondText(s, i, fmt.Sprintf("%s doesn't have enough points! (Current: %d)", target.Mention(), points), true)
		return
	}

	adminID, err := memberID(i)
	if err != nil {
		b.respondText(s, i, "You don't have permission!", true)
		return
	}

	sess := b.manager.Present(game.KindGame, targetID, adminID, false)

	embed := &discordgo.MessageEmbed{
		Title: "🎃 Trick or Treat Time!",
		Description: fmt.Sprintf("%s, you've been invited to play!\n\n**Cost:** %d point\n**Your points:** %d",
			target.Mention(), b.cfg.Game.Cost, points),
		Color: colorOrange,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🎁 Possible Rewards", Value: b.rewardsText()},
			{Name: "How to Play", Value: "Press **Trick or Treat** to play or **Cancel** to skip."},
		},
	}

	b.respond(s, i, &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: sessionButtons(sess),
	})
	b.logger.Info().Int64("admin", adminID).Int64("target", targetID).Msg("Trick or Treat sent")
}

// handleSecretDragon implements the unlisted !secretdragon prefix command.
// It presents a forced-mode session that always yields the guaranteed
// reward. Admin only; the invoking message is deleted.
func (b *Bot) handleSecretDragon(s *discordgo.Session, m *discordgo.MessageCreate) {
	perms, err := s.State.MessagePermissions(m.Message)
	if err != nil || perms&discordgo.PermissionAdministrator == 0 {
		if err := s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
			b.logger.Warn().Err(err).Msg("Failed to delete message")
		}
		return
	}

	if len(m.Mentions) == 0 {
		_ = s.ChannelMessageDelete(m.ChannelID, m.ID)
		return
	}
	target := m.Mentions[0]
	targetID, err := parseUserID(target.ID)
	if err != nil {
		return
	}
	adminID, err := parseUserID(m.Author.ID)
	if err != nil {
		return
	}

	ctx := context.Background()
	points, err := b.store.GetPoints(ctx, targetID)
	if err != nil {
		b.logger.Error().Err(err).Msg("Storage failure")
		return
	}

	_ = s.ChannelMessageDelete(m.ChannelID, m.ID)

	if points < b.cfg.Game.Cost {
		msg, err := s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("%s doesn't have enough points!", target.Mention()))
		if err == nil {
			// best effort cleanup, the notice is transient
			go deleteAfter(s, m.ChannelID, msg.ID)
		}
		return
	}

	sess := b.manager.Present(game.KindGame, targetID, adminID, true)

	embed := &discordgo.MessageEmbed{
		Title: "🎃 Trick or Treat Time!",
		Description: fmt.Sprintf("%s, you've been invited to play!\n\n**Cost:** %d point\n**Your points:** %d",
			target.Mention(), b.cfg.Game.Cost, points),
		Color: colorOrange,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🎁 Possible Rewards", Value: b.rewardsText()},
			{Name: "How to Play", Value: "Press **Trick or Treat** to play or **Cancel** to skip."},
		},
	}

	_, err = s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: sessionButtons(sess),
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("Failed to send forced session")
		return
	}
	b.logger.Info().Int64("admin", adminID).Int64("target", targetID).Msg("Forced session activated")
}

// handleFreeplay implements /freeplay user (Admin only)
func (b *Bot) handleFreeplay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		b.respondText(s, i, "You don't have permission!", true)
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

	claimed, err := b.gate.HasClaimed(context.Background(), targetID)
	if err != nil {
		b.respondError(s, i, err)
		return
	}
	if claimed {
		b.respondText(s, i, fmt.Sprintf("❌ %s has already claimed their freeplay!\n\nUse `/resetfreeplay %s` to reset.",
			target.Mention(), target.Username), true)
		return
	}

	adminID, err := memberID(i)
	if err != nil {
		b.respondText(s, i, "You don't have permission!", true)
		return
	}

	sess := b.manager.Present(game.KindFreeplay, targetID, adminID, false)

	embed := &discordgo.MessageEmbed{
		Title: "🎁 Free Gift Time!",
		Description: fmt.Sprintf("%s, you've received a **FREE** Trick or Treat!\n\n⚠️ **This is a ONE-TIME offer!**",
			target.Mention()),
		Color: colorGold,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🎁 Possible Rewards", Value: b.rewardsText()},
			{Name: "How to Play", Value: "Press **Play Freeplay** or **Cancel**.\n\n**Note:** You can only claim this once!"},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "No points required!"},
	}

	b.respond(s, i, &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: sessionButtons(sess),
	})
	b.logger.Info().Int64("admin", adminID).Int64("target", targetID).Msg("Freeplay sent")
}

// handleResetFreeplay implements /resetfreeplay [user] (Admin only)
func (b *Bot) handleResetFreeplay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !isAdmin(i) {
		b.respondText(s, i, "You don't have permission!", true)
		return
	}

	ctx := context.Background()
	if opt, ok := optionMap(i)["user"]; ok {
		target := opt.UserValue(s)
		targetID, err := parseUserID(target.ID)
		if err != nil {
			b.respondText(s, i, "Please mention a user!", true)
			return
		}
		if err := b.gate.Reset(ctx, targetID); err != nil {
			b.respondError(s, i, err)
			return
		}
		b.respondText(s, i, fmt.Sprintf("✅ Reset freeplay for %s!", target.Mention()), true)
		return
	}

	if err := b.gate.ResetAll(ctx); err != nil {
		b.respondError(s, i, err)
		return
	}
	b.respondText(s, i, "✅ Reset ALL freeplay claims!", true)
}

// handlePlayButton resolves a session play click to its terminal embed
func (b *Bot) handlePlayButton(s *discordgo.Session, i *discordgo.InteractionCreate, sessionID string) {
	userID, err := memberID(i)
	if err != nil {
		b.respondText(s, i, "This isn't for you!", true)
		return
	}

	res, err := b.manager.Play(context.Background(), sessionID, userID)
	if err != nil {
		switch errors.GetCode(err) {
		case errors.ErrAlreadyClaimed:
			b.edit(s, i, &discordgo.MessageEmbed{
				Title:       "Already Claimed!",
				Description: "You have already claimed your freeplay! You can only claim it once.",
				Color:       colorRed,
			})
		default:
			b.respondError(s, i, err)
		}
		return
	}

	b.edit(s, i, b.resultEmbed(res))
}

// resultEmbed renders a play result. Treat-style outcomes show the
// displayed percentage for the label, not the draw weight.
func (b *Bot) resultEmbed(res *game.Result) *discordgo.MessageEmbed {
	shown := reward.ShownFor(b.cfg.Game.Display, res.Label)

	switch res.Outcome {
	case game.OutcomeForced:
		return &discordgo.MessageEmbed{
			Title:       "🎉 JACKPOT! 🎉",
			Description: fmt.Sprintf("You won the **%s** reward: **%s**!", shown, res.Label),
			Color:       colorGold,
			Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Points remaining: %d", res.Remaining)},
		}
	case game.OutcomeTreat:
		return &discordgo.MessageEmbed{
			Title:       "🎃 Congratulations!",
			Description: fmt.Sprintf("You won the **%s** reward: **%s**!", shown, res.Label),
			Color:       colorGreen,
			Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Points remaining: %d", res.Remaining)},
		}
	case game.OutcomeFreeplay:
		return &discordgo.MessageEmbed{
			Title:       "🎁 Freeplay Gift!",
			Description: fmt.Sprintf("Congratulations! You won the **%s** reward: **%s**!", shown, res.Label),
			Color:       colorGold,
			Footer:      &discordgo.MessageEmbedFooter{Text: "No points were used for this game!"},
		}
	default:
		return &discordgo.MessageEmbed{
			Title:       "👻 Oops...",
			Description: "Sorry, you got **tricked**! Better luck next time!",
			Color:       colorRed,
			Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Points remaining: %d", res.Remaining)},
		}
	}
}

// handleCancelButton ends the session with no state change
func (b *Bot) handleCancelButton(s *discordgo.Session, i *discordgo.InteractionCreate, sessionID string) {
	userID, err := memberID(i)
	if err != nil {
		b.respondText(s, i, "This isn't for you!", true)
		return
	}

	if err := b.manager.Cancel(sessionID, userID); err != nil {
		b.respondError(s, i, err)
		return
	}

	b.edit(s, i, &discordgo.MessageEmbed{
		Title:       "Cancelled",
		Description: "Game cancelled. No points were used.",
		Color:       colorGrey,
	})
}
