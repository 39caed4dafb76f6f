package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Digital-Creators-Team/trick-or-treat-bot/errors"
)

// Embed colors
const (
	colorGold   = 0xF1C40F
	colorOrange = 0xE67E22
	colorRed    = 0xE74C3C
	colorGreen  = 0x2ECC71
	colorGrey   = 0x95A5A6
	colorBlue   = 0x3498DB
)

// respond sends the initial interaction response. On failure it retries once
// through the followup path, then gives up: the ledger has already been
// mutated by the time anything is sent, so a lost message only costs the
// user a confirmation, never points.
func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err == nil {
		return
	}

	b.logger.Warn().Err(err).Msg("Interaction response failed, retrying via followup")
	_, err = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: data.Content,
		Embeds:  data.Embeds,
		Flags:   data.Flags,
	})
	if err != nil {
		b.logger.Error().Err(errors.Wrap(err, errors.ErrDelivery, "followup delivery failed")).
			Msg("Dropping undeliverable response")
	}
}

// respondText sends a plain text response
func (b *Bot) respondText(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	b.respond(s, i, data)
}

// respondEmbed sends a single-embed response
func (b *Bot) respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	b.respond(s, i, data)
}

// respondError maps an error to its user-visible rejection
func (b *Bot) respondError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	if errors.GetCode(err) == errors.ErrStorage {
		b.logger.Error().Err(err).Msg("Storage failure")
	}
	b.respondText(s, i, errors.UserMessage(err), true)
}

// deleteAfter removes a transient notice after a short delay
func deleteAfter(s *discordgo.Session, channelID, messageID string) {
	time.Sleep(5 * time.Second)
	_ = s.ChannelMessageDelete(channelID, messageID)
}

// edit replaces the original message of a component interaction, removing
// its buttons. Same delivery policy as respond: one followup retry, then drop.
func (b *Bot) edit(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{},
		},
	})
	if err == nil {
		return
	}

	b.logger.Warn().Err(err).Msg("Message edit failed, retrying via followup")
	_, err = s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		b.logger.Error().Err(errors.Wrap(err, errors.ErrDelivery, "followup delivery failed")).
			Msg("Dropping undeliverable result")
	}
}
