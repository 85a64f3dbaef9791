package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Messenger delivers replies through a Discord session.
type Messenger struct {
	session *discordgo.Session
}

// NewMessenger wraps an open Discord session.
func NewMessenger(session *discordgo.Session) *Messenger {
	return &Messenger{session: session}
}

// Send implements delivery.Messenger. An empty allow-list suppresses all
// role notifications for the message.
func (m *Messenger) Send(ctx context.Context, channelID, text string, allowedRoleIDs []string) error {
	msg := &discordgo.MessageSend{
		Content: text,
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Roles: allowedRoleIDs,
		},
	}
	if _, err := m.session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
