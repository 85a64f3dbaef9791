package bot

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/bwmarrin/discordgo"

	"github.com/guildbot-ai/guildbot/pkg/orchestrator"
)

var mentionPattern = regexp.MustCompile(`<@!?\d+>`)

// Responder runs one AI exchange for an inbound mention.
type Responder interface {
	Respond(ctx context.Context, req orchestrator.Request) error
}

// Handler routes Discord message events into the orchestrator. It reacts
// only to messages that mention the bot; everything else is ignored.
type Handler struct {
	responder Responder
	log       *slog.Logger
}

// New creates a Handler.
func New(responder Responder, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{responder: responder, log: log}
}

// HandleMessageCreate processes an incoming message. discordgo dispatches
// each event on its own goroutine, so exchanges for different channels run
// concurrently; per-channel state is guarded by its owners.
func (h *Handler) HandleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}
	if !mentionsBot(m, s.State.User.ID) {
		return
	}

	content := mentionPattern.ReplaceAllString(m.Content, "")

	req := orchestrator.Request{
		ConversationID: m.ChannelID,
		UserID:         m.Author.ID,
		Roles:          h.roleNames(s, m),
		Content:        content,
	}

	h.log.Debug("mention received", "channel_id", m.ChannelID, "user_id", m.Author.ID)
	if err := h.responder.Respond(context.Background(), req); err != nil {
		h.log.Error("exchange failed", "channel_id", m.ChannelID, "error", err.Error())
	}
}

func mentionsBot(m *discordgo.MessageCreate, botID string) bool {
	for _, u := range m.Mentions {
		if u.ID == botID {
			return true
		}
	}
	return false
}

// roleNames resolves the author's role IDs to names; the role limit table is
// keyed by name so operators can edit it without chasing snowflake IDs.
func (h *Handler) roleNames(s *discordgo.Session, m *discordgo.MessageCreate) []string {
	if m.Member == nil || m.GuildID == "" {
		return nil
	}
	names := make([]string, 0, len(m.Member.Roles))
	for _, id := range m.Member.Roles {
		role, err := s.State.Role(m.GuildID, id)
		if err != nil {
			h.log.Debug("unknown role", "role_id", id)
			continue
		}
		names = append(names, role.Name)
	}
	return names
}
