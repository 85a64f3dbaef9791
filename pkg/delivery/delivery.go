package delivery

import (
	"context"
	"strings"
)

// Messenger delivers a text reply to a conversation. allowedRoleIDs is the
// complete set of role references permitted to actually notify; anything the
// model emitted outside that set is rendered inert by the platform.
type Messenger interface {
	Send(ctx context.Context, conversationID, text string, allowedRoleIDs []string) error
}

// RoleMention formats a live role reference for the chat platform.
func RoleMention(roleID string) string {
	return "<@&" + roleID + ">"
}

// Finalizer post-processes model output before it leaves the process.
type Finalizer struct {
	placeholder string
	roleID      string
	messenger   Messenger
}

// New creates a Finalizer that substitutes placeholder with a live reference
// to the role identified by roleID.
func New(placeholder, roleID string, messenger Messenger) *Finalizer {
	return &Finalizer{placeholder: placeholder, roleID: roleID, messenger: messenger}
}

// Finalize replaces every occurrence of the reserved placeholder with the
// privileged role reference.
func (f *Finalizer) Finalize(text string) string {
	if f.placeholder == "" || f.roleID == "" {
		return text
	}
	return strings.ReplaceAll(text, f.placeholder, RoleMention(f.roleID))
}

// Deliver finalizes text and emits it with an allow-list containing exactly
// the one privileged role used by the substitution. The model may emit
// arbitrary mention syntax; nothing beyond this role is ever allowed to page.
func (f *Finalizer) Deliver(ctx context.Context, conversationID, text string) error {
	var allowed []string
	if f.roleID != "" {
		allowed = []string{f.roleID}
	}
	return f.messenger.Send(ctx, conversationID, f.Finalize(text), allowed)
}

// Notify emits a fixed status message (budget denials, failures) with no
// role mentions allowed at all.
func (f *Finalizer) Notify(ctx context.Context, conversationID, text string) error {
	return f.messenger.Send(ctx, conversationID, text, nil)
}
