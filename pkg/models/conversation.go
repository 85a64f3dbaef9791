package models

// Turn roles, matching the completion providers' wire values.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single conversation turn. Ordering is chronological and a turn
// is immutable once appended to a window.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Finish reasons reported by a completion provider.
const (
	FinishStop          = "stop"
	FinishLength        = "length"
	FinishContentFilter = "content_filter"
)
