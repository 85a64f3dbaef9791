package models

// RoleLimit is one entry in the precedence-ordered role limit list. The first
// entry whose role the requester holds supplies the per-user daily ceiling.
type RoleLimit struct {
	Role     string  `json:"role" yaml:"role"`
	DailyUSD float64 `json:"daily_usd" yaml:"daily_usd"`
}

// DayEntry is one day's accumulated spend in the budget ledger.
// Invariant: TotalUSD equals the sum of Users after every successful update.
type DayEntry struct {
	TotalUSD float64            `json:"total_usd"`
	Users    map[string]float64 `json:"users"`
}

// Clone returns a deep copy safe for callers to inspect.
func (e DayEntry) Clone() DayEntry {
	users := make(map[string]float64, len(e.Users))
	for id, usd := range e.Users {
		users[id] = usd
	}
	return DayEntry{TotalUSD: e.TotalUSD, Users: users}
}
