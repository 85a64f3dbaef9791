package gate

import (
	"errors"

	"github.com/guildbot-ai/guildbot/pkg/models"
)

// ErrGlobalBudgetExhausted is returned when the whole day's budget is spent.
var ErrGlobalBudgetExhausted = errors.New("daily budget exhausted")

// ErrUserLimitReached is returned when the requester's own ceiling is spent.
var ErrUserLimitReached = errors.New("user daily limit reached")

// LedgerReader supplies pre-call spend state for a day.
type LedgerReader interface {
	Entry(day string) models.DayEntry
}

// Gate decides whether a request may proceed at all. Both checks are strict
// less-than against the state before the current call's cost is known: the
// gate is a guard, not a post-hoc reconciliation.
type Gate struct {
	dailyUSD        float64
	defaultDailyUSD float64
	roleLimits      []models.RoleLimit
	ledger          LedgerReader
}

// New creates a Gate. roleLimits is precedence-ordered; the first entry
// whose role the requester holds supplies the per-user ceiling.
func New(dailyUSD, defaultDailyUSD float64, roleLimits []models.RoleLimit, ledger LedgerReader) *Gate {
	return &Gate{
		dailyUSD:        dailyUSD,
		defaultDailyUSD: defaultDailyUSD,
		roleLimits:      roleLimits,
		ledger:          ledger,
	}
}

// EffectiveLimit resolves the requester's per-user daily ceiling from the
// ordered role limit list, else the default.
func (g *Gate) EffectiveLimit(roles []string) float64 {
	held := make(map[string]bool, len(roles))
	for _, r := range roles {
		held[r] = true
	}
	for _, rl := range g.roleLimits {
		if held[rl.Role] {
			return rl.DailyUSD
		}
	}
	return g.defaultDailyUSD
}

// Authorize returns nil if the request may proceed, ErrGlobalBudgetExhausted
// if the day's total budget is spent, or ErrUserLimitReached if the
// requester's own ceiling is spent. The global check runs first, so a denial
// reason is unambiguous even when both ceilings are hit.
func (g *Gate) Authorize(userID string, roles []string, day string) error {
	entry := g.ledger.Entry(day)

	if entry.TotalUSD >= g.dailyUSD {
		return ErrGlobalBudgetExhausted
	}
	if entry.Users[userID] >= g.EffectiveLimit(roles) {
		return ErrUserLimitReached
	}
	return nil
}
