package gate

import (
	"errors"
	"testing"

	"github.com/guildbot-ai/guildbot/pkg/models"
)

type fakeLedger struct {
	entry models.DayEntry
}

func (f *fakeLedger) Entry(day string) models.DayEntry {
	return f.entry
}

func newTestGate(entry models.DayEntry) *Gate {
	limits := []models.RoleLimit{
		{Role: "trustee", DailyUSD: 2},
		{Role: "member", DailyUSD: 0.5},
	}
	return New(5, 0.1, limits, &fakeLedger{entry: entry})
}

func TestAuthorizeAllowed(t *testing.T) {
	g := newTestGate(models.DayEntry{
		TotalUSD: 1,
		Users:    map[string]float64{"alice": 0.2},
	})

	if err := g.Authorize("alice", []string{"trustee"}, "2026-08-30"); err != nil {
		t.Errorf("expected allowed, got %v", err)
	}
}

func TestAuthorizeGlobalExhausted(t *testing.T) {
	g := newTestGate(models.DayEntry{
		TotalUSD: 5,
		Users:    map[string]float64{},
	})

	// Denied on the global ceiling even though this user spent nothing.
	err := g.Authorize("alice", []string{"trustee"}, "2026-08-30")
	if !errors.Is(err, ErrGlobalBudgetExhausted) {
		t.Errorf("expected ErrGlobalBudgetExhausted, got %v", err)
	}
}

func TestAuthorizeUserLimitReached(t *testing.T) {
	g := newTestGate(models.DayEntry{
		TotalUSD: 1,
		Users:    map[string]float64{"alice": 0.5},
	})

	err := g.Authorize("alice", []string{"member"}, "2026-08-30")
	if !errors.Is(err, ErrUserLimitReached) {
		t.Errorf("expected ErrUserLimitReached, got %v", err)
	}
}

func TestEffectiveLimitPrecedence(t *testing.T) {
	g := newTestGate(models.DayEntry{Users: map[string]float64{}})

	tests := []struct {
		name  string
		roles []string
		want  float64
	}{
		{"first match wins", []string{"member", "trustee"}, 2},
		{"single role", []string{"member"}, 0.5},
		{"no matching role", []string{"guest"}, 0.1},
		{"no roles at all", nil, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.EffectiveLimit(tt.roles); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
