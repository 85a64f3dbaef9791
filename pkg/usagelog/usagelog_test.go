package usagelog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/guildbot-ai/guildbot/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "usage.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func record(user, model string, total int, cost float64, at time.Time) models.UsageRecord {
	return models.UsageRecord{
		UserID:           user,
		ConversationID:   "chan1",
		Model:            model,
		Provider:         "openai",
		PromptTokens:     total / 2,
		CompletionTokens: total - total/2,
		TotalTokens:      total,
		CostUSD:          cost,
		CreatedAt:        at,
	}
}

func TestRecordAndSummary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.Record(ctx, record("alice", "o4-mini", 100, 0.01, now)); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, record("alice", "o4-mini", 300, 0.03, now)); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(ctx, record("bob", "gpt-4", 50, 0.05, now)); err != nil {
		t.Fatal(err)
	}

	summaries, err := s.Summary(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summary rows, got %d", len(summaries))
	}

	alice := summaries[0]
	if alice.UserID != "alice" || alice.RequestCount != 2 {
		t.Errorf("unexpected first row: %+v", alice)
	}
	if alice.TotalTokens != 400 {
		t.Errorf("expected 400 total tokens, got %d", alice.TotalTokens)
	}
	if alice.CostUSD != 0.04 {
		t.Errorf("expected cost 0.04, got %v", alice.CostUSD)
	}
}

func TestSummaryUserFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	s.Record(ctx, record("alice", "o4-mini", 100, 0.01, now))
	s.Record(ctx, record("bob", "o4-mini", 100, 0.01, now))

	summaries, err := s.Summary(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(summaries) != 1 || summaries[0].UserID != "bob" {
		t.Errorf("expected only bob, got %+v", summaries)
	}
}

func TestCostByModelSince(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	s.Record(ctx, record("alice", "old-model", 100, 0.01, now.Add(-48*time.Hour)))
	s.Record(ctx, record("alice", "o4-mini", 100, 0.01, now))
	s.Record(ctx, record("bob", "o4-mini", 100, 0.02, now))

	costs, err := s.CostByModel(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(costs) != 1 {
		t.Fatalf("expected 1 model row, got %d", len(costs))
	}
	if costs[0].Model != "o4-mini" || costs[0].RequestCount != 2 {
		t.Errorf("unexpected row: %+v", costs[0])
	}
	if costs[0].CostUSD != 0.03 {
		t.Errorf("expected cost 0.03, got %v", costs[0].CostUSD)
	}
}
