package ledger

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestLedger(t *testing.T) (*Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.json")
	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	return l, path
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRecordSpendInvariant(t *testing.T) {
	l, _ := newTestLedger(t)

	spends := []struct {
		user string
		usd  float64
	}{
		{"alice", 0.01},
		{"bob", 0.02},
		{"alice", 0.005},
		{"carol", 0.1},
	}

	for _, s := range spends {
		if err := l.RecordSpend("2026-08-30", s.user, s.usd); err != nil {
			t.Fatal(err)
		}

		entry := l.Entry("2026-08-30")
		var sum float64
		for _, usd := range entry.Users {
			sum += usd
		}
		if !approx(entry.TotalUSD, sum) {
			t.Fatalf("total %v != sum of users %v", entry.TotalUSD, sum)
		}
	}

	entry := l.Entry("2026-08-30")
	if !approx(entry.Users["alice"], 0.015) {
		t.Errorf("expected alice at 0.015, got %v", entry.Users["alice"])
	}
	if !approx(entry.TotalUSD, 0.135) {
		t.Errorf("expected total 0.135, got %v", entry.TotalUSD)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	l, path := newTestLedger(t)

	if err := l.RecordSpend("2026-08-30", "alice", 0.25); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	entry := reopened.Entry("2026-08-30")
	if !approx(entry.TotalUSD, 0.25) {
		t.Errorf("expected 0.25 after reload, got %v", entry.TotalUSD)
	}
	if !approx(entry.Users["alice"], 0.25) {
		t.Errorf("expected alice at 0.25 after reload, got %v", entry.Users["alice"])
	}
}

func TestEntryDefaultDoesNotMutate(t *testing.T) {
	l, _ := newTestLedger(t)

	entry := l.Entry("2026-01-01")
	if entry.TotalUSD != 0 || len(entry.Users) != 0 {
		t.Fatalf("expected zero entry, got %+v", entry)
	}

	entry.Users["alice"] = 99

	again := l.Entry("2026-01-01")
	if len(again.Users) != 0 {
		t.Error("mutating a returned entry leaked into the ledger")
	}
	if len(l.Days()) != 0 {
		t.Error("reading a missing day created a ledger entry")
	}
}

func TestConcurrentRecordSpend(t *testing.T) {
	l, _ := newTestLedger(t)

	const workers = 8
	const perWorker = 20

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_ = l.RecordSpend("2026-08-30", user, 0.001)
			}
		}("user" + string(rune('a'+w)))
	}
	wg.Wait()

	entry := l.Entry("2026-08-30")
	var sum float64
	for _, usd := range entry.Users {
		sum += usd
	}
	if !approx(entry.TotalUSD, sum) {
		t.Errorf("total %v != sum of users %v under concurrency", entry.TotalUSD, sum)
	}
	if !approx(entry.TotalUSD, workers*perWorker*0.001) {
		t.Errorf("lost updates: expected %v, got %v", workers*perWorker*0.001, entry.TotalUSD)
	}
}

func TestRecordSpendLegacyEntryWithoutUsers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.json")
	if err := os.WriteFile(path, []byte(`{"2026-08-30":{"total_usd":1.0}}`), 0644); err != nil {
		t.Fatal(err)
	}

	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.RecordSpend("2026-08-30", "alice", 0.01); err != nil {
		t.Fatal(err)
	}

	entry := l.Entry("2026-08-30")
	if !approx(entry.TotalUSD, 1.01) {
		t.Errorf("expected total 1.01, got %v", entry.TotalUSD)
	}
	if !approx(entry.Users["alice"], 0.01) {
		t.Errorf("expected alice at 0.01, got %v", entry.Users["alice"])
	}
}

func TestDayKeyUTC(t *testing.T) {
	loc := time.FixedZone("UTC+14", 14*3600)
	// 2026-08-31 01:00 in UTC+14 is still 2026-08-30 in UTC.
	instant := time.Date(2026, 8, 31, 1, 0, 0, 0, loc)
	if got := DayKey(instant); got != "2026-08-30" {
		t.Errorf("expected 2026-08-30, got %s", got)
	}
}
