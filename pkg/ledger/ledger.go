package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/guildbot-ai/guildbot/pkg/models"
)

// Ledger is the durable record of accumulated spend by day and by user.
// The on-disk form is a flat JSON map: day → {total_usd, users}. Every
// mutation rewrites the whole document before returning; call volume is
// bounded by the budget itself, so durability wins over throughput.
//
// Day keys use the UTC calendar date. Budget resets at a day boundary are a
// user-facing contract, so the boundary must not drift with the host zone.
type Ledger struct {
	mu   sync.Mutex
	path string
	days map[string]models.DayEntry
}

// DayKey returns the ledger key for the given instant.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Today returns the ledger key for the current UTC day.
func Today() string {
	return DayKey(time.Now())
}

// Open reads the persisted ledger at path, initializing an empty ledger if
// the file does not exist yet.
func Open(path string) (*Ledger, error) {
	l := &Ledger{
		path: path,
		days: make(map[string]models.DayEntry),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if err := json.Unmarshal(data, &l.days); err != nil {
		return nil, fmt.Errorf("parse ledger: %w", err)
	}
	return l, nil
}

// Entry returns a copy of the entry for day, defaulting to a zero entry
// without mutating storage.
func (l *Ledger) Entry(day string) models.DayEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.days[day]
	if !ok {
		return models.DayEntry{Users: map[string]float64{}}
	}
	return entry.Clone()
}

// RecordSpend adds usd to both the day total and the user's share, then
// persists the entire ledger. A persistence failure is returned to the
// caller but never rolls back the in-memory update: process memory is the
// source of truth for the life of the process, and the next successful
// write carries the missed delta.
func (l *Ledger) RecordSpend(day, userID string, usd float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.days[day]
	if !ok {
		entry = models.DayEntry{Users: map[string]float64{}}
	}
	if entry.Users == nil {
		// A hand-edited or legacy ledger file may omit the users map.
		entry.Users = map[string]float64{}
	}
	entry.TotalUSD += usd
	entry.Users[userID] += usd
	l.days[day] = entry

	return l.persist()
}

// persist rewrites the whole ledger document. Callers must hold l.mu.
func (l *Ledger) persist() error {
	data, err := json.MarshalIndent(l.days, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	tmp := l.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("ledger dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}

// Days returns the ledger keys in no particular order, for reporting.
func (l *Ledger) Days() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	keys := make([]string, 0, len(l.days))
	for day := range l.days {
		keys = append(keys, day)
	}
	return keys
}
