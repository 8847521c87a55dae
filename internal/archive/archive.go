// Package archive persists committed ledger entries to durable storage.
// The in-memory store remains the source of truth; archiving is a
// best-effort write-behind log so a later deployment can replay history.
package archive

import (
	"context"
	"sync"
	"time"

	"github.com/paisepay/paisepay/internal/money"
)

// Entry is the durable projection of a committed ledger entry.
type Entry struct {
	ID        string
	Kind      string
	From      string
	To        string
	Amount    money.Paise
	Note      string
	Category  string
	Timestamp time.Time
}

// Archiver records committed entries. Implementations must tolerate
// duplicate IDs so a retried write is harmless.
type Archiver interface {
	Record(ctx context.Context, entry Entry) error
}

// Memory keeps recorded entries in memory. Used in tests and as the
// fallback when no database is configured.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemory builds an empty in-memory archiver.
func NewMemory() *Memory {
	return &Memory{}
}

// Record appends the entry.
func (m *Memory) Record(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

// Entries returns a copy of everything recorded so far.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
