package connector

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/logmux/logmux-core/schema"
)

// Memory is an in-process queryable store. In a multi connector it plays the
// authoritative read side next to write-only sinks like console output.
type Memory struct {
	mu      sync.RWMutex
	entries []schema.LogEntry
}

// NewMemory builds an empty memory connector. Configuration is ignored.
func NewMemory(config map[string]any) (Connector, error) {
	return &Memory{}, nil
}

// Log stores a copy of the entry under a freshly allocated id.
func (m *Memory) Log(ctx context.Context, entry *schema.LogEntry) (string, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	stored := *entry
	stored.ID = uuid.NewString()

	m.mu.Lock()
	m.entries = append(m.entries, stored)
	m.mu.Unlock()
	return stored.ID, nil
}

// Query evaluates the condition tree over the stored entries.
func (m *Memory) Query(ctx context.Context, query schema.LogQuery) (schema.QueryResult, error) {
	m.mu.RLock()
	snapshot := make([]schema.LogEntry, len(m.entries))
	copy(snapshot, m.entries)
	m.mu.RUnlock()

	return runQuery(snapshot, query)
}

// SupportsQuery reports true.
func (m *Memory) SupportsQuery() bool { return true }

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

var _ Connector = (*Memory)(nil)
var _ QuerySupporter = (*Memory)(nil)
