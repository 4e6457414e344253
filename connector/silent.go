package connector

import (
	"context"
	"time"

	"github.com/logmux/logmux-core/muxerr"
	"github.com/logmux/logmux-core/schema"
)

// Silent discards every entry. Query fails with the not_implemented code
// rather than returning an empty page: a silent sink must never satisfy a
// multi connector's query probe, or it would shadow a real store behind it.
type Silent struct{}

// NewSilent builds the silent connector. Configuration is ignored.
func NewSilent(config map[string]any) (Connector, error) {
	return Silent{}, nil
}

// Log stamps a missing timestamp and discards the entry.
func (Silent) Log(ctx context.Context, entry *schema.LogEntry) (string, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	return "", nil
}

// Query fails with not_implemented.
func (Silent) Query(ctx context.Context, query schema.LogQuery) (schema.QueryResult, error) {
	return schema.QueryResult{}, muxerr.NotImplemented("silent connector query")
}

// SupportsQuery reports false.
func (Silent) SupportsQuery() bool { return false }

var _ Connector = Silent{}
var _ QuerySupporter = Silent{}
