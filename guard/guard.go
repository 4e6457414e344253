// Package guard holds the shape checks shared by the service layer and the
// connectors that validate their own input. All failures carry the validation
// error code and are surfaced to the caller immediately.
package guard

import (
	"context"
	"fmt"
	"strings"

	"github.com/logmux/logmux-core/muxerr"
	"github.com/logmux/logmux-core/schema"
	"github.com/logmux/logmux-core/tenant"
)

// Context verifies the request context carries a non-empty tenant identifier.
func Context(ctx context.Context) error {
	id, ok := tenant.From(ctx)
	if !ok || strings.TrimSpace(id) == "" {
		return muxerr.New(muxerr.CodeValidation, "request context carries no tenant id", nil)
	}
	return nil
}

// Entry verifies a log entry is well formed: known level, non-empty source and
// message. Timestamp is deliberately not checked here; a missing one is filled
// by the first connector that handles the entry.
func Entry(entry *schema.LogEntry) error {
	if entry == nil {
		return muxerr.New(muxerr.CodeValidation, "log entry required", nil)
	}
	if !entry.Level.Valid() {
		return muxerr.New(muxerr.CodeValidation, fmt.Sprintf("unknown log level %q", entry.Level), nil)
	}
	if strings.TrimSpace(entry.Source) == "" {
		return muxerr.New(muxerr.CodeValidation, "log entry source required", nil)
	}
	if strings.TrimSpace(entry.Message) == "" {
		return muxerr.New(muxerr.CodeValidation, "log entry message required", nil)
	}
	return nil
}
