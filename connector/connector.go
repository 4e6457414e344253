// Package connector holds the pluggable logging backends: a capability
// interface for writing and querying entries, the built-in console, silent,
// memory, file and multi variants, and a registry seeding helper for
// name-based construction.
package connector

import (
	"context"

	"github.com/logmux/logmux-core/registry"
	"github.com/logmux/logmux-core/schema"
)

// Built-in connector type names.
const (
	TypeConsole = "console"
	TypeSilent  = "silent"
	TypeMemory  = "memory"
	TypeFile    = "file"
	TypeMulti   = "multi"
)

// Connector is the capability surface every logging backend implements.
type Connector interface {
	// Log hands one entry to the backend for writing, printing or discarding.
	// Implementations must not mutate the entry except to fill a missing
	// timestamp. The returned id is the identifier the backend allocated for
	// the entry, empty when the backend allocates none.
	Log(ctx context.Context, entry *schema.LogEntry) (string, error)

	// Query retrieves entries matching the query. Backends that cannot serve
	// retrieval fail with the not_implemented error code, which callers treat
	// as capability absence rather than operational failure.
	Query(ctx context.Context, query schema.LogQuery) (schema.QueryResult, error)
}

// Constructor builds a connector from configuration.
type Constructor func(config map[string]any) (Connector, error)

// QuerySupporter is an optional capability check. Connectors implementing it
// declare query support up front, letting the multi connector skip
// non-queryable sinks without driving control flow off error identity.
// Connectors that do not implement it are probed via Query and the
// not_implemented code.
type QuerySupporter interface {
	SupportsQuery() bool
}

// Registry maps connector type names to constructors.
type Registry = registry.Registry[Constructor]

// NewRegistry allocates an empty connector registry.
func NewRegistry() *Registry {
	return registry.New[Constructor]()
}

// DefaultRegistry returns a fresh registry seeded with every built-in
// connector. The multi constructor resolves its sub-connector type names
// against this same registry, so a multi may nest another multi.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(TypeConsole, NewConsole)
	_ = r.Register(TypeSilent, NewSilent)
	_ = r.Register(TypeMemory, NewMemory)
	_ = r.Register(TypeFile, NewFile)
	_ = r.Register(TypeMulti, func(config map[string]any) (Connector, error) {
		return NewMulti(r, config)
	})
	return r
}
