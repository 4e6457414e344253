package connector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/logmux/logmux-core/guard"
	"github.com/logmux/logmux-core/muxerr"
	"github.com/logmux/logmux-core/schema"
)

// FailureHook observes a sub-connector's write failure. The multi connector
// swallows these failures by design; the hook is the only place they surface.
type FailureHook func(connectorType string, err error)

type subConnector struct {
	typeName string
	conn     Connector
}

// Multi broadcasts writes to a set of sub-connectors and answers queries from
// the first one that supports retrieval.
//
// Writes are a deliberate best-effort fan-out: every sub-connector is invoked
// concurrently, the call returns once all attempts have settled, and
// individual failures are swallowed so one broken sink never blocks or fails
// the others or the caller. Callers therefore cannot distinguish "all sinks
// succeeded" from "some silently failed"; wire a FailureHook to observe the
// losses.
type Multi struct {
	subs      []subConnector
	levels    map[schema.LogLevel]struct{} // nil means every level is enabled
	onFailure FailureHook
}

// NewMulti resolves the configured sub-connector type names against reg and
// builds the fan-out. Configuration keys:
//
//   - "connectors": non-empty list; each element is a type name string or a
//     map with "type" and optional "options" for the sub-connector.
//   - "levels": optional list of enabled level names; absent means all levels.
func NewMulti(reg *Registry, config map[string]any) (*Multi, error) {
	specs, err := parseConnectorSpecs(config["connectors"])
	if err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, muxerr.New(muxerr.CodeValidation, "multi connector requires at least one sub-connector", nil)
	}

	levels, err := parseLevels(config["levels"])
	if err != nil {
		return nil, err
	}

	subs := make([]subConnector, 0, len(specs))
	for _, spec := range specs {
		constructor, ok := reg.Get(spec.typeName)
		if !ok {
			return nil, muxerr.New(muxerr.CodeNotFound, fmt.Sprintf("connector type %q not registered", spec.typeName), nil)
		}
		conn, err := constructor(spec.options)
		if err != nil {
			return nil, fmt.Errorf("building sub-connector %q: %w", spec.typeName, err)
		}
		subs = append(subs, subConnector{typeName: spec.typeName, conn: conn})
	}

	return &Multi{subs: subs, levels: levels}, nil
}

// NewMultiOf builds a fan-out over already constructed connectors. Levels
// semantics match NewMulti; nil enables every level.
func NewMultiOf(levels []schema.LogLevel, conns ...Connector) *Multi {
	subs := make([]subConnector, 0, len(conns))
	for _, c := range conns {
		subs = append(subs, subConnector{typeName: fmt.Sprintf("%T", c), conn: c})
	}
	var set map[schema.LogLevel]struct{}
	if levels != nil {
		set = make(map[schema.LogLevel]struct{}, len(levels))
		for _, l := range levels {
			set[l] = struct{}{}
		}
	}
	return &Multi{subs: subs, levels: set}
}

// WithFailureHook installs the write-failure observer and returns m.
func (m *Multi) WithFailureHook(hook FailureHook) *Multi {
	m.onFailure = hook
	return m
}

// Log validates the request, drops entries outside the enabled level set,
// stamps a missing timestamp, then fans the entry out to every sub-connector
// and waits for all attempts to settle. Always returns an empty id: a
// broadcast has no single authoritative identifier.
func (m *Multi) Log(ctx context.Context, entry *schema.LogEntry) (string, error) {
	if err := guard.Context(ctx); err != nil {
		return "", err
	}
	if err := guard.Entry(entry); err != nil {
		return "", err
	}

	if !m.levelEnabled(entry.Level) {
		return "", nil
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	var wg sync.WaitGroup
	for _, sub := range m.subs {
		wg.Add(1)
		go func(sub subConnector) {
			defer wg.Done()
			if _, err := sub.conn.Log(ctx, entry); err != nil && m.onFailure != nil {
				m.onFailure(sub.typeName, err)
			}
		}(sub)
	}
	wg.Wait()
	return "", nil
}

// Query probes the sub-connectors in construction order and returns the first
// successful result. A not_implemented failure means "try the next one"; any
// other failure aborts the probe and propagates. Sub-connectors that declare
// themselves non-queryable via QuerySupporter are skipped without a call.
func (m *Multi) Query(ctx context.Context, query schema.LogQuery) (schema.QueryResult, error) {
	if err := guard.Context(ctx); err != nil {
		return schema.QueryResult{}, err
	}

	for _, sub := range m.subs {
		if qs, ok := sub.conn.(QuerySupporter); ok && !qs.SupportsQuery() {
			continue
		}
		result, err := sub.conn.Query(ctx, query)
		if err == nil {
			return result, nil
		}
		if muxerr.HasCode(err, muxerr.CodeNotImplemented) {
			continue
		}
		return schema.QueryResult{}, err
	}
	return schema.QueryResult{}, muxerr.New(muxerr.CodeNotImplemented, "multi connector query: no sub-connector supports retrieval", nil)
}

// SupportsQuery reports whether any sub-connector may answer queries.
func (m *Multi) SupportsQuery() bool {
	for _, sub := range m.subs {
		qs, ok := sub.conn.(QuerySupporter)
		if !ok || qs.SupportsQuery() {
			return true
		}
	}
	return false
}

func (m *Multi) levelEnabled(level schema.LogLevel) bool {
	if m.levels == nil {
		return true
	}
	_, ok := m.levels[level]
	return ok
}

type connectorSpec struct {
	typeName string
	options  map[string]any
}

func parseConnectorSpecs(raw any) ([]connectorSpec, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		if names, ok := raw.([]string); ok {
			specs := make([]connectorSpec, 0, len(names))
			for _, n := range names {
				specs = append(specs, connectorSpec{typeName: n})
			}
			return specs, nil
		}
		return nil, muxerr.New(muxerr.CodeValidation, "multi connector 'connectors' must be a list", nil)
	}

	specs := make([]connectorSpec, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			specs = append(specs, connectorSpec{typeName: v})
		case map[string]any:
			typeName, _ := v["type"].(string)
			if typeName == "" {
				return nil, muxerr.New(muxerr.CodeValidation, "sub-connector spec missing 'type'", nil)
			}
			options, _ := v["options"].(map[string]any)
			specs = append(specs, connectorSpec{typeName: typeName, options: options})
		default:
			return nil, muxerr.New(muxerr.CodeValidation, fmt.Sprintf("unsupported sub-connector spec %T", item), nil)
		}
	}
	return specs, nil
}

func parseLevels(raw any) (map[schema.LogLevel]struct{}, error) {
	if raw == nil {
		return nil, nil
	}

	var names []string
	switch v := raw.(type) {
	case []string:
		names = v
	case []schema.LogLevel:
		for _, l := range v {
			names = append(names, string(l))
		}
	case []any:
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return nil, muxerr.New(muxerr.CodeValidation, fmt.Sprintf("unsupported level spec %T", item), nil)
			}
			names = append(names, name)
		}
	default:
		return nil, muxerr.New(muxerr.CodeValidation, "multi connector 'levels' must be a list of level names", nil)
	}

	set := make(map[schema.LogLevel]struct{}, len(names))
	for _, name := range names {
		level := schema.LogLevel(name)
		if !level.Valid() {
			return nil, muxerr.New(muxerr.CodeValidation, fmt.Sprintf("unknown log level %q", name), nil)
		}
		set[level] = struct{}{}
	}
	return set, nil
}

var _ Connector = (*Multi)(nil)
var _ QuerySupporter = (*Multi)(nil)
