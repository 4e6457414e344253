// Package service is the caller-facing entry point of the logging core. It
// wraps exactly one connector, validates inputs, and translates convenience
// query parameters into the generic condition tree the connectors consume.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/logmux/logmux-core/connector"
	"github.com/logmux/logmux-core/guard"
	"github.com/logmux/logmux-core/muxerr"
	"github.com/logmux/logmux-core/schema"
)

// Service wraps a single connector, which may itself be a multi connector
// fanning out to several sinks.
type Service struct {
	conn connector.Connector
}

// New builds a logging service over conn.
func New(conn connector.Connector) *Service {
	return &Service{conn: conn}
}

// Log validates the request and entry, delegates to the connector, and
// returns whatever identifier the connector allocated. No connector is
// invoked when validation fails.
func (s *Service) Log(ctx context.Context, entry *schema.LogEntry) (string, error) {
	if err := guard.Context(ctx); err != nil {
		return "", err
	}
	if err := guard.Entry(entry); err != nil {
		return "", err
	}
	return s.conn.Log(ctx, entry)
}

// QueryParams are the convenience filters of a service query. Each zero-value
// field omits its clause from the built condition.
type QueryParams struct {
	Level    schema.LogLevel `json:"level,omitempty"`
	Source   string          `json:"source,omitempty"`
	Start    time.Time       `json:"start,omitempty"`
	End      time.Time       `json:"end,omitempty"`
	Cursor   string          `json:"cursor,omitempty"`
	PageSize int             `json:"pageSize,omitempty"`
}

// Query builds a conjunctive condition from the supplied parameters (level
// and source equality, inclusive timestamp bounds), sorts by timestamp
// descending, requests full entries, and returns the connector's paged
// result unchanged.
func (s *Service) Query(ctx context.Context, params QueryParams) (schema.QueryResult, error) {
	if err := guard.Context(ctx); err != nil {
		return schema.QueryResult{}, err
	}
	if params.Level != "" && !params.Level.Valid() {
		return schema.QueryResult{}, muxerr.New(muxerr.CodeValidation, fmt.Sprintf("unknown log level %q", params.Level), nil)
	}

	var clauses []schema.Condition
	if params.Level != "" {
		clauses = append(clauses, schema.Eq(schema.PropertyLevel, string(params.Level)))
	}
	if params.Source != "" {
		clauses = append(clauses, schema.Eq(schema.PropertySource, params.Source))
	}
	if !params.Start.IsZero() {
		clauses = append(clauses, schema.Ge(schema.PropertyTimestamp, params.Start))
	}
	if !params.End.IsZero() {
		clauses = append(clauses, schema.Le(schema.PropertyTimestamp, params.End))
	}

	query := schema.LogQuery{
		Sort:     []schema.Sort{{Property: schema.PropertyTimestamp, Descending: true}},
		Cursor:   params.Cursor,
		PageSize: params.PageSize,
	}
	if len(clauses) > 0 {
		condition := schema.And(clauses...)
		query.Condition = &condition
	}
	return s.conn.Query(ctx, query)
}
