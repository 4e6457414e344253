package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logmux/logmux-core/connector"
	"github.com/logmux/logmux-core/muxerr"
	"github.com/logmux/logmux-core/schema"
	"github.com/logmux/logmux-core/tenant"
)

// captureConnector records the query the service builds.
type captureConnector struct {
	logCalls   int
	queryCalls int
	lastQuery  schema.LogQuery
	logID      string
}

func (c *captureConnector) Log(ctx context.Context, entry *schema.LogEntry) (string, error) {
	c.logCalls++
	return c.logID, nil
}

func (c *captureConnector) Query(ctx context.Context, query schema.LogQuery) (schema.QueryResult, error) {
	c.queryCalls++
	c.lastQuery = query
	return schema.QueryResult{TotalEntities: 42}, nil
}

func testCtx() context.Context {
	return tenant.Into(context.Background(), "acme")
}

func TestLogDelegatesAndReturnsConnectorID(t *testing.T) {
	conn := &captureConnector{logID: "e-123"}
	svc := New(conn)

	id, err := svc.Log(testCtx(), &schema.LogEntry{Level: schema.LevelInfo, Source: "auth", Message: "login"})
	require.NoError(t, err)
	assert.Equal(t, "e-123", id)
	assert.Equal(t, 1, conn.logCalls)
}

func TestLogValidatesBeforeConnector(t *testing.T) {
	conn := &captureConnector{}
	svc := New(conn)

	_, err := svc.Log(context.Background(), &schema.LogEntry{Level: schema.LevelInfo, Source: "auth", Message: "login"})
	assert.True(t, muxerr.HasCode(err, muxerr.CodeValidation), "missing tenant id")

	_, err = svc.Log(testCtx(), &schema.LogEntry{Level: schema.LevelInfo, Source: "auth"})
	assert.True(t, muxerr.HasCode(err, muxerr.CodeValidation), "missing message")

	_, err = svc.Log(testCtx(), nil)
	assert.True(t, muxerr.HasCode(err, muxerr.CodeValidation), "nil entry")

	assert.Zero(t, conn.logCalls, "no connector call on validation failure")
}

func TestQueryBuildsConjunctiveCondition(t *testing.T) {
	conn := &captureConnector{}
	svc := New(conn)

	start := time.Unix(100, 0).UTC()
	end := time.Unix(200, 0).UTC()
	_, err := svc.Query(testCtx(), QueryParams{
		Level:  schema.LevelError,
		Source: "auth",
		Start:  start,
		End:    end,
	})
	require.NoError(t, err)

	q := conn.lastQuery
	require.NotNil(t, q.Condition)
	require.Len(t, q.Condition.And, 4, "level, source and both bounds each contribute a clause")
	assert.Equal(t, schema.Eq(schema.PropertyLevel, "error"), q.Condition.And[0])
	assert.Equal(t, schema.Eq(schema.PropertySource, "auth"), q.Condition.And[1])
	assert.Equal(t, schema.Ge(schema.PropertyTimestamp, start), q.Condition.And[2])
	assert.Equal(t, schema.Le(schema.PropertyTimestamp, end), q.Condition.And[3])
}

func TestQueryOmitsAbsentParameters(t *testing.T) {
	conn := &captureConnector{}
	svc := New(conn)

	start := time.Unix(100, 0).UTC()
	end := time.Unix(200, 0).UTC()
	_, err := svc.Query(testCtx(), QueryParams{Level: schema.LevelError, Start: start, End: end})
	require.NoError(t, err)
	require.NotNil(t, conn.lastQuery.Condition)
	assert.Len(t, conn.lastQuery.Condition.And, 3, "omitting source omits its clause")

	_, err = svc.Query(testCtx(), QueryParams{Level: schema.LevelError})
	require.NoError(t, err)
	require.NotNil(t, conn.lastQuery.Condition)
	assert.Empty(t, conn.lastQuery.Condition.And, "a single filter collapses to its leaf")
	assert.Equal(t, schema.PropertyLevel, conn.lastQuery.Condition.Property)

	_, err = svc.Query(testCtx(), QueryParams{})
	require.NoError(t, err)
	assert.Nil(t, conn.lastQuery.Condition, "no parameters, no condition")
}

func TestQueryAlwaysSortsTimestampDescending(t *testing.T) {
	conn := &captureConnector{}
	svc := New(conn)

	_, err := svc.Query(testCtx(), QueryParams{Source: "db"})
	require.NoError(t, err)
	require.Len(t, conn.lastQuery.Sort, 1)
	assert.Equal(t, schema.Sort{Property: schema.PropertyTimestamp, Descending: true}, conn.lastQuery.Sort[0])
	assert.Empty(t, conn.lastQuery.Projection, "service requests full entries")
}

func TestQueryForwardsPagination(t *testing.T) {
	conn := &captureConnector{}
	svc := New(conn)

	result, err := svc.Query(testCtx(), QueryParams{Cursor: "abc", PageSize: 25})
	require.NoError(t, err)
	assert.Equal(t, "abc", conn.lastQuery.Cursor)
	assert.Equal(t, 25, conn.lastQuery.PageSize)
	assert.Equal(t, 42, result.TotalEntities, "connector result is returned unchanged")
}

func TestQueryValidation(t *testing.T) {
	conn := &captureConnector{}
	svc := New(conn)

	_, err := svc.Query(context.Background(), QueryParams{})
	assert.True(t, muxerr.HasCode(err, muxerr.CodeValidation), "missing tenant id")

	_, err = svc.Query(testCtx(), QueryParams{Level: "loud"})
	assert.True(t, muxerr.HasCode(err, muxerr.CodeValidation), "unknown level")

	assert.Zero(t, conn.queryCalls)
}

func TestServiceOverMultiConnector(t *testing.T) {
	reg := connector.DefaultRegistry()
	multi, err := connector.NewMulti(reg, map[string]any{"connectors": []any{"silent", "memory"}})
	require.NoError(t, err)
	svc := New(multi)

	_, err = svc.Log(testCtx(), &schema.LogEntry{Level: schema.LevelError, Source: "auth", Message: "denied"})
	require.NoError(t, err)

	result, err := svc.Query(testCtx(), QueryParams{Level: schema.LevelError})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalEntities)
}
