package connector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logmux/logmux-core/muxerr"
	"github.com/logmux/logmux-core/schema"
	"github.com/logmux/logmux-core/tenant"
)

// stubConnector records calls. It deliberately does not implement
// QuerySupporter so the multi connector probes it through Query and the
// not_implemented error code.
type stubConnector struct {
	mu          sync.Mutex
	logged      []schema.LogEntry
	logErr      error
	queryErr    error
	queryResult schema.QueryResult
	queryCalls  int
}

func (s *stubConnector) Log(ctx context.Context, entry *schema.LogEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logErr != nil {
		return "", s.logErr
	}
	s.logged = append(s.logged, *entry)
	return "", nil
}

func (s *stubConnector) Query(ctx context.Context, query schema.LogQuery) (schema.QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryCalls++
	if s.queryErr != nil {
		return schema.QueryResult{}, s.queryErr
	}
	return s.queryResult, nil
}

func (s *stubConnector) loggedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logged)
}

// nonQueryable additionally declares no query support up front.
type nonQueryable struct{ stubConnector }

func (n *nonQueryable) SupportsQuery() bool { return false }

func testCtx() context.Context {
	return tenant.Into(context.Background(), "acme")
}

func testEntry() *schema.LogEntry {
	return &schema.LogEntry{Level: schema.LevelInfo, Source: "auth", Message: "login"}
}

func TestMultiLogBroadcastsToAll(t *testing.T) {
	a, b, c := &stubConnector{}, &stubConnector{}, &stubConnector{}
	m := NewMultiOf(nil, a, b, c)

	_, err := m.Log(testCtx(), testEntry())
	require.NoError(t, err)
	for i, sub := range []*stubConnector{a, b, c} {
		assert.Equal(t, 1, sub.loggedCount(), "connector %d", i)
	}
}

func TestMultiLogDropsDisabledLevels(t *testing.T) {
	a, b := &stubConnector{}, &stubConnector{}
	m := NewMultiOf([]schema.LogLevel{schema.LevelWarn, schema.LevelError}, a, b)

	_, err := m.Log(testCtx(), testEntry())
	require.NoError(t, err)
	assert.Zero(t, a.loggedCount())
	assert.Zero(t, b.loggedCount())

	warn := testEntry()
	warn.Level = schema.LevelWarn
	_, err = m.Log(testCtx(), warn)
	require.NoError(t, err)
	assert.Equal(t, 1, a.loggedCount())
}

func TestMultiLogStampsTimestampOnce(t *testing.T) {
	a := &stubConnector{}
	m := NewMultiOf(nil, a)

	entry := testEntry()
	_, err := m.Log(testCtx(), entry)
	require.NoError(t, err)
	assert.False(t, entry.Timestamp.IsZero())

	ts := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	stamped := testEntry()
	stamped.Timestamp = ts
	_, err = m.Log(testCtx(), stamped)
	require.NoError(t, err)
	assert.Equal(t, ts, stamped.Timestamp, "existing timestamp must never be overwritten")
}

func TestMultiLogSwallowsSinkFailures(t *testing.T) {
	healthy := &stubConnector{}
	broken := &stubConnector{logErr: errors.New("disk full")}

	var mu sync.Mutex
	var observed []string
	m := NewMultiOf(nil, healthy, broken).WithFailureHook(func(connectorType string, err error) {
		mu.Lock()
		observed = append(observed, connectorType)
		mu.Unlock()
	})

	_, err := m.Log(testCtx(), testEntry())
	require.NoError(t, err, "one broken sink must not fail the caller")
	assert.Equal(t, 1, healthy.loggedCount(), "healthy sink write side effect is observable")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, observed, 1)
	assert.Contains(t, observed[0], "stubConnector")
}

func TestMultiLogValidation(t *testing.T) {
	a := &stubConnector{}
	m := NewMultiOf(nil, a)

	_, err := m.Log(context.Background(), testEntry())
	assert.True(t, muxerr.HasCode(err, muxerr.CodeValidation), "missing tenant id")

	_, err = m.Log(testCtx(), &schema.LogEntry{Level: "loud", Source: "auth", Message: "login"})
	assert.True(t, muxerr.HasCode(err, muxerr.CodeValidation), "malformed entry")

	assert.Zero(t, a.loggedCount(), "no sub-connector runs when validation fails")
}

func TestMultiQueryFirstResponderWins(t *testing.T) {
	a := &stubConnector{queryErr: muxerr.NotImplemented("a query")}
	b := &stubConnector{queryResult: schema.QueryResult{TotalEntities: 7}}
	c := &stubConnector{}
	m := NewMultiOf(nil, a, b, c)

	result, err := m.Query(testCtx(), schema.LogQuery{})
	require.NoError(t, err)
	assert.Equal(t, 7, result.TotalEntities)
	assert.Equal(t, 1, a.queryCalls)
	assert.Equal(t, 1, b.queryCalls)
	assert.Zero(t, c.queryCalls, "probe stops at the first responder")
}

func TestMultiQueryAllNotImplemented(t *testing.T) {
	a := &stubConnector{queryErr: muxerr.NotImplemented("a query")}
	b := &stubConnector{queryErr: muxerr.NotImplemented("b query")}
	m := NewMultiOf(nil, a, b)

	_, err := m.Query(testCtx(), schema.LogQuery{})
	require.True(t, muxerr.HasCode(err, muxerr.CodeNotImplemented))
	assert.Contains(t, err.Error(), "multi connector", "failure is attributed to the multiplexer itself")
}

func TestMultiQueryOperationalErrorAborts(t *testing.T) {
	boom := muxerr.New(muxerr.CodeConnector, "backend down", nil)
	a := &stubConnector{queryErr: boom}
	b := &stubConnector{}
	c := &stubConnector{}
	m := NewMultiOf(nil, a, b, c)

	_, err := m.Query(testCtx(), schema.LogQuery{})
	assert.True(t, muxerr.HasCode(err, muxerr.CodeConnector))
	assert.Zero(t, b.queryCalls)
	assert.Zero(t, c.queryCalls)
}

func TestMultiQuerySkipsDeclaredNonQueryable(t *testing.T) {
	skip := &nonQueryable{}
	store := &stubConnector{queryResult: schema.QueryResult{TotalEntities: 3}}
	m := NewMultiOf(nil, skip, store)

	result, err := m.Query(testCtx(), schema.LogQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalEntities)
	assert.Zero(t, skip.queryCalls, "declared non-queryable sinks are never probed")
}

func TestMultiSupportsQuery(t *testing.T) {
	assert.False(t, NewMultiOf(nil, &nonQueryable{}).SupportsQuery())
	assert.True(t, NewMultiOf(nil, &nonQueryable{}, &stubConnector{}).SupportsQuery())
}

func TestNewMultiFromRegistry(t *testing.T) {
	reg := DefaultRegistry()
	m, err := NewMulti(reg, map[string]any{
		"connectors": []any{"silent", map[string]any{"type": "memory"}},
		"levels":     []any{"info", "error"},
	})
	require.NoError(t, err)

	entry := testEntry()
	_, err = m.Log(testCtx(), entry)
	require.NoError(t, err)

	result, err := m.Query(testCtx(), schema.LogQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalEntities, "memory sub-connector answers the query")
}

func TestNewMultiRejectsBadConfig(t *testing.T) {
	reg := DefaultRegistry()

	_, err := NewMulti(reg, map[string]any{})
	assert.True(t, muxerr.HasCode(err, muxerr.CodeValidation), "empty connector list")

	_, err = NewMulti(reg, map[string]any{"connectors": []any{"datadog"}})
	assert.True(t, muxerr.HasCode(err, muxerr.CodeNotFound), "unregistered type")

	_, err = NewMulti(reg, map[string]any{
		"connectors": []any{"silent"},
		"levels":     []any{"loud"},
	})
	assert.True(t, muxerr.HasCode(err, muxerr.CodeValidation), "unknown level")
}

func TestMultiNesting(t *testing.T) {
	reg := DefaultRegistry()
	m, err := NewMulti(reg, map[string]any{
		"connectors": []any{
			"silent",
			map[string]any{"type": "multi", "options": map[string]any{
				"connectors": []any{"memory"},
			}},
		},
	})
	require.NoError(t, err)

	_, err = m.Log(testCtx(), testEntry())
	require.NoError(t, err)

	result, err := m.Query(testCtx(), schema.LogQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalEntities, "a multi may contain another multi")
}
