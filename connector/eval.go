package connector

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/logmux/logmux-core/muxerr"
	"github.com/logmux/logmux-core/schema"
)

const defaultPageSize = 50

// runQuery is the in-process query pipeline shared by the memory and file
// connectors: filter, sort, count, paginate, project. The input slice is
// owned by the caller and is not modified; returned entries are copies.
func runQuery(entries []schema.LogEntry, query schema.LogQuery) (schema.QueryResult, error) {
	matched := make([]schema.LogEntry, 0, len(entries))
	for _, e := range entries {
		ok, err := evalCondition(query.Condition, e)
		if err != nil {
			return schema.QueryResult{}, err
		}
		if ok {
			matched = append(matched, e)
		}
	}

	sortEntries(matched, query.Sort)

	offset, err := decodeCursor(query.Cursor)
	if err != nil {
		return schema.QueryResult{}, err
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	total := len(matched)
	if offset > total {
		offset = total
	}
	end := offset + pageSize
	if end > total {
		end = total
	}

	page := make([]schema.LogEntry, end-offset)
	copy(page, matched[offset:end])
	if len(query.Projection) > 0 {
		for i := range page {
			page[i] = projectEntry(page[i], query.Projection)
		}
	}

	result := schema.QueryResult{
		Entries:       page,
		PageSize:      pageSize,
		TotalEntities: total,
	}
	if end < total {
		result.Cursor = encodeCursor(end)
	}
	return result, nil
}

// evalCondition walks the boolean tree. A nil or zero condition matches.
func evalCondition(c *schema.Condition, entry schema.LogEntry) (bool, error) {
	if c == nil {
		return true, nil
	}
	if len(c.And) > 0 {
		for i := range c.And {
			ok, err := evalCondition(&c.And[i], entry)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
	if len(c.Or) > 0 {
		for i := range c.Or {
			ok, err := evalCondition(&c.Or[i], entry)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
	if c.Property == "" {
		return true, nil
	}

	got, ok := propertyValue(entry, c.Property)
	if !ok {
		return false, muxerr.New(muxerr.CodeValidation, fmt.Sprintf("unknown entry property %q", c.Property), nil)
	}
	return compareValues(got, c.Operator, c.Value)
}

// propertyValue extracts a named property from an entry.
func propertyValue(e schema.LogEntry, name string) (any, bool) {
	switch name {
	case schema.PropertyID:
		return e.ID, true
	case schema.PropertyLevel:
		return string(e.Level), true
	case schema.PropertySource:
		return e.Source, true
	case schema.PropertyTimestamp:
		return e.Timestamp, true
	case schema.PropertyMessage:
		return e.Message, true
	}
	return nil, false
}

func compareValues(got any, operator string, want any) (bool, error) {
	if ts, ok := got.(time.Time); ok {
		wantTS, err := toTime(want)
		if err != nil {
			return false, err
		}
		switch operator {
		case schema.OpEq:
			return ts.Equal(wantTS), nil
		case schema.OpNe:
			return !ts.Equal(wantTS), nil
		case schema.OpGe:
			return !ts.Before(wantTS), nil
		case schema.OpLe:
			return !ts.After(wantTS), nil
		}
		return false, muxerr.New(muxerr.CodeValidation, fmt.Sprintf("operator %q not applicable to timestamps", operator), nil)
	}

	gotStr := fmt.Sprintf("%v", got)
	wantStr := fmt.Sprintf("%v", want)
	switch operator {
	case schema.OpEq:
		return gotStr == wantStr, nil
	case schema.OpNe:
		return gotStr != wantStr, nil
	case schema.OpGe:
		return gotStr >= wantStr, nil
	case schema.OpLe:
		return gotStr <= wantStr, nil
	case schema.OpContains:
		return strings.Contains(gotStr, wantStr), nil
	}
	return false, muxerr.New(muxerr.CodeValidation, fmt.Sprintf("unknown operator %q", operator), nil)
}

// toTime accepts time.Time values and RFC 3339 strings, the two forms a
// timestamp bound takes depending on whether the condition was built in
// process or decoded from JSON.
func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		ts, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, muxerr.New(muxerr.CodeValidation, fmt.Sprintf("unparseable timestamp bound %q", t), err)
		}
		return ts, nil
	}
	return time.Time{}, muxerr.New(muxerr.CodeValidation, fmt.Sprintf("timestamp bound has unsupported type %T", v), nil)
}

func sortEntries(entries []schema.LogEntry, spec []schema.Sort) {
	if len(spec) == 0 {
		return
	}
	sort.SliceStable(entries, func(i, j int) bool {
		for _, s := range spec {
			a, okA := propertyValue(entries[i], s.Property)
			b, okB := propertyValue(entries[j], s.Property)
			if !okA || !okB {
				continue
			}
			cmp := compareAny(a, b)
			if cmp == 0 {
				continue
			}
			if s.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func compareAny(a, b any) int {
	if ta, ok := a.(time.Time); ok {
		tb, _ := b.(time.Time)
		return ta.Compare(tb)
	}
	return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
}

// projectEntry keeps only the requested properties of an entry.
func projectEntry(e schema.LogEntry, properties []string) schema.LogEntry {
	var out schema.LogEntry
	for _, p := range properties {
		switch p {
		case schema.PropertyID:
			out.ID = e.ID
		case schema.PropertyLevel:
			out.Level = e.Level
		case schema.PropertySource:
			out.Source = e.Source
		case schema.PropertyTimestamp:
			out.Timestamp = e.Timestamp
		case schema.PropertyMessage:
			out.Message = e.Message
		}
	}
	return out
}

// Cursors are opaque to callers: a base64-wrapped offset into the sorted match set.
func encodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset)))
}

func decodeCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, muxerr.New(muxerr.CodeBadCursor, "undecodable cursor", err)
	}
	offset, err := strconv.Atoi(string(raw))
	if err != nil || offset < 0 {
		return 0, muxerr.New(muxerr.CodeBadCursor, "cursor does not name a page offset", err)
	}
	return offset, nil
}
