package schema

import "time"

// LogLevel is the enumerated severity of a log entry.
type LogLevel string

const (
	LevelTrace LogLevel = "trace"
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// AllLevels returns every known level, least severe first.
func AllLevels() []LogLevel {
	return []LogLevel{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError}
}

// Valid reports whether l is one of the known levels.
func (l LogLevel) Valid() bool {
	switch l {
	case LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError:
		return true
	}
	return false
}

// ErrorDetail is the structured failure attached to an entry that records an
// error, with an optional nested cause chain.
type ErrorDetail struct {
	Kind    string       `json:"kind"`
	Message string       `json:"message"`
	Cause   *ErrorDetail `json:"cause,omitempty"`
}

// LogEntry is the unit of data carried through the system.
//
// Level, Source and Message are always present. Timestamp may be absent at
// creation; the first connector that handles the entry fills it with the
// current time, and downstream connectors never overwrite it. ID is allocated
// by connectors that persist entries; write-only sinks leave it empty.
//
// Example:
//
//	{
//	  "level": "error",
//	  "source": "auth",
//	  "timestamp": "2023-10-01T00:00:00Z",
//	  "message": "token refresh failed",
//	  "error": {"kind": "Unauthorized", "message": "expired", "cause": {"kind": "IO", "message": "timeout"}},
//	  "data": {"userId": "u-17"}
//	}
type LogEntry struct {
	ID        string         `json:"id,omitempty"`
	Level     LogLevel       `json:"level"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
	Message   string         `json:"message"`
	Error     *ErrorDetail   `json:"error,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}
