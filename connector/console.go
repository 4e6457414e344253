package connector

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/logmux/logmux-core/muxerr"
	"github.com/logmux/logmux-core/schema"
)

// Console prints one formatted line per entry to an output stream. It is a
// write-only sink: Query always fails with the not_implemented code.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole builds a console connector from configuration. The optional
// "target" key selects "stdout" (default) or "stderr".
func NewConsole(config map[string]any) (Connector, error) {
	out := io.Writer(os.Stdout)
	if target, ok := config["target"].(string); ok {
		switch target {
		case "", "stdout":
		case "stderr":
			out = os.Stderr
		default:
			return nil, fmt.Errorf("console connector: unknown target %q", target)
		}
	}
	return &Console{out: out}, nil
}

// NewConsoleWriter builds a console connector printing to w.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Log formats and prints the entry.
func (c *Console) Log(ctx context.Context, entry *schema.LogEntry) (string, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s: %s",
		entry.Timestamp.Format(time.RFC3339Nano),
		strings.ToUpper(string(entry.Level)),
		entry.Source,
		entry.Message)
	for detail := entry.Error; detail != nil; detail = detail.Cause {
		fmt.Fprintf(&b, " | %s: %s", detail.Kind, detail.Message)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintln(c.out, b.String()); err != nil {
		return "", muxerr.New(muxerr.CodeConnector, "console connector write failed", err)
	}
	return "", nil
}

// Query fails: a console is not a store.
func (c *Console) Query(ctx context.Context, query schema.LogQuery) (schema.QueryResult, error) {
	return schema.QueryResult{}, muxerr.NotImplemented("console connector query")
}

// SupportsQuery reports false.
func (c *Console) SupportsQuery() bool { return false }

var _ Connector = (*Console)(nil)
var _ QuerySupporter = (*Console)(nil)
