package connector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/logmux/logmux-core/muxerr"
	"github.com/logmux/logmux-core/schema"
)

// File is a durable queryable connector. It appends CBOR-encoded entries to an
// active file and optionally rotates it once it passes a size threshold,
// gzip-compressing rotated segments. Query decodes every segment plus the
// active file and runs the shared in-process query pipeline over the result.
type File struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	compress bool

	file    *os.File
	encoder *cbor.Encoder
	size    int64
	closed  bool
}

// NewFile builds a file connector. Configuration keys:
//
//   - "path" (required): active file path; rotated segments live next to it.
//   - "max_bytes": rotate the active file once it exceeds this size; 0
//     disables rotation.
//   - "compress": gzip rotated segments.
func NewFile(config map[string]any) (Connector, error) {
	path, _ := config["path"].(string)
	if path == "" {
		return nil, fmt.Errorf("file connector requires 'path' in config")
	}

	f := &File{path: path}
	if maxBytes, ok := toInt64(config["max_bytes"]); ok && maxBytes > 0 {
		f.maxBytes = maxBytes
	}
	if compress, ok := config["compress"].(bool); ok {
		f.compress = compress
	}

	if err := f.open(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *File) open() error {
	handle, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("file connector: opening %s: %w", f.path, err)
	}
	info, err := handle.Stat()
	if err != nil {
		handle.Close()
		return fmt.Errorf("file connector: stat %s: %w", f.path, err)
	}
	f.file = handle
	f.encoder = cbor.NewEncoder(&countingWriter{w: handle, n: &f.size})
	f.size = info.Size()
	return nil
}

// Log appends a copy of the entry under a freshly allocated id.
func (f *File) Log(ctx context.Context, entry *schema.LogEntry) (string, error) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	stored := *entry
	stored.ID = uuid.NewString()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return "", muxerr.New(muxerr.CodeConnector, "file connector is closed", nil)
	}
	if err := f.encoder.Encode(stored); err != nil {
		return "", muxerr.New(muxerr.CodeConnector, "file connector write failed", err)
	}
	if f.maxBytes > 0 && f.size >= f.maxBytes {
		if err := f.rotate(); err != nil {
			return "", muxerr.New(muxerr.CodeConnector, "file connector rotation failed", err)
		}
	}
	return stored.ID, nil
}

// rotate closes the active file, renames it to a timestamped segment, then
// reopens a fresh active file. Caller holds the mutex.
func (f *File) rotate() error {
	if err := f.file.Close(); err != nil {
		return err
	}

	segment := fmt.Sprintf("%s.%d", f.path, time.Now().UnixNano())
	if err := os.Rename(f.path, segment); err != nil {
		return err
	}
	if f.compress {
		if err := compressSegment(segment); err != nil {
			return err
		}
	}
	return f.open()
}

func compressSegment(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(dst)
	if _, err := io.Copy(gz, src); err != nil {
		dst.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

// Query decodes rotated segments oldest first, then the active file, and
// evaluates the query over the combined entries.
func (f *File) Query(ctx context.Context, query schema.LogQuery) (schema.QueryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return schema.QueryResult{}, muxerr.New(muxerr.CodeConnector, "file connector is closed", nil)
	}

	segments, err := filepath.Glob(f.path + ".*")
	if err != nil {
		return schema.QueryResult{}, muxerr.New(muxerr.CodeConnector, "file connector segment scan failed", err)
	}
	sort.Strings(segments)

	var entries []schema.LogEntry
	for _, segment := range append(segments, f.path) {
		decoded, err := decodeSegment(segment)
		if err != nil {
			return schema.QueryResult{}, muxerr.New(muxerr.CodeConnector, fmt.Sprintf("file connector: reading %s", segment), err)
		}
		entries = append(entries, decoded...)
	}
	return runQuery(entries, query)
}

func decodeSegment(path string) ([]schema.LogEntry, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var reader io.Reader = src
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(src)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}

	var entries []schema.LogEntry
	decoder := cbor.NewDecoder(reader)
	for {
		var entry schema.LogEntry
		if err := decoder.Decode(&entry); err != nil {
			if errors.Is(err, io.EOF) {
				return entries, nil
			}
			return nil, err
		}
		entries = append(entries, entry)
	}
}

// SupportsQuery reports true.
func (f *File) SupportsQuery() bool { return true }

// Close releases the active file handle. Log and Query fail after Close.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.file.Close()
}

type countingWriter struct {
	w io.Writer
	n *int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	*c.n += int64(n)
	return n, err
}

func toInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case float64:
		return int64(val), true
	default:
		return 0, false
	}
}

var _ Connector = (*File)(nil)
var _ QuerySupporter = (*File)(nil)
