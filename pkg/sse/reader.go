package sse

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"net"
	"os"
	"strings"
)

// DataPrefix is the only SSE field prefix the Reader interprets.
const DataPrefix = "data: "

const (
	initialBufferSize = 64 * 1024
	maxLineSize       = 4 * 1024 * 1024
)

// Reader turns a streaming response body into a sequence of decoded JSON
// events. It borrows the source for the duration of iteration and never
// closes it.
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐   ┌────────────────────────────────┐
// │  Reader.Next()   │──▶│ destination io.Writer (tee)    │
// └──────────────────┘   └────────────────────────────────┘
// │
// ▼
// ┌──────────────────┐
// │      Event       │
// └──────────────────┘
//
// The optional destination receives an exact copy of every line so callers
// can record the wire bytes while inspecting decoded events.
type Reader struct {
	scanner *bufio.Scanner
	dest    io.Writer
	done    bool
}

// NewReader returns a Reader that decodes "data: " lines from src.
func NewReader(src io.Reader) *Reader {
	return NewTeeReader(src, nil)
}

// NewTeeReader returns a Reader that decodes "data: " lines from src and
// writes every raw line through to dest. A nil dest disables the tee.
func NewTeeReader(src io.Reader, dest io.Writer) *Reader {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, initialBufferSize), maxLineSize)
	scanner.Split(scanLines)

	return &Reader{
		scanner: scanner,
		dest:    dest,
	}
}

// Next returns the next decoded event. It blocks until a line carrying a JSON
// document arrives. Next returns nil, nil once the source is exhausted or has
// been closed by the caller, and keeps doing so on later calls.
//
// Lines without the "data: " prefix and payloads that are not JSON objects
// are skipped without error.
func (r *Reader) Next() (*Event, error) {
	if r.done {
		return nil, nil
	}

	for r.scanner.Scan() {
		raw := r.scanner.Bytes()

		if r.dest != nil {
			if _, err := r.dest.Write(raw); err != nil {
				r.done = true
				return nil, err
			}
		}

		if ev, ok := decodeLine(trimEOL(string(raw))); ok {
			return ev, nil
		}
	}

	r.done = true

	if err := r.scanner.Err(); err != nil && !IsClosed(err) {
		return nil, err
	}

	return nil, nil
}

// All returns the remaining events as a lazy sequence. Iteration stops after
// the first error, which is yielded with a nil event. Breaking out of the loop
// early leaves the source unread; closing it remains the caller's job.
func (r *Reader) All() iter.Seq2[*Event, error] {
	return func(yield func(*Event, error) bool) {
		for {
			ev, err := r.Next()
			if err != nil {
				yield(nil, err)
				return
			}
			if ev == nil {
				return
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

// Collect drains src and returns every decoded document in wire order.
func Collect(src io.Reader) ([]StreamEvent, error) {
	events := []StreamEvent{}
	for ev, err := range NewReader(src).All() {
		if err != nil {
			return events, err
		}
		events = append(events, ev.Data)
	}
	return events, nil
}

// IsClosed reports whether err means the stream was shut down by its owner
// rather than broken by the network. Such errors end iteration cleanly.
func IsClosed(err error) bool {
	return errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, context.Canceled)
}

// scanLines is a bufio.SplitFunc for SSE line endings: "\r\n", "\n" or a
// lone "\r". Tokens keep their terminator so the tee sees the wire bytes.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i+1], nil
		}
		// A "\r" at the end of the buffer may be the first half of "\r\n".
		if i+1 == len(data) && !atEOF {
			return 0, nil, nil
		}
		if i+1 < len(data) && data[i+1] == '\n' {
			return i + 2, data[:i+2], nil
		}
		return i + 1, data[:i+1], nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

func decodeLine(line string) (*Event, bool) {
	if line == "" {
		return nil, false
	}

	payload, ok := strings.CutPrefix(line, DataPrefix)
	if !ok {
		return nil, false
	}

	var data StreamEvent
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return nil, false
	}

	// "null" decodes into a nil map without error.
	if data == nil {
		return nil, false
	}

	return &Event{
		Data: data,
		Raw:  json.RawMessage(payload),
	}, true
}
