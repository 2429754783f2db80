package probe

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/papercomputeco/thinkprobe/pkg/sse"
)

var (
	// ErrThinkingMissing is reported when a scenario with thinking enabled
	// streamed no thinking content.
	ErrThinkingMissing = errors.New("no thinking content in stream")

	// ErrUnexpectedThinking is reported when a scenario without thinking
	// streamed thinking content.
	ErrUnexpectedThinking = errors.New("thinking content in stream without thinking enabled")

	// ErrStatus is reported for a non-2xx response.
	ErrStatus = errors.New("unexpected status")
)

// Result is what a single scenario observed.
type Result struct {
	Scenario   Scenario
	RequestID  string
	StatusCode int

	// Events counts every decoded event; Printed only those matching the
	// scenario's type filter.
	Events  int
	Printed int
	Types   map[string]int

	// ThinkingBlocks counts thinking and redacted_thinking content blocks.
	ThinkingBlocks int
	Thinking       string
	Text           string
	Signature      bool
	StopReason     string

	// StreamError is the message of an in-stream "error" event.
	StreamError string

	RecordPath string
	Duration   time.Duration

	// Err is a request or transport failure. Probe output up to the failure
	// is still valid.
	Err error
}

// HasThinking reports whether any thinking content was streamed.
func (r *Result) HasThinking() bool {
	return r.ThinkingBlocks > 0 || r.Thinking != ""
}

// Check reports a request failure, a non-2xx status or an in-stream error
// event. With expectThinking it also validates the result against the
// scenario's thinking toggle.
func (r *Result) Check(expectThinking bool) error {
	switch {
	case r.Err != nil:
		return fmt.Errorf("%s: %w", r.Scenario.Name, r.Err)
	case r.StatusCode < 200 || r.StatusCode > 299:
		return fmt.Errorf("%s: %w: %d", r.Scenario.Name, ErrStatus, r.StatusCode)
	case r.StreamError != "":
		return fmt.Errorf("%s: stream error: %s", r.Scenario.Name, r.StreamError)
	case !expectThinking:
		return nil
	case r.Scenario.Thinking && !r.HasThinking():
		return fmt.Errorf("%s: %w", r.Scenario.Name, ErrThinkingMissing)
	case !r.Scenario.Thinking && r.HasThinking():
		return fmt.Errorf("%s: %w", r.Scenario.Name, ErrUnexpectedThinking)
	default:
		return nil
	}
}

// Check validates every result and joins the failures.
func Check(results []*Result, expectThinking bool) error {
	var errs []error
	for _, r := range results {
		if err := r.Check(expectThinking); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// collector accumulates a Result from decoded events. Field lookups go
// through gjson on the raw payload so nested fields need no schema.
type collector struct {
	result   *Result
	thinking strings.Builder
	text     strings.Builder
}

func newCollector(r *Result) *collector {
	if r.Types == nil {
		r.Types = map[string]int{}
	}
	return &collector{result: r}
}

func (c *collector) add(ev *sse.Event) {
	r := c.result
	eventType := ev.Type()

	r.Events++
	r.Types[eventType]++

	switch eventType {
	case "content_block_start":
		switch gjson.GetBytes(ev.Raw, "content_block.type").String() {
		case "thinking", "redacted_thinking":
			r.ThinkingBlocks++
		}

	case "content_block_delta":
		delta := gjson.GetBytes(ev.Raw, "delta")
		switch delta.Get("type").String() {
		case "thinking_delta":
			c.thinking.WriteString(delta.Get("thinking").String())
		case "text_delta":
			c.text.WriteString(delta.Get("text").String())
		case "signature_delta":
			r.Signature = true
		}

	case "message_delta":
		if reason := gjson.GetBytes(ev.Raw, "delta.stop_reason"); reason.Exists() {
			r.StopReason = reason.String()
		}

	case "error":
		r.StreamError = gjson.GetBytes(ev.Raw, "error.message").String()
	}
}

func (c *collector) finish() {
	c.result.Thinking = c.thinking.String()
	c.result.Text = c.text.String()
}
