// Package probe runs streaming requests against a Messages endpoint, prints
// the decoded events and summarises what each stream contained.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/papercomputeco/thinkprobe/pkg/client"
	"github.com/papercomputeco/thinkprobe/pkg/messages"
)

// maxBodyCapture bounds how much of a non-2xx body is kept for printing.
const maxBodyCapture = 64 * 1024

// Streamer opens a streaming response for a request.
type Streamer interface {
	Stream(ctx context.Context, req *messages.Request) (*client.Stream, error)
}

// Config is the request and output settings shared by every scenario.
type Config struct {
	Model        string
	MaxTokens    int
	Prompt       string
	BudgetTokens int

	// RecordDir receives one raw .sse file per scenario when set.
	RecordDir string

	// Render prints the accumulated answer as terminal markdown.
	Render bool

	// Color enables coloured event JSON.
	Color bool
}

// Runner executes scenarios one after another.
type Runner struct {
	streamer Streamer
	config   Config
	printer  *printer
	logger   *slog.Logger
}

// NewRunner creates a Runner writing probe output to out.
func NewRunner(streamer Streamer, config Config, out io.Writer, logger *slog.Logger) *Runner {
	return &Runner{
		streamer: streamer,
		config:   config,
		printer:  &printer{w: out, color: config.Color},
		logger:   logger,
	}
}

// Run executes the scenarios in order. A failing scenario never stops the
// run; a cancelled context does.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) []*Result {
	results := make([]*Result, 0, len(scenarios))
	for i, s := range scenarios {
		if ctx.Err() != nil {
			break
		}
		results = append(results, r.RunScenario(ctx, i+1, s))
	}
	return results
}

// RunScenario sends one request and prints its stream. n is the test number
// shown in the header.
func (r *Runner) RunScenario(ctx context.Context, n int, s Scenario) *Result {
	start := time.Now()
	result := &Result{Scenario: s}
	defer func() {
		result.Duration = time.Since(start)
	}()

	r.printer.header(n, s)

	req := messages.NewRequest(messages.Options{
		Model:        r.config.Model,
		MaxTokens:    r.config.MaxTokens,
		Prompt:       r.config.Prompt,
		Thinking:     s.Thinking,
		BudgetTokens: r.config.BudgetTokens,
	})
	if err := req.Validate(); err != nil {
		r.fail(result, err)
		return result
	}

	stream, err := r.streamer.Stream(ctx, req)
	if err != nil {
		r.fail(result, err)
		return result
	}
	defer stream.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = stream.Close()
	})
	defer stop()

	result.StatusCode = stream.StatusCode
	result.RequestID = stream.RequestID
	r.printer.status(stream.StatusCode)

	var tees []io.Writer
	body := &limitedBuffer{max: maxBodyCapture}
	if !stream.OK() {
		tees = append(tees, body)
	}
	if r.config.RecordDir != "" {
		f, err := r.openRecord(s, stream.RequestID)
		if err != nil {
			r.printer.warn("recording disabled: %v", err)
			r.logger.Warn("recording disabled for scenario", "scenario", s.Name, "error", err)
		} else {
			defer f.Close()
			result.RecordPath = f.Name()
			tees = append(tees, f)
		}
	}
	if len(tees) > 0 {
		stream.Tee(io.MultiWriter(tees...))
	}

	c := newCollector(result)
	for ev, err := range stream.Events() {
		if err != nil {
			r.fail(result, err)
			break
		}
		c.add(ev)
		if s.Wants(ev.Type()) {
			r.printer.event(ev.Raw)
			result.Printed++
		}
	}
	c.finish()

	if result.Events == 0 && !stream.OK() {
		r.printer.body(body.Bytes())
	}
	if result.Err == nil && ctx.Err() != nil {
		r.fail(result, ctx.Err())
	}

	r.logger.Debug("scenario finished",
		"scenario", s.Name,
		"request_id", result.RequestID,
		"status", result.StatusCode,
		"events", result.Events,
		"thinking_blocks", result.ThinkingBlocks,
		"stop_reason", result.StopReason,
	)

	if r.config.Render && result.Text != "" {
		r.printer.markdown("Answer", result.Text)
	}
	return result
}

func (r *Runner) fail(result *Result, err error) {
	result.Err = err
	r.printer.error(err)

	attrs := []any{"scenario", result.Scenario.Name, "error", err}
	var connErr *client.ConnectionError
	if errors.As(err, &connErr) {
		attrs = append(attrs, "kind", connErr.Kind())
	}
	r.logger.Error("probe failed", attrs...)
}

func (r *Runner) openRecord(s Scenario, requestID string) (*os.File, error) {
	if err := os.MkdirAll(r.config.RecordDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating record directory: %w", err)
	}
	path := filepath.Join(r.config.RecordDir, fmt.Sprintf("%s-%s.sse", s.Name, requestID))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating record file: %w", err)
	}
	return f, nil
}
