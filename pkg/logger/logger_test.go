package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/thinkprobe/pkg/logger"
)

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func decodeLines(buf *bytes.Buffer) []map[string]any {
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var record map[string]any
		ExpectWithOffset(1, json.Unmarshal([]byte(line), &record)).To(Succeed())
		records = append(records, record)
	}
	return records
}

var _ = Describe("New", func() {
	It("writes text records at info level by default", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf))
		l.Debug("hidden")
		l.Info("probing endpoint", "scenarios", 2)

		Expect(buf.String()).NotTo(ContainSubstring("hidden"))
		Expect(buf.String()).To(ContainSubstring("level=INFO"))
		Expect(buf.String()).To(ContainSubstring(`msg="probing endpoint" scenarios=2`))
	})

	It("includes debug records with WithDebug", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithDebug(true))
		l.Debug("stream opened")
		Expect(buf.String()).To(ContainSubstring("stream opened"))
	})

	It("writes one JSON object per record with WithJSON", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
		l.Info("scenario finished", "events", 11)
		l.Warn("recording disabled")

		records := decodeLines(&buf)
		Expect(records).To(HaveLen(2))
		Expect(records[0]["msg"]).To(Equal("scenario finished"))
		Expect(records[0]["events"]).To(BeNumerically("==", 11))
		Expect(records[1]["level"]).To(Equal("WARN"))
	})

	It("prefers JSON over pretty output", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true), logger.WithJSON(true))
		l.Info("structured")
		Expect(decodeLines(&buf)).To(HaveLen(1))
	})

	It("writes pretty records with WithPretty", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithPretty(true))
		l.Info("probe failed", "kind", "refused")

		Expect(buf.String()).To(ContainSubstring("probe failed"))
		Expect(buf.String()).To(ContainSubstring("refused"))
	})

	It("adds the caller with WithSource", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true), logger.WithSource(true))
		l.Info("located")

		records := decodeLines(&buf)
		Expect(records[0]).To(HaveKey("source"))
		Expect(records[0]["source"]).To(HaveKeyWithValue("file", HaveSuffix("logger_test.go")))
	})

	It("leaves the caller out by default", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
		l.Info("anonymous")
		Expect(decodeLines(&buf)[0]).NotTo(HaveKey("source"))
	})

	It("keeps attributes bound with With and WithGroup", func() {
		var buf bytes.Buffer
		l := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
		l.With("scenario", "thinking").WithGroup("stream").Info("opened", "status", 200)

		records := decodeLines(&buf)
		Expect(records[0]["scenario"]).To(Equal("thinking"))
		Expect(records[0]["stream"]).To(HaveKeyWithValue("status", BeNumerically("==", 200)))
	})
})

var _ = Describe("Nop", func() {
	It("is disabled at every level", func() {
		l := logger.Nop()
		for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelError} {
			Expect(l.Enabled(context.Background(), level)).To(BeFalse())
		}
		Expect(func() {
			l.With("key", "value").WithGroup("group").Error("msg")
		}).NotTo(Panic())
	})
})

var _ = Describe("Multi", func() {
	var console, file bytes.Buffer

	BeforeEach(func() {
		console.Reset()
		file.Reset()
	})

	It("applies each logger's own level", func() {
		l := logger.Multi(
			logger.New(logger.WithWriter(&console)),
			logger.New(logger.WithWriter(&file), logger.WithJSON(true), logger.WithDebug(true)),
		)
		l.Debug("sending streaming request")
		l.Info("probing endpoint")

		Expect(console.String()).NotTo(ContainSubstring("sending streaming request"))
		Expect(console.String()).To(ContainSubstring("probing endpoint"))

		records := decodeLines(&file)
		Expect(records).To(HaveLen(2))
		Expect(records[0]["msg"]).To(Equal("sending streaming request"))
	})

	It("is enabled when any logger is", func() {
		l := logger.Multi(logger.Nop(), logger.New(logger.WithWriter(&console), logger.WithDebug(true)))
		Expect(l.Enabled(context.Background(), slog.LevelDebug)).To(BeTrue())
		Expect(logger.Multi(logger.Nop()).Enabled(context.Background(), slog.LevelError)).To(BeFalse())
	})

	It("keeps logging to the others when one writer fails", func() {
		l := logger.Multi(
			logger.New(logger.WithWriter(brokenWriter{})),
			logger.New(logger.WithWriter(&console)),
		)
		l.Error("probe failed")
		Expect(console.String()).To(ContainSubstring("probe failed"))
	})

	It("passes With and WithGroup to every logger", func() {
		l := logger.Multi(
			logger.New(logger.WithWriter(&console), logger.WithJSON(true)),
			logger.New(logger.WithWriter(&file), logger.WithJSON(true)),
		)
		l.With("request_id", "abc").WithGroup("result").Info("done", "events", 3)

		for _, buf := range []*bytes.Buffer{&console, &file} {
			records := decodeLines(buf)
			Expect(records).To(HaveLen(1))
			Expect(records[0]["request_id"]).To(Equal("abc"))
			Expect(records[0]["result"]).To(HaveKeyWithValue("events", BeNumerically("==", 3)))
		}
	})
})
