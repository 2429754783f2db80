package probe_test

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/thinkprobe/pkg/probe"
)

var _ = Describe("Result", func() {
	Describe("Check", func() {
		It("ignores the thinking toggle unless asked", func() {
			r := &probe.Result{Scenario: probe.ThinkingScenario, StatusCode: 200}
			Expect(r.Check(false)).To(Succeed())
			Expect(r.Check(true)).To(MatchError(probe.ErrThinkingMissing))
		})

		It("treats redacted thinking blocks as thinking", func() {
			r := &probe.Result{Scenario: probe.PlainScenario, StatusCode: 200, ThinkingBlocks: 1}
			Expect(r.Check(true)).To(MatchError(probe.ErrUnexpectedThinking))
		})

		It("fails on request errors before anything else", func() {
			boom := errors.New("boom")
			r := &probe.Result{Scenario: probe.ThinkingScenario, Err: boom}
			Expect(r.Check(false)).To(MatchError(boom))
			Expect(r.Check(false).Error()).To(HavePrefix("thinking: "))
		})

		It("fails on an in-stream error event", func() {
			r := &probe.Result{Scenario: probe.PlainScenario, StatusCode: 200, StreamError: "Overloaded"}
			Expect(r.Check(false)).To(MatchError("plain: stream error: Overloaded"))
		})

		It("joins failures across results", func() {
			results := []*probe.Result{
				{Scenario: probe.ThinkingScenario, StatusCode: 200},
				{Scenario: probe.PlainScenario, StatusCode: 500},
			}
			err := probe.Check(results, true)
			Expect(errors.Is(err, probe.ErrThinkingMissing)).To(BeTrue())
			Expect(errors.Is(err, probe.ErrStatus)).To(BeTrue())
		})
	})

	Describe("WriteSummary", func() {
		It("prints one row per result with plain marks off a terminal", func() {
			results := []*probe.Result{
				{
					Scenario:   probe.ThinkingScenario,
					StatusCode: 200,
					RequestID:  "0123456789abcdef",
					Events:     11,
					Thinking:   "25 × 47",
					Text:       "1175",
					StopReason: "end_turn",
				},
				{Scenario: probe.PlainScenario, Err: errors.New("refused")},
			}

			var out bytes.Buffer
			probe.WriteSummary(&out, results, false)

			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			Expect(lines).To(HaveLen(3))
			Expect(lines[0]).To(HavePrefix("SCENARIO"))
			Expect(strings.Fields(lines[1])).To(Equal([]string{
				"thinking", "200", "11", "7", "4", "end_turn", "0ms", "01234567...", "✓",
			}))
			Expect(strings.Fields(lines[2])).To(Equal([]string{
				"plain", "-", "0", "0", "0", "-", "0ms", "✗",
			}))
		})
	})
})
