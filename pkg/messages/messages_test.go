package messages_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/thinkprobe/pkg/messages"
)

var _ = Describe("Request", func() {
	var opts messages.Options

	BeforeEach(func() {
		opts = messages.Options{
			Model:        "claude-sonnet-4.5",
			MaxTokens:    2048,
			Prompt:       "What is 25 * 47? Show your reasoning step by step.",
			Thinking:     true,
			BudgetTokens: 1000,
		}
	})

	Describe("NewRequest", func() {
		It("always streams", func() {
			req := messages.NewRequest(opts)
			Expect(req.Stream).To(BeTrue())

			opts.Thinking = false
			Expect(messages.NewRequest(opts).Stream).To(BeTrue())
		})

		It("wraps the prompt in a single user message", func() {
			req := messages.NewRequest(opts)
			Expect(req.Messages).To(Equal([]messages.Message{
				{Role: messages.RoleUser, Content: opts.Prompt},
			}))
		})

		It("encodes the thinking block when enabled", func() {
			body, err := json.Marshal(messages.NewRequest(opts))
			Expect(err).NotTo(HaveOccurred())
			Expect(body).To(MatchJSON(`{
				"model": "claude-sonnet-4.5",
				"max_tokens": 2048,
				"messages": [{"role": "user", "content": "What is 25 * 47? Show your reasoning step by step."}],
				"stream": true,
				"thinking": {"type": "enabled", "budget_tokens": 1000}
			}`))
		})

		It("omits the thinking block when disabled", func() {
			opts.Thinking = false
			req := messages.NewRequest(opts)
			Expect(req.HasThinking()).To(BeFalse())

			body, err := json.Marshal(req)
			Expect(err).NotTo(HaveOccurred())

			var fields map[string]any
			Expect(json.Unmarshal(body, &fields)).To(Succeed())
			Expect(fields).NotTo(HaveKey("thinking"))
			Expect(fields).To(HaveKeyWithValue("stream", true))
		})
	})

	Describe("Validate", func() {
		It("accepts the default probe request", func() {
			Expect(messages.NewRequest(opts).Validate()).To(Succeed())
		})

		It("accepts a request without thinking and without a budget", func() {
			opts.Thinking = false
			opts.BudgetTokens = 0
			Expect(messages.NewRequest(opts).Validate()).To(Succeed())
		})

		It("requires a model", func() {
			opts.Model = ""
			Expect(messages.NewRequest(opts).Validate()).To(MatchError(ContainSubstring("model")))
		})

		It("requires positive max_tokens", func() {
			opts.MaxTokens = 0
			Expect(messages.NewRequest(opts).Validate()).To(MatchError(ContainSubstring("max_tokens")))
		})

		It("requires a message", func() {
			opts.Prompt = ""
			Expect(messages.NewRequest(opts).Validate()).To(MatchError(ContainSubstring("message")))
		})

		It("rejects unknown roles", func() {
			req := messages.NewRequest(opts)
			req.Messages = append(req.Messages, messages.Message{Role: "system", Content: "x"})
			Expect(req.Validate()).To(MatchError(ContainSubstring("unknown role")))
		})

		It("requires a positive thinking budget", func() {
			opts.BudgetTokens = 0
			Expect(messages.NewRequest(opts).Validate()).To(MatchError(ContainSubstring("budget_tokens")))
		})

		It("requires the thinking budget to fit inside max_tokens", func() {
			opts.BudgetTokens = 2048
			Expect(messages.NewRequest(opts).Validate()).To(MatchError(ContainSubstring("less than max_tokens")))
		})
	})
})
