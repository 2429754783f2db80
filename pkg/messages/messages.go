// Package messages builds streaming request bodies for the Messages API
// (POST /v1/messages).
package messages

import (
	"errors"
	"fmt"
)

const (
	// RoleUser is the role of a message written by the caller.
	RoleUser = "user"

	// RoleAssistant is the role of a message written by the model.
	RoleAssistant = "assistant"

	// ThinkingEnabled is the only thinking type the API accepts in requests.
	ThinkingEnabled = "enabled"
)

// Request is the JSON body of a streaming Messages API call.
type Request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
	Stream    bool      `json:"stream"`

	// Thinking is omitted from the body when nil.
	Thinking *Thinking `json:"thinking,omitempty"`
}

// Message is a single conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Thinking enables extended reasoning output with a token budget.
type Thinking struct {
	Type         string `json:"type"`
	BudgetTokens int    `json:"budget_tokens"`
}

// Options are the inputs to NewRequest.
type Options struct {
	Model        string
	MaxTokens    int
	Prompt       string
	Thinking     bool
	BudgetTokens int
}

// NewRequest builds a streaming request with a single user message.
func NewRequest(opts Options) *Request {
	req := &Request{
		Model:     opts.Model,
		MaxTokens: opts.MaxTokens,
		Stream:    true,
	}

	if opts.Prompt != "" {
		req.Messages = []Message{{Role: RoleUser, Content: opts.Prompt}}
	}

	if opts.Thinking {
		req.Thinking = &Thinking{
			Type:         ThinkingEnabled,
			BudgetTokens: opts.BudgetTokens,
		}
	}

	return req
}

// HasThinking reports whether the request asks for extended reasoning.
func (r *Request) HasThinking() bool {
	return r.Thinking != nil
}

// Validate checks the request for values the API would reject outright.
func (r *Request) Validate() error {
	if r.Model == "" {
		return errors.New("model is required")
	}
	if r.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", r.MaxTokens)
	}
	if len(r.Messages) == 0 {
		return errors.New("at least one message is required")
	}
	for i, m := range r.Messages {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return fmt.Errorf("message %d: unknown role %q", i, m.Role)
		}
	}

	if r.Thinking != nil {
		if r.Thinking.BudgetTokens <= 0 {
			return fmt.Errorf("thinking budget_tokens must be positive, got %d", r.Thinking.BudgetTokens)
		}
		if r.Thinking.BudgetTokens >= r.MaxTokens {
			return fmt.Errorf("thinking budget_tokens (%d) must be less than max_tokens (%d)",
				r.Thinking.BudgetTokens, r.MaxTokens)
		}
	}

	return nil
}
