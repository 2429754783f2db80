// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// reader for chat-completion streams. It only interprets "data: " lines whose
// payload is a JSON document and drops everything else: other SSE fields,
// comments, keep-alives and payloads that fail to decode.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "encoding/json"

// StreamEvent is one decoded JSON document. No schema is enforced; fields
// such as "type" belong to the upstream API.
type StreamEvent map[string]any

// Event is a single decoded "data: " line.
type Event struct {
	// Data is the decoded JSON document.
	Data StreamEvent

	// Raw holds the payload bytes exactly as they followed the prefix.
	Raw json.RawMessage
}

// Type returns the payload's "type" field, or an empty string when the field
// is missing or not a string.
func (e *Event) Type() string {
	if e == nil {
		return ""
	}
	t, _ := e.Data["type"].(string)
	return t
}
