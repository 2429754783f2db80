package probe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/papercomputeco/thinkprobe/pkg/cliui"
	"github.com/papercomputeco/thinkprobe/pkg/utils"
)

// Width 1 expands every non-empty array, one element per line.
var prettyOptions = &pretty.Options{
	Width:    1,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: false,
}

// printer writes probe output. Colour is only used for terminals.
type printer struct {
	w     io.Writer
	color bool
}

func (p *printer) header(n int, s Scenario) {
	line := fmt.Sprintf("=== Test %d: %s ===", n, s.Title)
	if p.color {
		line = cliui.HeaderStyle.Render(line)
	}
	if n > 1 {
		fmt.Fprintln(p.w)
	}
	fmt.Fprintln(p.w, line)
}

func (p *printer) status(code int) {
	fmt.Fprintf(p.w, "Status: %d\n", code)
}

func (p *printer) error(err error) {
	fmt.Fprintf(p.w, "Error: %v\n", err)
}

// event pretty-prints the raw payload in wire key order. String escapes such
// as \u00d7 are printed as the characters they encode.
func (p *printer) event(raw []byte) {
	out := pretty.PrettyOptions(unescapeJSON(raw), prettyOptions)
	if p.color {
		out = pretty.Color(out, nil)
	}
	_, _ = p.w.Write(out)
}

func (p *printer) warn(format string, args ...any) {
	line := "Warning: " + fmt.Sprintf(format, args...)
	if p.color {
		line = cliui.WarnStyle.Render(line)
	}
	fmt.Fprintln(p.w, line)
}

func (p *printer) body(raw []byte) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return
	}
	fmt.Fprintf(p.w, "Body: %s\n", raw)
}

func (p *printer) markdown(title, content string) {
	rendered, err := cliui.RenderMarkdown(content)
	if err != nil {
		rendered = content
	}
	fmt.Fprintf(p.w, "\n--- %s ---\n%s\n", title, rendered)
}

// unescapeJSON re-encodes a JSON document with every string decoded, keeping
// member order and number literals. Only <">, <\> and control characters
// stay escaped.
func unescapeJSON(raw []byte) []byte {
	if !gjson.ValidBytes(raw) {
		return raw
	}
	return appendJSON(nil, gjson.ParseBytes(raw))
}

func appendJSON(dst []byte, v gjson.Result) []byte {
	switch {
	case v.IsObject():
		dst = append(dst, '{')
		first := true
		v.ForEach(func(key, value gjson.Result) bool {
			if !first {
				dst = append(dst, ',')
			}
			first = false
			dst = appendString(dst, key.Str)
			dst = append(dst, ':')
			dst = appendJSON(dst, value)
			return true
		})
		return append(dst, '}')
	case v.IsArray():
		dst = append(dst, '[')
		first := true
		v.ForEach(func(_, value gjson.Result) bool {
			if !first {
				dst = append(dst, ',')
			}
			first = false
			dst = appendJSON(dst, value)
			return true
		})
		return append(dst, ']')
	case v.Type == gjson.String:
		return appendString(dst, v.Str)
	default:
		return append(dst, v.Raw...)
	}
}

func appendString(dst []byte, s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return append(dst, strconv.Quote(s)...)
	}
	return append(dst, bytes.TrimSuffix(buf.Bytes(), []byte("\n"))...)
}

// WriteSummary prints one line per result. The mark reflects Check with the
// same expectThinking setting.
func WriteSummary(w io.Writer, results []*Result, expectThinking bool) {
	color := cliui.IsTerminal(w)

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tSTATUS\tEVENTS\tTHINKING\tTEXT\tSTOP\tDURATION\tREQUEST\t")
	for _, r := range results {
		status := "-"
		if r.StatusCode != 0 {
			status = strconv.Itoa(r.StatusCode)
		}
		stop := r.StopReason
		if stop == "" {
			stop = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\t%s\t%s\t%s\n",
			r.Scenario.Name,
			status,
			r.Events,
			utf8.RuneCountInString(r.Thinking),
			utf8.RuneCountInString(r.Text),
			stop,
			cliui.FormatDuration(r.Duration),
			utils.Truncate(r.RequestID, 8),
			mark(r.Check(expectThinking), color),
		)
	}
	_ = tw.Flush()
}

func mark(err error, color bool) string {
	switch {
	case color:
		return cliui.Mark(err)
	case err != nil:
		return "✗"
	default:
		return "✓"
	}
}

// limitedBuffer keeps the first max bytes written to it and discards the rest.
type limitedBuffer struct {
	buf bytes.Buffer
	max int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.max - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) Bytes() []byte {
	return b.buf.Bytes()
}
