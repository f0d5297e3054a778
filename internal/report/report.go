// Package report renders probe results as human-readable text.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"

	"github.com/bignellrp/portainer-api-action/internal/probe"
)

// Printer writes formatted probe output to a writer.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPrinter creates a printer over the given writer.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Section prints a section heading.
func (p *Printer) Section(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, "=== "+title+" ===")
}

// Result prints one probe result: a blank line, the label, the request
// line, the status line, and the body. The body is pretty-printed when it
// parses as JSON, otherwise printed verbatim. A malformed body never fails
// the run.
func (p *Printer) Result(label string, res probe.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, "--- "+label+" ---")
	fmt.Fprintf(p.w, "%s %s\n", res.Method, res.URL)

	if res.NoResponse() {
		fmt.Fprintf(p.w, "Status: no response (%s)\n", res.Err.Type)
		return
	}

	fmt.Fprintf(p.w, "Status: %d\n", res.StatusCode)

	if res.Body == "" {
		return
	}
	fmt.Fprintln(p.w, prettyJSON(res.Body))
}

// Headers prints selected response headers, sorted for stable output.
func (p *Printer) Headers(label string, res probe.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, "--- "+label+" ---")
	fmt.Fprintf(p.w, "%s %s\n", res.Method, res.URL)

	if res.NoResponse() {
		fmt.Fprintf(p.w, "Status: no response (%s)\n", res.Err.Type)
		return
	}

	fmt.Fprintf(p.w, "Status: %d\n", res.StatusCode)

	keys := make([]string, 0, len(res.Header))
	for k := range res.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range res.Header[k] {
			fmt.Fprintf(p.w, "%s: %s\n", http.CanonicalHeaderKey(k), v)
		}
	}
}

// Line prints a plain output line.
func (p *Printer) Line(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, format+"\n", args...)
}

// Hint prints an interpretation hint for the human reader.
func (p *Printer) Hint(format string, args ...any) {
	p.Line("hint: "+format, args...)
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) {
	p.Line("warning: "+format, args...)
}

// prettyJSON indents a JSON body, falling back to the raw text when the
// body does not parse.
func prettyJSON(body string) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(body), "", "  "); err != nil {
		return body
	}
	return buf.String()
}
