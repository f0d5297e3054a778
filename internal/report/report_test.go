package report

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/bignellrp/portainer-api-action/internal/probe"
	"github.com/bignellrp/portainer-api-action/internal/proberr"
)

func TestResultPrettyPrintsJSON(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out)

	p.Result("server status", probe.Result{
		Method:     "GET",
		URL:        "https://host/api/status",
		StatusCode: 200,
		Body:       `{"Version":"2.19.4","Edition":"CE"}`,
	})

	text := out.String()
	for _, want := range []string{
		"--- server status ---",
		"GET https://host/api/status",
		"Status: 200",
		"\"Version\": \"2.19.4\"",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q\n%s", want, text)
		}
	}
}

func TestResultFallsBackToRawBody(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out)

	raw := "<html>not json</html>"
	p.Result("docs", probe.Result{Method: "GET", URL: "u", StatusCode: 200, Body: raw})

	if !strings.Contains(out.String(), raw) {
		t.Errorf("raw body not printed verbatim\n%s", out.String())
	}
}

func TestResultEmptyBody(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out)

	p.Result("update", probe.Result{Method: "PUT", URL: "u", StatusCode: 204})

	text := out.String()
	if !strings.Contains(text, "Status: 204") {
		t.Errorf("missing status line\n%s", text)
	}
	if strings.HasSuffix(strings.TrimRight(text, "\n"), "Status: 204") == false {
		t.Errorf("unexpected trailing content after status for empty body\n%q", text)
	}
}

func TestResultNoResponse(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out)

	p.Result("status", probe.Result{
		Method: "GET",
		URL:    "https://host/api/status",
		Err:    proberr.NewTransportError("https://host/api/status", "request", nil),
	})

	text := out.String()
	if !strings.Contains(text, "Status: no response (transport)") {
		t.Errorf("transport failure not rendered distinctly\n%s", text)
	}
	if strings.Contains(text, "Status: 0") {
		t.Error("no-response rendered as a fake status code")
	}
}

func TestHeadersSortedOutput(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out)

	p.Headers("OPTIONS /stacks/5", probe.Result{
		Method:     "OPTIONS",
		URL:        "u",
		StatusCode: 204,
		Header: http.Header{
			"Vary":  []string{"Origin"},
			"Allow": []string{"GET, PUT, DELETE"},
		},
	})

	text := out.String()
	allowIdx := strings.Index(text, "Allow:")
	varyIdx := strings.Index(text, "Vary:")
	if allowIdx < 0 || varyIdx < 0 {
		t.Fatalf("headers missing\n%s", text)
	}
	if allowIdx > varyIdx {
		t.Error("headers not sorted")
	}
}

func TestHintAndWarn(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out)

	p.Hint("404 = route absent")
	p.Warn("invalid content was accepted")

	text := out.String()
	if !strings.Contains(text, "hint: 404 = route absent") {
		t.Errorf("missing hint line\n%s", text)
	}
	if !strings.Contains(text, "warning: invalid content was accepted") {
		t.Errorf("missing warning line\n%s", text)
	}
}
