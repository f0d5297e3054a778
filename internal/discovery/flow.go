package discovery

import (
	"context"
	"strings"

	"github.com/bignellrp/portainer-api-action/internal/logger"
	"github.com/bignellrp/portainer-api-action/internal/probe"
	"github.com/bignellrp/portainer-api-action/internal/report"
)

// Flow runs the capability discovery sequence. Every step is independent:
// a failed probe is reported and the flow moves on.
type Flow struct {
	client     *probe.Client
	printer    *report.Printer
	log        *logger.Logger
	baseURL    string
	stackName  string
	endpointID int
}

// Findings summarizes what discovery learned.
type Findings struct {
	// DocRoute is the documentation route that answered, if any.
	DocRoute string
	// StackID is the id of the matching existing stack, if found.
	StackID string
	// StackFound reports whether a stack matched name and endpoint id.
	StackFound bool
}

// NewFlow creates a discovery flow.
func NewFlow(client *probe.Client, printer *report.Printer, log *logger.Logger, baseURL, stackName string, endpointID int) *Flow {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Flow{
		client:     client,
		printer:    printer,
		log:        log.WithComponent("discovery"),
		baseURL:    baseURL,
		stackName:  stackName,
		endpointID: endpointID,
	}
}

// Run executes the discovery sequence: status, documentation, documented
// stack routes, then the existing-stack lookup.
func (f *Flow) Run(ctx context.Context) Findings {
	var findings Findings

	f.printer.Section("Capability discovery")

	res := f.client.Get(ctx, f.api("/status"))
	f.printer.Result("server status", res)

	doc, route := f.fetchDoc(ctx)
	findings.DocRoute = route
	if doc != nil {
		f.printDocRoutes(doc)
	}

	findings.StackID, findings.StackFound = f.lookupStack(ctx)
	return findings
}

// fetchDoc probes the documentation candidates in order and returns the
// parsed document when the JSON variant answers. A YAML hit is noted and
// left unparsed.
func (f *Flow) fetchDoc(ctx context.Context) (*Doc, string) {
	for _, candidate := range DocCandidates {
		url := f.api(candidate)
		res := f.client.Get(ctx, url)

		if res.StatusCode != 200 || res.Body == "" {
			f.printer.Result("API docs "+candidate, res)
			continue
		}

		if strings.HasSuffix(candidate, ".json") {
			f.printer.Line("")
			f.printer.Line("--- API docs %s ---", candidate)
			f.printer.Line("GET %s", url)
			f.printer.Line("Status: 200 (retained for route extraction, %d bytes)", len(res.Body))

			doc, err := ParseDoc([]byte(res.Body))
			if err != nil {
				f.log.WithError(err).Warn("documentation body did not parse as JSON")
				f.printer.Line("documentation body is not valid JSON; skipping route extraction")
				return nil, candidate
			}
			return doc, candidate
		}

		// YAML answered first. Parsing YAML is out of scope here.
		f.printer.Line("")
		f.printer.Line("--- API docs %s ---", candidate)
		f.printer.Line("GET %s", url)
		f.printer.Line("Status: 200 (YAML documentation found; content parsing skipped)")
		return nil, candidate
	}

	f.printer.Line("")
	f.printer.Line("no API documentation endpoint answered")
	return nil, ""
}

// printDocRoutes prints the documented stack routes and the likely
// create/update subset.
func (f *Flow) printDocRoutes(doc *Doc) {
	stackPaths := doc.StackPaths()

	f.printer.Line("")
	f.printer.Line("documented stack routes (%d):", len(stackPaths))
	for _, e := range stackPaths {
		f.printer.Line("  %-60s %s", e.Path, strings.Join(e.Methods, " "))
	}

	likely := ActionPaths(stackPaths)
	f.printer.Line("")
	f.printer.Line("likely create/update routes (%d):", len(likely))
	for _, e := range likely {
		f.printer.Line("  %-60s %s", e.Path, strings.Join(e.Methods, " "))
	}

	f.printer.Hint("search .components.schemas in the documentation for stack payload models, e.g. jq '.components.schemas | keys | map(select(test(\"tack\")))'")
	if !doc.HasSchemas() {
		f.printer.Line("(this document carries no .components.schemas section)")
	}
}

// lookupStack lists existing stacks and reports the first entry matching
// the configured name and endpoint id.
func (f *Flow) lookupStack(ctx context.Context) (string, bool) {
	res := f.client.Get(ctx, f.api("/stacks"))

	if res.NoResponse() || res.StatusCode != 200 {
		f.printer.Result("existing stacks", res)
		return "", false
	}

	f.printer.Line("")
	f.printer.Line("--- existing stacks ---")
	f.printer.Line("GET %s", res.URL)
	f.printer.Line("Status: %d", res.StatusCode)

	id, found := MatchStack([]byte(res.Body), f.stackName, f.endpointID)
	if found {
		f.printer.Line("stack %q on endpoint %d has id %s", f.stackName, f.endpointID, id)
	} else {
		f.printer.Line("no match for stack %q on endpoint %d", f.stackName, f.endpointID)
	}
	return id, found
}

func (f *Flow) api(route string) string {
	return f.baseURL + "/api" + route
}
