// Package templates emits ready-to-paste example commands for the stack
// routes this tool probes. It performs no network calls: the output is a
// fixed text block with the resolved configuration values substituted in.
//
// The two payload key casings are preserved on purpose — capitalized keys
// for the legacy create route, lowercase keys for the update route. That
// difference is the discovery this tool exists to surface.
package templates

import (
	"fmt"
	"io"
	"os"

	"github.com/bignellrp/portainer-api-action/internal/logger"
	"github.com/bignellrp/portainer-api-action/internal/probe"
)

// Data holds the values substituted into the example commands.
type Data struct {
	BaseURL    string
	StackName  string
	EndpointID int
	StackFile  string
	StackID    string // empty means the placeholder <stack-id> is used
}

// Emitter writes the example command block.
type Emitter struct {
	w        io.Writer
	log      *logger.Logger
	readFile func(string) ([]byte, error)
}

// NewEmitter creates an emitter writing to w.
func NewEmitter(w io.Writer, log *logger.Logger) *Emitter {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Emitter{
		w:        w,
		log:      log.WithComponent("templates"),
		readFile: os.ReadFile,
	}
}

const authHeader = `-H "X-API-Key: $PORTAINER_API_KEY"`
const jsonHeader = `-H "Content-Type: application/json"`

// Emit writes the full example block. Output is byte-identical across runs
// with identical configuration and stack file contents.
func (e *Emitter) Emit(d Data) {
	stackID := d.StackID
	if stackID == "" {
		stackID = "<stack-id>"
	}

	p := func(format string, args ...any) {
		fmt.Fprintf(e.w, format+"\n", args...)
	}

	p("")
	p("=== Example commands ===")
	p("")
	p("# List stacks")
	p("curl -s %s \\", authHeader)
	p("  %q | jq .", d.BaseURL+"/api/stacks")
	p("")
	p("# Build the legacy create payload (capitalized keys) from %s", d.StackFile)
	p("jq -n --arg name %q --arg content \"$(cat %q)\" --argjson endpoint %d \\", d.StackName, d.StackFile, d.EndpointID)
	p("  '{Name: $name, StackFileContent: $content, EndpointId: $endpoint}' > payload-create.json")

	e.emitInlinePayload(d)

	p("")
	p("# Create: legacy typed-query route")
	p("curl -s -X POST %s %s \\", authHeader, jsonHeader)
	p("  --data @payload-create.json \\")
	p("  %q | jq .", fmt.Sprintf("%s/api/stacks?type=2&method=string&endpointId=%d", d.BaseURL, d.EndpointID))
	p("")
	p("# Create: standalone string route (newer servers, lowercase keys)")
	p("curl -s -X POST %s %s \\", authHeader, jsonHeader)
	p("  --data @payload-create.json \\")
	p("  %q | jq .", fmt.Sprintf("%s/api/stacks/create/standalone/string?endpointId=%d", d.BaseURL, d.EndpointID))
	p("")
	p("# Build the update payload (lowercase keys)")
	p("jq -n --arg content \"$(cat %q)\" \\", d.StackFile)
	p("  '{stackFileContent: $content, prune: false}' > payload-update.json")
	p("")
	p("# Update")
	p("curl -s -X PUT %s %s \\", authHeader, jsonHeader)
	p("  --data @payload-update.json \\")
	p("  %q | jq .", fmt.Sprintf("%s/api/stacks/%s?endpointId=%d", d.BaseURL, stackID, d.EndpointID))
	p("")
	p("# Delete")
	p("curl -s -X DELETE %s %q", authHeader, fmt.Sprintf("%s/api/stacks/%s", d.BaseURL, stackID))
	p("")
	p("# Delete a stack Portainer did not create itself (external flag)")
	p("curl -s -X DELETE %s %q", authHeader, fmt.Sprintf("%s/api/stacks/%s?external=true", d.BaseURL, stackID))
}

// emitInlinePayload inlines a ready-to-paste create payload when the stack
// file is readable. This is the only place the file's existence is checked.
func (e *Emitter) emitInlinePayload(d Data) {
	content, err := e.readFile(d.StackFile)
	if err != nil {
		e.log.WithError(err).Warnf("stack file %s not readable; payload examples reference it by name only", d.StackFile)
		return
	}

	fmt.Fprintf(e.w, "\n# Ready-to-paste create payload (%s inlined):\n", d.StackFile)
	fmt.Fprintf(e.w, "%s\n", probe.CreatePayload(probe.CasingLegacy, d.StackName, string(content), d.EndpointID))
}
