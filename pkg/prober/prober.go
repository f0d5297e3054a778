// Package prober orchestrates the diagnostic flows: capability discovery,
// example command emission, and the opt-in active route probing.
package prober

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/bignellrp/portainer-api-action/internal/config"
	"github.com/bignellrp/portainer-api-action/internal/discovery"
	"github.com/bignellrp/portainer-api-action/internal/logger"
	"github.com/bignellrp/portainer-api-action/internal/probe"
	"github.com/bignellrp/portainer-api-action/internal/proberr"
	"github.com/bignellrp/portainer-api-action/internal/report"
	"github.com/bignellrp/portainer-api-action/internal/templates"
)

// invalidStackContent is sent by the active probes. It is meant to be
// rejected: the interesting signal is which route rejects it and how.
const invalidStackContent = "probe: intentionally invalid compose content\n"

// Prober runs diagnostic flows against one Portainer server.
type Prober struct {
	cfg     *config.Config
	client  *probe.Client
	printer *report.Printer
	out     io.Writer
	log     *logger.Logger
	now     func() time.Time
}

// New creates a Prober. WithConfig is required; the remaining collaborators
// are built from it when not injected.
func New(opts ...Option) (*Prober, error) {
	p := &Prober{
		out: os.Stdout,
		now: time.Now,
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	if p.cfg == nil {
		return nil, proberr.NewConfigError("prober", "configuration is required")
	}
	if p.log == nil {
		p.log = logger.NewDefault()
	}
	if p.printer == nil {
		p.printer = report.NewPrinter(p.out)
	}
	if p.client == nil {
		p.client = probe.NewClient(probe.ClientConfig{
			APIKey:        p.cfg.APIKey,
			Timeout:       p.cfg.Timeout,
			RateLimit:     p.cfg.RateLimit,
			SkipTLSVerify: p.cfg.SkipTLSVerify,
		}, p.log)
	}

	return p, nil
}

// RunDiscovery executes the capability discovery flow.
func (p *Prober) RunDiscovery(ctx context.Context) discovery.Findings {
	flow := discovery.NewFlow(p.client, p.printer, p.log, p.cfg.BaseURL, p.cfg.StackName, p.cfg.EndpointID)
	findings := flow.Run(ctx)

	if findings.StackFound {
		p.log.Infof("existing stack id: %s", findings.StackID)
	}
	return findings
}

// RunExamples emits the example command block. No network calls.
func (p *Prober) RunExamples() {
	emitter := templates.NewEmitter(p.out, p.log)
	emitter.Emit(templates.Data{
		BaseURL:    p.cfg.BaseURL,
		StackName:  p.cfg.StackName,
		EndpointID: p.cfg.EndpointID,
		StackFile:  p.cfg.StackFile,
		StackID:    p.cfg.StackID,
	})
}

// RunCreateProbes POSTs an intentionally-invalid payload at every known
// create route shape crossed with both payload key casings. The status
// codes tell the reader which routes exist; nothing is enforced here.
func (p *Prober) RunCreateProbes(ctx context.Context) {
	p.printer.Section("Create-route probing")
	p.printer.Hint("404 = route absent; 400/401/403 = route present")

	probeName := fmt.Sprintf("%s-probe-%d", p.cfg.StackName, p.now().Unix())

	for _, candidate := range probe.CreateCandidates {
		for _, casing := range probe.Casings {
			url := candidate.Expand(p.cfg.BaseURL, "", p.cfg.EndpointID)
			body := probe.CreatePayload(casing, probeName, invalidStackContent, p.cfg.EndpointID)

			res := p.client.Do(ctx, candidate.Method, url, body)
			p.printer.Result(candidate.Label(casing), res)
		}
	}
}

// RunUpdateProbes PUTs invalid payloads at the known update route shapes,
// inspects the Allow header via OPTIONS, and prints example delete
// commands. It never issues a DELETE. An existing stack id is a hard
// precondition: without one it fails before any HTTP call.
func (p *Prober) RunUpdateProbes(ctx context.Context) error {
	if err := p.requireStackID(); err != nil {
		return err
	}

	p.printer.Section("Update/delete-route probing")
	p.printer.Warn("a 200/204 response means the server accepted the intentionally-invalid content")

	for _, candidate := range probe.UpdateCandidates {
		for _, casing := range probe.Casings {
			url := candidate.Expand(p.cfg.BaseURL, p.cfg.StackID, p.cfg.EndpointID)
			body := probe.UpdatePayload(casing, invalidStackContent, false)

			res := p.client.Do(ctx, candidate.Method, url, body)
			p.printer.Result(candidate.Label(casing), res)
		}
	}

	// The Allow header, when a server sends one, lists the supported
	// methods outright.
	for _, route := range []string{
		fmt.Sprintf("/stacks/%s", p.cfg.StackID),
		fmt.Sprintf("/stacks/%s?endpointId=%d", p.cfg.StackID, p.cfg.EndpointID),
	} {
		res := p.client.Do(ctx, http.MethodOptions, p.cfg.BaseURL+"/api"+route, nil)
		p.printer.Headers("OPTIONS "+route, res)
	}

	p.printer.Line("")
	p.printer.Line("# No DELETE is issued by this tool. To delete manually:")
	p.printer.Line("curl -s -X DELETE -H \"X-API-Key: $PORTAINER_API_KEY\" %q",
		fmt.Sprintf("%s/api/stacks/%s", p.cfg.BaseURL, p.cfg.StackID))
	p.printer.Line("curl -s -X DELETE -H \"X-API-Key: $PORTAINER_API_KEY\" %q",
		fmt.Sprintf("%s/api/stacks/%s?external=true", p.cfg.BaseURL, p.cfg.StackID))

	return nil
}

func (p *Prober) requireStackID() error {
	if p.cfg.StackID == "" {
		return proberr.NewConfigError("probe-update",
			"update-route probing requires an existing stack id (set "+config.EnvStackID+" or --stack-id)")
	}
	return nil
}

// RunAll executes the full diagnostic sequence. The active flows run only
// when their opt-in switches are set. Preconditions of enabled flows are
// checked up front: a run that cannot complete aborts before the first
// request is issued.
func (p *Prober) RunAll(ctx context.Context) error {
	if p.cfg.ProbeUpdate {
		if err := p.requireStackID(); err != nil {
			return err
		}
	}

	p.RunDiscovery(ctx)
	p.RunExamples()

	if p.cfg.ProbeCreate {
		p.RunCreateProbes(ctx)
	} else {
		p.log.Debug("create-route probing disabled (set PROBE_CREATE=1 to enable)")
	}

	if p.cfg.ProbeUpdate {
		if err := p.RunUpdateProbes(ctx); err != nil {
			return err
		}
	} else {
		p.log.Debug("update-route probing disabled (set PROBE_UPDATE=1 to enable)")
	}

	return nil
}

// Close releases the probe client's resources.
func (p *Prober) Close() {
	if p.client != nil {
		p.client.Close()
	}
}
