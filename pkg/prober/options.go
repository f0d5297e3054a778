package prober

import (
	"io"
	"time"

	"github.com/bignellrp/portainer-api-action/internal/config"
	"github.com/bignellrp/portainer-api-action/internal/logger"
	"github.com/bignellrp/portainer-api-action/internal/probe"
	"github.com/bignellrp/portainer-api-action/internal/report"
)

// Option is a functional option for configuring the Prober.
type Option func(*Prober) error

// WithConfig sets the resolved configuration.
func WithConfig(cfg *config.Config) Option {
	return func(p *Prober) error {
		p.cfg = cfg
		return nil
	}
}

// WithClient injects a probe client, replacing the one built from config.
func WithClient(c *probe.Client) Option {
	return func(p *Prober) error {
		p.client = c
		return nil
	}
}

// WithOutput sets the writer the probe report and examples go to.
func WithOutput(w io.Writer) Option {
	return func(p *Prober) error {
		p.out = w
		p.printer = report.NewPrinter(w)
		return nil
	}
}

// WithPrinter injects a printer.
func WithPrinter(pr *report.Printer) Option {
	return func(p *Prober) error {
		p.printer = pr
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *Prober) error {
		p.log = l
		return nil
	}
}

// WithClock overrides the time source used for probe stack names.
func WithClock(now func() time.Time) Option {
	return func(p *Prober) error {
		p.now = now
		return nil
	}
}
