package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bignellrp/portainer-api-action/internal/config"
	"github.com/bignellrp/portainer-api-action/internal/logger"
	"github.com/bignellrp/portainer-api-action/internal/proberr"
	"github.com/bignellrp/portainer-api-action/internal/secret"
	"github.com/bignellrp/portainer-api-action/pkg/prober"
)

var (
	version = "1.0.0"

	// Global flags
	configFile string
	verbose    bool
	debug      bool
	jsonLogs   bool

	// Target flags
	baseURL    string
	stackName  string
	endpointID int
	stackFile  string
	stackID    string

	// Credential flags
	apiKey    string
	apiKeyRef string
	resolver  string

	// Transport flags
	timeout       int
	rateLimit     float64
	skipTLSVerify bool

	// Opt-in flags
	enableProbe bool
	probeCreate bool
	probeUpdate bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "portainer-probe",
		Short: "Portainer route-shape probe",
		Long: `portainer-probe - Discover which stack routes and payload casings a Portainer server accepts.

Portainer has changed its stack create/update route shapes across versions.
This tool probes a server non-destructively to find the shape your instance
speaks, before you wire automated deployment against it. Active probing is
opt-in and sends only intentionally-invalid payloads meant to be rejected.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full diagnostic sequence",
		Long:  "Run capability discovery, emit example commands, then any active probe flows enabled via flags or PROBE_CREATE/PROBE_UPDATE.",
		RunE:  runAll,
	}

	discoverCmd := &cobra.Command{
		Use:   "discover",
		Short: "Probe status, API docs, and the stack listing",
		RunE:  runDiscover,
	}

	examplesCmd := &cobra.Command{
		Use:   "examples",
		Short: "Print example stack commands for manual use",
		Long:  "Print example list/create/update/delete commands with the resolved configuration substituted in. No network calls are made.",
		RunE:  runExamples,
	}

	probeCreateCmd := &cobra.Command{
		Use:   "probe-create",
		Short: "Actively probe candidate create routes (opt-in)",
		Long:  "POST intentionally-invalid payloads at every known create route shape and payload casing. Requires --enable.",
		RunE:  runProbeCreate,
	}

	probeUpdateCmd := &cobra.Command{
		Use:   "probe-update",
		Short: "Actively probe candidate update routes (opt-in)",
		Long:  "PUT intentionally-invalid payloads at the known update route shapes, inspect OPTIONS, and print example delete commands. Requires --enable and a stack id.",
		RunE:  runProbeUpdate,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug mode")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON instead of console output")

	// Target flags
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "", "Portainer server URL (env "+config.EnvURL+")")
	rootCmd.PersistentFlags().StringVar(&stackName, "stack", "", "Stack name (env "+config.EnvStackName+")")
	rootCmd.PersistentFlags().IntVar(&endpointID, "endpoint-id", config.DefaultEndpointID, "Portainer endpoint id (env "+config.EnvEndpointID+")")
	rootCmd.PersistentFlags().StringVar(&stackFile, "stack-file", config.DefaultStackFile, "Compose file for example commands (env "+config.EnvStackFile+")")
	rootCmd.PersistentFlags().StringVar(&stackID, "stack-id", "", "Existing stack id, required for update probing (env "+config.EnvStackID+")")

	// Credential flags
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Portainer API key (env "+config.EnvAPIKey+")")
	rootCmd.PersistentFlags().StringVar(&apiKeyRef, "api-key-ref", "", "Secret reference resolved via the resolver command (env "+config.EnvAPIKeyRef+")")
	rootCmd.PersistentFlags().StringVar(&resolver, "resolver", config.DefaultResolverCommand, "Secret resolution command; the reference is appended as the final argument")

	// Transport flags
	rootCmd.PersistentFlags().IntVarP(&timeout, "timeout", "t", 15, "Request timeout in seconds")
	rootCmd.PersistentFlags().Float64VarP(&rateLimit, "rate-limit", "r", config.DefaultRateLimit, "Probes per second")
	rootCmd.PersistentFlags().BoolVar(&skipTLSVerify, "insecure-skip-verify", false, "Skip TLS certificate verification")

	// Opt-in flags
	runCmd.Flags().BoolVar(&probeCreate, "probe-create", false, "Enable create-route probing (env "+config.EnvProbeCreate+")")
	runCmd.Flags().BoolVar(&probeUpdate, "probe-update", false, "Enable update-route probing (env "+config.EnvProbeUpdate+")")
	probeCreateCmd.Flags().BoolVar(&enableProbe, "enable", false, "Confirm active probing against the server")
	probeUpdateCmd.Flags().BoolVar(&enableProbe, "enable", false, "Confirm active probing against the server")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(examplesCmd)
	rootCmd.AddCommand(probeCreateCmd)
	rootCmd.AddCommand(probeUpdateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		code := proberr.ExitCode(err)
		if code == 0 {
			code = 1
		}
		os.Exit(code)
	}
}

// loadConfig builds the configuration with precedence flags > env > file >
// defaults, and validates it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	if configFile != "" {
		fileCfg, err := config.LoadFile(configFile)
		if err != nil {
			return nil, proberr.NewConfigError("config", err.Error())
		}
		cfg = fileCfg
	}

	cfg.ApplyEnv()

	// Flags override only when explicitly set.
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.BaseURL = baseURL
	}
	if flags.Changed("stack") {
		cfg.StackName = stackName
	}
	if flags.Changed("endpoint-id") {
		cfg.EndpointID = endpointID
	}
	if flags.Changed("stack-file") {
		cfg.StackFile = stackFile
	}
	if flags.Changed("stack-id") {
		cfg.StackID = stackID
	}
	if flags.Changed("api-key") {
		cfg.APIKey = apiKey
	}
	if flags.Changed("api-key-ref") {
		cfg.APIKeyRef = apiKeyRef
	}
	if flags.Changed("resolver") {
		cfg.ResolverCommand = resolver
	}
	if flags.Changed("timeout") {
		cfg.Timeout = time.Duration(timeout) * time.Second
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimit = rateLimit
	}
	if flags.Changed("insecure-skip-verify") {
		cfg.SkipTLSVerify = skipTLSVerify
	}
	if flags.Changed("probe-create") {
		cfg.ProbeCreate = probeCreate
	}
	if flags.Changed("probe-update") {
		cfg.ProbeUpdate = probeUpdate
	}
	cfg.Verbose = verbose
	cfg.Debug = debug
	cfg.JSONLogs = jsonLogs

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the logger from the resolved configuration.
func newLogger(cfg *config.Config) *logger.Logger {
	level := logger.InfoLevel
	if verbose {
		level = logger.DebugLevel
	}
	if debug {
		level = logger.DebugLevel
	}
	if cfg.JSONLogs {
		return logger.NewJSON(level)
	}
	return logger.New(logger.Config{Level: level, Pretty: true, Output: os.Stderr})
}

// newProber loads the configuration, resolves the credential and
// assembles the prober.
func newProber(ctx context.Context, cmd *cobra.Command, needsCredential bool) (*prober.Prober, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return buildProber(ctx, cfg, needsCredential)
}

// buildProber resolves the credential when needed and assembles the
// prober around an already-loaded configuration. The credential stays
// inside the config and the probe client; it is never logged or printed.
func buildProber(ctx context.Context, cfg *config.Config, needsCredential bool) (*prober.Prober, error) {
	log := newLogger(cfg)

	if needsCredential {
		res := &secret.Resolver{Command: cfg.ResolverCommand}
		key, err := res.Resolve(ctx, cfg.APIKey, cfg.APIKeyRef)
		if err != nil {
			return nil, err
		}
		cfg.APIKey = key
	}

	return prober.New(
		prober.WithConfig(cfg),
		prober.WithLogger(log),
		prober.WithOutput(os.Stdout),
	)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runAll(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	p, err := newProber(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer p.Close()

	return p.RunAll(ctx)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	p, err := newProber(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer p.Close()

	p.RunDiscovery(ctx)
	return nil
}

func runExamples(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	// Example emission makes no network calls and needs no credential;
	// the emitted commands reference $PORTAINER_API_KEY instead.
	p, err := newProber(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer p.Close()

	p.RunExamples()
	return nil
}

func runProbeCreate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The opt-in gate runs before credential resolution: a refused run
	// must not shell out to the secret resolver.
	if !enableProbe && !cfg.ProbeCreate {
		return proberr.NewConfigError("probe-create",
			"active probing must be enabled explicitly (--enable or "+config.EnvProbeCreate+"=1)")
	}

	p, err := buildProber(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer p.Close()

	p.RunCreateProbes(ctx)
	return nil
}

func runProbeUpdate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if !enableProbe && !cfg.ProbeUpdate {
		return proberr.NewConfigError("probe-update",
			"active probing must be enabled explicitly (--enable or "+config.EnvProbeUpdate+"=1)")
	}

	p, err := buildProber(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer p.Close()

	return p.RunUpdateProbes(ctx)
}
