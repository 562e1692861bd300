package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/simdriver/internal/config"
	"github.com/GriffinCanCode/simdriver/internal/domain/simulator"
	"github.com/GriffinCanCode/simdriver/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/simdriver/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/simdriver/internal/logging"
)

// Build information, set with -ldflags
var (
	BuildVersion = "dev"
	BuildCommit  = "none"
	BuildDate    = "unknown"
)

// Options customizes the command tree
type Options struct {
	// DeviceOptions are appended to the options every device is opened with
	DeviceOptions []simulator.Option
}

type globalFlags struct {
	udid        string
	osVersion   string
	logLevel    string
	dev         bool
	metricsFile string
}

// session carries what a single command invocation shares
type session struct {
	opts  Options
	flags globalFlags

	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *monitoring.Metrics
	tracer   *tracing.Tracer
	device   simulator.Device
}

// NewRootCommand builds the simdriver command tree
func NewRootCommand(opts Options) *cobra.Command {
	s := &session{opts: opts}

	root := &cobra.Command{
		Use:   "simdriver",
		Short: "simdriver - iOS simulator application driver",
		Long: `simdriver controls applications, Safari, keychains and accessibility
settings of an iOS simulator through xcrun simctl.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return s.teardown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&s.flags.udid, "udid", "", "simulator UDID or \"booted\" (default $SIMDRIVER_UDID)")
	flags.StringVar(&s.flags.osVersion, "os-version", "", "device OS version, skips runtime detection (default $SIMDRIVER_OS_VERSION)")
	flags.StringVar(&s.flags.logLevel, "log-level", "", "log level: debug, info, warn, error (default $LOG_LEVEL)")
	flags.BoolVar(&s.flags.dev, "dev", false, "human readable logs")
	flags.StringVar(&s.flags.metricsFile, "metrics-file", "", "write prometheus metrics to this file on exit")

	root.AddCommand(
		newAppsCommand(s),
		newSafariCommand(s),
		newKeychainCommand(s),
		newSettingsCommand(s),
		newUICommand(s),
		newSystemCommand(s),
		newVersionCommand(),
	)
	return root
}

func (s *session) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if s.flags.udid != "" {
		cfg.Device.UDID = s.flags.udid
	}
	if s.flags.osVersion != "" {
		cfg.Device.OSVersion = s.flags.osVersion
	}
	if s.flags.logLevel != "" {
		cfg.Logging.Level = s.flags.logLevel
	}
	if s.flags.dev {
		cfg.Logging.Development = true
	}
	s.cfg = cfg
	s.logger = logging.FromLevel(cfg.Logging.Level, cfg.Logging.Development).Logger
	s.tracer = tracing.New("simdriver", s.logger)

	if cfg.Metrics.Enabled || s.flags.metricsFile != "" {
		s.registry = prometheus.NewRegistry()
		s.metrics = monitoring.NewMetrics(s.registry)
	}
	return nil
}

func (s *session) teardown() error {
	var err error
	if s.device != nil {
		err = s.device.Close()
		s.device = nil
	}
	if s.registry != nil && s.flags.metricsFile != "" {
		if werr := prometheus.WriteToTextfile(s.flags.metricsFile, s.registry); werr != nil && err == nil {
			err = fmt.Errorf("failed to write metrics: %w", werr)
		}
	}
	if s.logger != nil {
		_ = s.logger.Sync()
	}
	return err
}

// open resolves the configured device on first use
func (s *session) open(ctx context.Context) (simulator.Device, error) {
	if s.device != nil {
		return s.device, nil
	}
	if s.cfg.Device.UDID == "" {
		return nil, fmt.Errorf("no simulator selected: pass --udid or set SIMDRIVER_UDID")
	}

	opts := []simulator.Option{simulator.WithLogger(s.logger)}
	if s.metrics != nil {
		opts = append(opts, simulator.WithMetrics(s.metrics))
	}
	opts = append(opts, s.opts.DeviceOptions...)

	device, err := simulator.New(ctx, s.cfg, opts...)
	if err != nil {
		return nil, err
	}
	s.device = device
	return device, nil
}

// withDevice adapts a device command to cobra's RunE
func (s *session) withDevice(run func(cmd *cobra.Command, dev simulator.Device, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		span, ctx := s.tracer.StartSpan(cmd.Context(), cmd.CommandPath())
		cmd.SetContext(ctx)

		dev, err := s.open(ctx)
		if err == nil {
			span.SetTag("udid", dev.UDID())
			err = run(cmd, dev, args)
		}
		if err != nil {
			span.SetError(err)
		}
		s.tracer.Submit(span)

		// cobra skips post-run hooks when RunE fails
		if err != nil {
			if terr := s.teardown(); terr != nil {
				s.logger.Warn("cleanup failed", zap.Error(terr))
			}
		}
		return err
	}
}

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if short, _ := cmd.Flags().GetBool("short"); short {
				fmt.Fprintln(out, BuildVersion)
				return nil
			}
			fmt.Fprintf(out, "simdriver %s\n", BuildVersion)
			fmt.Fprintf(out, "Commit: %s\n", BuildCommit)
			fmt.Fprintf(out, "Built: %s\n", BuildDate)
			return nil
		},
	}
	cmd.Flags().BoolP("short", "s", false, "Show only version number")
	return cmd
}
