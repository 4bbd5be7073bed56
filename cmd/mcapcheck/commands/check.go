// Package commands implements the mcapcheck CLI commands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/mcapcheck/pkg/checker"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/config"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/history"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/observability"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/plot"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/report"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/terminal"
	"github.com/Sumatoshi-tech/mcapcheck/pkg/version"
)

const reportSuffix = "_report.json"

// ErrSingleFileFlag is returned when a per-file output flag is combined with
// several input files.
var ErrSingleFileFlag = errors.New("flag accepts a single input file only")

// ExitError carries the grade of the worst report so main can exit with its code.
type ExitError struct {
	Level report.Level
}

func (e *ExitError) Error() string { return "check result: " + string(e.Level) }

// Code is the process exit code for the grade.
func (e *ExitError) Code() int { return e.Level.ExitCode() }

// CheckCommand holds the flag values of the root check command.
type CheckCommand struct {
	jsonPath    string
	configPath  string
	format      string
	reportsDir  string
	plotPath    string
	dbPath      string
	metricsFile string

	strict   bool
	vision   bool
	advanced bool
	noSave   bool
	noColor  bool
	verbose  bool
	quiet    bool

	jobs int
}

// NewCheckCommand creates the root command that checks MCAP files.
func NewCheckCommand() *cobra.Command {
	cc := &CheckCommand{}

	cmd := &cobra.Command{
		Use:   "mcapcheck [flags] <mcap_file>...",
		Short: "MCAP robot-arm data quality checker",
		Long: `mcapcheck grades MCAP robot-arm recordings as PASS, WARN or FAIL.

Each file is checked for structure, timestamps, topic rates, camera
synchronisation, joint-state values and recording metadata. The exit code is
0 for PASS, 1 for FAIL and 2 for WARN, using the worst file.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          cc.run,
	}

	cmd.PersistentFlags().BoolVarP(&cc.verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVarP(&cc.quiet, "quiet", "q", false, "suppress output")

	cmd.Flags().StringVarP(&cc.jsonPath, "json", "j", "", "Write the JSON report to this path (.lz4 for a compressed archive)")
	cmd.Flags().BoolVarP(&cc.strict, "strict", "s", false, "Report quality warnings as failures")
	cmd.Flags().BoolVar(&cc.vision, "enable-vision", false, "Run the image sampling checks")
	cmd.Flags().BoolVar(&cc.advanced, "enable-advanced", false, "Run the trajectory and vibration checks")
	cmd.Flags().StringVar(&cc.configPath, "config", "", "Config file (default: .mcapcheck.yaml in the working or home directory)")
	cmd.Flags().StringVar(&cc.format, "format", config.DefaultFormat, "Output format: text, json, yaml")
	cmd.Flags().StringVar(&cc.reportsDir, "reports-dir", config.DefaultReportsDir, "Directory for auto-saved JSON reports")
	cmd.Flags().BoolVar(&cc.noSave, "no-save", false, "Do not auto-save the JSON report")
	cmd.Flags().BoolVar(&cc.noColor, "no-color", false, "Disable colored text output")
	cmd.Flags().StringVar(&cc.plotPath, "plot", "", "Write an HTML page with topic rate and gap charts")
	cmd.Flags().StringVar(&cc.dbPath, "db", "", "Record each run in this SQLite history database")
	cmd.Flags().StringVar(&cc.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file on exit")
	cmd.Flags().IntVar(&cc.jobs, "jobs", 1, "Number of files checked in parallel")

	return cmd
}

func (cc *CheckCommand) run(cmd *cobra.Command, args []string) error {
	if len(args) > 1 && (cc.jsonPath != "" || cc.plotPath != "") {
		return fmt.Errorf("%w: --json and --plot", ErrSingleFileFlag)
	}

	cfg, err := cc.loadConfig(cmd)
	if err != nil {
		return err
	}

	providers, err := observability.Init(cc.observabilityConfig(cfg, cmd.ErrOrStderr()))
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	metrics, err := observability.NewCheckMetrics(providers.Meter)
	if err != nil {
		return err
	}

	chk := checker.New(cfg)
	chk.Tracer = providers.Tracer
	chk.Metrics = metrics
	chk.Logger = providers.Logger

	outcomes, err := cc.checkAll(cmd.Context(), chk, args)
	if err != nil {
		return err
	}

	worst, err := cc.emit(cmd, cfg, args, outcomes, providers.Logger)
	if err != nil {
		return err
	}

	if worst == report.LevelPass {
		return nil
	}

	return &ExitError{Level: worst}
}

func (cc *CheckCommand) loadConfig(cmd *cobra.Command) (config.Config, error) {
	base, err := config.Load(cc.configPath)
	if err != nil {
		return config.Config{}, err
	}

	var o config.Overrides

	flags := cmd.Flags()
	if flags.Changed("strict") {
		o.Strict = &cc.strict
	}

	if flags.Changed("enable-vision") {
		o.Vision = &cc.vision
	}

	if flags.Changed("enable-advanced") {
		o.Advanced = &cc.advanced
	}

	if flags.Changed("format") {
		o.Format = &cc.format
	}

	if flags.Changed("reports-dir") {
		o.ReportsDir = &cc.reportsDir
	}

	if flags.Changed("no-save") {
		o.NoSave = &cc.noSave
	}

	if flags.Changed("no-color") {
		o.NoColor = &cc.noColor
	}

	cfg := base.With(o)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("validate flags: %w", err)
	}

	return cfg, nil
}

func (cc *CheckCommand) observabilityConfig(cfg config.Config, logs io.Writer) observability.Config {
	obs := observability.DefaultConfig()
	obs.ServiceVersion = version.Version
	obs.LogWriter = logs
	obs.MetricsFile = cc.metricsFile
	obs.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	obs.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	obs.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	obs.LogJSON = cfg.Logging.Format == "json"
	obs.LogLevel = observability.ParseLevel(cfg.Logging.Level)

	switch {
	case cc.verbose:
		obs.LogLevel = slog.LevelDebug
	case cc.quiet:
		obs.LogLevel = slog.LevelError
	}

	return obs
}

// checkAll runs every file, at most cc.jobs at a time. Outcomes keep the
// argument order.
func (cc *CheckCommand) checkAll(ctx context.Context, chk *checker.Checker, paths []string) ([]checker.Outcome, error) {
	outcomes := make([]checker.Outcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cc.jobs, 1))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			outcomes[i] = chk.Run(gctx, path)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("check files: %w", err)
	}

	return outcomes, nil
}

func (cc *CheckCommand) emit(
	cmd *cobra.Command, cfg config.Config, paths []string, outcomes []checker.Outcome, logger *slog.Logger,
) (report.Level, error) {
	var store *history.Store

	if cc.dbPath != "" {
		s, err := history.Open(cmd.Context(), cc.dbPath)
		if err != nil {
			return "", err
		}

		defer s.Close()

		store = s
	}

	term := terminal.NewConfig()
	term.NoColor = term.NoColor || cfg.Output.NoColor

	worst := report.LevelPass
	out := cmd.OutOrStdout()

	for i, outcome := range outcomes {
		doc := outcome.Report.Document()
		worst = worst.Worse(doc.Level)

		if err := render(out, cfg.Output.Format, doc, term, paths[i]); err != nil {
			return "", err
		}

		saved, err := cc.save(cfg, doc, paths[i])
		if err != nil {
			return "", err
		}

		if saved != "" && !cc.quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to: %s\n", saved)
		}

		if cc.plotPath != "" {
			if err := writePlot(cc.plotPath, paths[i], outcome, cfg); err != nil {
				return "", err
			}
		}

		if store != nil {
			run, err := store.Record(cmd.Context(), doc, cfg.Modes.Strict, outcome.Duration)
			if err != nil {
				return "", err
			}

			logger.Debug("run recorded", "id", run.ID, "db", cc.dbPath)
		}
	}

	return worst, nil
}

// save writes the JSON report to --json, or auto-saves it under the reports
// directory. It returns the written path, empty when nothing was saved.
func (cc *CheckCommand) save(cfg config.Config, doc report.Document, path string) (string, error) {
	target := cc.jsonPath

	if target == "" {
		if cfg.Output.NoSave {
			return "", nil
		}

		target = AutoSavePath(cfg.Output.ReportsDir, path)
	}

	if err := report.WriteFile(target, doc); err != nil {
		return "", err
	}

	return target, nil
}

// AutoSavePath returns <dir>/<stem>_report.json for the MCAP file at path.
func AutoSavePath(dir, path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	return filepath.Join(dir, stem+reportSuffix)
}

func render(w io.Writer, format string, doc report.Document, term terminal.Config, path string) error {
	switch format {
	case config.FormatJSON:
		return report.EncodeJSON(w, doc)
	case config.FormatYAML:
		return report.EncodeYAML(w, doc)
	default:
		opts := report.TextOptions{Terminal: term}

		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			opts.FileSize = info.Size()
		}

		return report.WriteText(w, doc, opts)
	}
}

func writePlot(target, path string, outcome checker.Outcome, cfg config.Config) error {
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create plot: %w", err)
	}

	err = plot.Write(f, path, outcome.Topics, cfg.Checks)

	return errors.Join(err, f.Close())
}
