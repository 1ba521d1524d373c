package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fairdata/faircheck/internal/catalog"
	"github.com/fairdata/faircheck/internal/dataset"
	"github.com/fairdata/faircheck/internal/hooks"
	"github.com/fairdata/faircheck/internal/indicator"
	"github.com/fairdata/faircheck/internal/metrics"
	"github.com/fairdata/faircheck/internal/models"
	"github.com/fairdata/faircheck/internal/orchestration"
	"github.com/fairdata/faircheck/internal/projectconfig"
	"github.com/fairdata/faircheck/internal/reporting"
	"github.com/fairdata/faircheck/internal/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errNoResources = errors.New("no resources given: pass them as arguments or with --resources")

// settings is the effective configuration of one run: flags layered over
// the project config file.
type settings struct {
	resourcesFile string
	testsFile     string
	exportPath    string
	junitPath     string
	htmlPath      string
	metricsFile   string
	filters       []string
	mode          string
	workers       int
	userAgent     string
	quiet         bool
	summary       bool
	color         bool
	timeout       time.Duration
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s := resolveSettings(cmd, cfg, stdout)

	inlineResources, inlineTests := splitArgs(cmd, args)

	resources, err := loadResources(inlineResources, s.resourcesFile)
	if err != nil {
		return err
	}
	specs, err := loadSpecs(inlineTests, s.testsFile)
	if err != nil {
		return err
	}
	specs, err = orchestration.FilterTests(specs, s.filters)
	if err != nil {
		return err
	}

	policy, err := orchestration.ParsePolicy(s.mode)
	if err != nil {
		return err
	}

	client := indicator.NewClient(
		indicator.WithTimeout(s.timeout),
		indicator.WithUserAgent(s.userAgent+"/"+version),
	)

	var recorder metrics.Recorder = metrics.Noop{}
	var m *metrics.Metrics
	if s.metricsFile != "" {
		m = metrics.New()
		recorder = m
	}

	runner := orchestration.NewTestRunner(client,
		orchestration.WithPolicy(policy),
		orchestration.WithWorkers(s.workers),
		orchestration.WithRecorder(recorder),
	)

	hookRunner := &hooks.Runner{Output: stderr, Env: hookEnv(s, policy, len(resources), len(specs))}
	if err := hookRunner.Execute(ctx, hooks.BeforeRun, cfg.Hooks.BeforeRun); err != nil {
		return err
	}

	slog.Debug("Starting run", "resources", len(resources), "tests", len(specs), "mode", policy, "workers", s.workers)
	fmt.Fprintln(stdout, "Executing tests") //nolint:errcheck

	stopProgress := startProgress(runner, stderr)
	results, err := runner.Run(ctx, resources, specs)
	stopProgress()
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, "Generating output file") //nolint:errcheck
	if err := writeReports(stdout, stderr, results, s); err != nil {
		return err
	}

	if m != nil {
		if err := m.WriteTextfile(s.metricsFile); err != nil {
			return err
		}
	}

	if err := hookRunner.Execute(ctx, hooks.AfterRun, cfg.Hooks.AfterRun); err != nil {
		return err
	}

	fmt.Fprintln(stdout, "Done") //nolint:errcheck
	return nil
}

func loadConfig() (*projectconfig.ProjectConfig, error) {
	if configFile != "" {
		return projectconfig.LoadFile(configFile)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return projectconfig.Load(wd)
}

// resolveSettings layers explicitly set flags over the project config.
func resolveSettings(cmd *cobra.Command, cfg *projectconfig.ProjectConfig, stdout io.Writer) settings {
	flags := cmd.Flags()
	s := settings{
		resourcesFile: cfg.Paths.Resources,
		testsFile:     cfg.Paths.Tests,
		exportPath:    cfg.Paths.Export,
		junitPath:     cfg.Paths.JUnit,
		htmlPath:      cfg.Paths.HTML,
		metricsFile:   cfg.Metrics.File,
		filters:       cfg.Defaults.Filters,
		mode:          cfg.Defaults.Mode,
		workers:       cfg.Defaults.Workers,
		timeout:       *cfg.Defaults.Timeout,
		userAgent:     cfg.Defaults.UserAgent,
		quiet:         noVerbosity || *cfg.Output.Quiet,
		summary:       summary || *cfg.Output.Summary,
		color:         !noColor && *cfg.Output.Color && isTerminal(stdout),
	}

	if flags.Changed("resources") {
		s.resourcesFile = resourcesFile
	}
	if flags.Changed("tests") {
		s.testsFile = testsFile
	}
	if flags.Changed("export") {
		s.exportPath = exportPath
	}
	if flags.Changed("junit") {
		s.junitPath = junitPath
	}
	if flags.Changed("html") {
		s.htmlPath = htmlPath
	}
	if flags.Changed("metrics-file") {
		s.metricsFile = metricsFile
	}
	if flags.Changed("test-filter") {
		s.filters = testFilters
	}
	if flags.Changed("mode") {
		s.mode = mode
	}
	if flags.Changed("workers") {
		s.workers = workers
	}
	if flags.Changed("timeout") {
		s.timeout = timeout
	}
	return s
}

// splitArgs separates positional resources from the tests given after "--".
func splitArgs(cmd *cobra.Command, args []string) (resources, tests []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return args, nil
	}
	return args[:dash], args[dash:]
}

// loadResources prefers inline resources over the resources file.
func loadResources(inline []string, path string) ([]string, error) {
	if len(inline) > 0 {
		return inline, nil
	}
	if path == "" {
		return nil, errNoResources
	}
	return dataset.LoadLines(path)
}

// loadSpecs prefers inline tests, then the tests file, which defaults to
// the configured tests path.
func loadSpecs(inline []string, path string) ([]models.TestSpec, error) {
	lines := inline
	if len(lines) == 0 {
		var err error
		if lines, err = dataset.LoadLines(path); err != nil {
			return nil, err
		}
	}
	return catalog.Specs(lines)
}

// startProgress shows a spinner on stderr while the run is in flight when
// stderr is a terminal. The returned function stops it.
func startProgress(runner *orchestration.TestRunner, stderr io.Writer) func() {
	if !isTerminal(stderr) {
		return func() {}
	}

	sp := spinner.Start(stderr, "Executing tests")
	var completed atomic.Int64
	runner.OnProgress(func(e orchestration.ProgressEvent) {
		switch e.EventType {
		case orchestration.EventTestComplete, orchestration.EventTestUnusable:
			n := completed.Add(1)
			sp.Update(fmt.Sprintf("Executing tests (%d/%d) %s", n, e.TotalCalls, e.TestName))
		}
	})
	return sp.Stop
}

// writeReports renders every requested report. The dropped-pairs warning
// goes to stderr so --no-verbosity leaves stdout free of report text.
func writeReports(stdout, stderr io.Writer, results *models.Results, s settings) error {
	names := results.ActiveTestNames()

	var style reporting.Styler = reporting.PlainStyler{}
	if s.color {
		style = reporting.NewColorStyler()
	}
	if !s.quiet {
		if err := reporting.NewConsoleReporter(stdout, style).Report(results, names); err != nil {
			return err
		}
	}

	var warnStyle reporting.Styler = reporting.PlainStyler{}
	if s.color && isTerminal(stderr) {
		warnStyle = reporting.NewColorStyler()
	}
	if err := reporting.NewConsoleReporter(stderr, warnStyle).ReportDropped(results); err != nil {
		return err
	}

	if s.summary {
		reporting.WriteSummaryTable(stdout, results, names, s.color)
		if _, err := fmt.Fprint(stdout, reporting.FormatSummaryReport(results, names)); err != nil {
			return err
		}
	}

	if s.exportPath != "" {
		if err := reporting.ExportCSV(s.exportPath, results, names); err != nil {
			return err
		}
	}
	if s.junitPath != "" {
		if err := reporting.WriteJUnitXML(results, names, s.junitPath); err != nil {
			return err
		}
	}
	if s.htmlPath != "" {
		if err := reporting.ExportHTML(s.htmlPath, results, names); err != nil {
			return err
		}
	}
	return nil
}

// hookEnv describes the run to hook commands.
func hookEnv(s settings, policy orchestration.Policy, resources, tests int) []string {
	return []string{
		"FAIRCHECK_MODE=" + string(policy),
		"FAIRCHECK_EXPORT=" + s.exportPath,
		"FAIRCHECK_JUNIT=" + s.junitPath,
		"FAIRCHECK_HTML=" + s.htmlPath,
		fmt.Sprintf("FAIRCHECK_RESOURCES=%d", resources),
		fmt.Sprintf("FAIRCHECK_TESTS=%d", tests),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
