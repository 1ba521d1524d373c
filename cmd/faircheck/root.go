package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	exportPath    string
	noVerbosity   bool
	resourcesFile string
	testsFile     string
	mode          string
	workers       int
	timeout       time.Duration
	summary       bool
	noColor       bool
	metricsFile   string
	configFile    string
	junitPath     string
	htmlPath      string
	testFilters   []string
)

// shortNoVerbosity is the single-dash spelling of --no-verbosity. pflag only
// allows one-letter shorthands, so it is rewritten before parsing.
const shortNoVerbosity = "-nv"

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faircheck [flags] [resources...] [-- tests...]",
		Short: "Check the degree of compliance with FAIR principles of a resource",
		Long: `faircheck evaluates resources against FAIR maturity indicator tests.

Every test interface receives a POST with {"subject": <resource>} and answers
with a JSON-LD verdict. Results are printed per resource and can be exported
as CSV.

Resources are given as arguments or with --resources. Tests are given after
"--" as "name,interface" or bare interface URLs, with --tests, or read from
the configured default tests file.`,
		Example: `  faircheck https://doi.org/10.5281/zenodo.1 -e results.csv
  faircheck -r resources.txt -t tests.csv --summary
  faircheck https://example.org/a -- hasLicense,https://tests.example.org/license`,
		Args:          cobra.ArbitraryArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.Flags().StringVarP(&exportPath, "export", "e", "", "Export the results as a CSV file (gzip-compressed if the path ends in .gz)")
	cmd.Flags().BoolVar(&noVerbosity, "no-verbosity", false, "Don't display the test results on the standard output (also -nv)")
	cmd.Flags().StringVarP(&resourcesFile, "resources", "r", "", "Path to a newline-delimited resource file")
	cmd.Flags().StringVarP(&testsFile, "tests", "t", "", "Path to a newline-delimited test file")
	cmd.Flags().StringVar(&mode, "mode", "", "Failure policy for unusable responses: lenient or strict (default lenient)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of concurrent test invocations (default 1)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Timeout per test invocation (0 for none)")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print a summary table and interpretation after the report")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to a node_exporter textfile")
	cmd.Flags().StringVar(&configFile, "config", "", "Path to a project config file (default: nearest .faircheck.yaml)")
	cmd.Flags().StringVar(&junitPath, "junit", "", "Write results as JUnit XML")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Write an HTML report")
	cmd.Flags().StringArrayVar(&testFilters, "test-filter", nil, "Only run tests whose name or interface matches the glob (repeatable)")

	cmd.AddCommand(newInitCommand())

	return cmd
}

// normalizeArgs rewrites the single-dash -nv flag to its long form.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a == "--" {
			copy(out[i:], args[i:])
			break
		}
		if a == shortNoVerbosity {
			a = "--no-verbosity"
		}
		out[i] = a
	}
	return out
}

func execute(args []string) error {
	return executeWith(args, os.Stdout, os.Stderr)
}

func executeWith(args []string, stdout, stderr io.Writer) error {
	rootCmd := newRootCommand(stdout, stderr)
	if len(args) == 0 {
		return rootCmd.Help()
	}
	rootCmd.SetArgs(normalizeArgs(args))
	return rootCmd.Execute()
}
