// Package wizard collects project settings interactively and turns them
// into a .faircheck.yaml configuration.
package wizard

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/fairdata/faircheck/internal/projectconfig"
	"golang.org/x/term"
)

// Answers holds the raw values entered in the wizard.
type Answers struct {
	TestsFile string
	Mode      string
	Workers   string
	Timeout   string
	Color     bool
}

// DefaultAnswers pre-populates the wizard from the built-in defaults.
func DefaultAnswers() Answers {
	cfg := projectconfig.New()
	return Answers{
		TestsFile: cfg.Paths.Tests,
		Mode:      cfg.Defaults.Mode,
		Workers:   strconv.Itoa(cfg.Defaults.Workers),
		Timeout:   cfg.Defaults.Timeout.String(),
		Color:     *cfg.Output.Color,
	}
}

// RunConfigWizard runs an interactive huh form and returns the resulting
// configuration.
func RunConfigWizard(in io.Reader, out io.Writer) (*projectconfig.ProjectConfig, error) {
	a := DefaultAnswers()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Tests file").
				Description("Newline-delimited list of name,interface entries").
				Placeholder(projectconfig.DefaultTestsFile).
				Value(&a.TestsFile).
				Validate(validateRequired("tests file")),
			huh.NewSelect[string]().
				Title("Failure policy").
				Description("What an unusable response does to the run").
				Options(
					huh.NewOption("lenient (drop the pair and continue)", "lenient"),
					huh.NewOption("strict (abort the run)", "strict"),
				).
				Value(&a.Mode),
			huh.NewInput().
				Title("Workers").
				Description("Concurrent test invocations (1 runs sequentially)").
				Value(&a.Workers).
				Validate(ValidateWorkers),
			huh.NewInput().
				Title("Timeout").
				Description("Timeout per test invocation, e.g. 30s or 2m (0s for none)").
				Value(&a.Timeout).
				Validate(ValidateTimeout),
			huh.NewConfirm().
				Title("Colored output?").
				Value(&a.Color),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	return a.Config()
}

// Config validates the answers and converts them to a configuration.
func (a Answers) Config() (*projectconfig.ProjectConfig, error) {
	if err := validateRequired("tests file")(a.TestsFile); err != nil {
		return nil, err
	}
	switch a.Mode {
	case "lenient", "strict":
	default:
		return nil, fmt.Errorf("invalid failure policy %q", a.Mode)
	}
	if err := ValidateWorkers(a.Workers); err != nil {
		return nil, err
	}
	if err := ValidateTimeout(a.Timeout); err != nil {
		return nil, err
	}

	workers, _ := strconv.Atoi(strings.TrimSpace(a.Workers))
	timeout, _ := time.ParseDuration(strings.TrimSpace(a.Timeout))

	cfg := projectconfig.New()
	cfg.Paths.Tests = strings.TrimSpace(a.TestsFile)
	cfg.Defaults.Mode = a.Mode
	cfg.Defaults.Workers = workers
	cfg.Defaults.Timeout = &timeout
	cfg.Output.Color = &a.Color
	return cfg, nil
}

// ValidateWorkers accepts a positive integer.
func ValidateWorkers(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("workers must be a positive integer")
	}
	return nil
}

// ValidateTimeout accepts a non-negative Go duration. Zero means no timeout.
func ValidateTimeout(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d < 0 {
		return fmt.Errorf("timeout must be a duration such as 30s, or 0s for none")
	}
	return nil
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
