package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/playtree/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update    bool   // regenerate golden files
	Filter    string // substring of scenario file names
	GoldenDir string // defaults to golden/ next to the scenarios directory
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden"` // "match", "mismatch", "missing", "updated"
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run scripted playback scenarios",
		Long: `Run scenario files against their playtrees.

Each scenario loads a tree, supplies scripted random draws, and checks
every step's expectations and the final assertions. The step trace is
compared with <name>.golden in the golden directory when that file
exists; --update rewrites it instead.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  playtree test ./testdata/scenarios
  playtree test ./testdata/scenarios --filter reset
  playtree test ./testdata/scenarios --update
  playtree test ./testdata/scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "run only scenario files whose name contains this")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden", "", "golden file directory (default: golden/ beside the scenarios directory)")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	files, err := harness.DiscoverScenarios(scenariosDir, opts.Filter)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeNotFound, err.Error(), err)
	}

	goldenDir := opts.GoldenDir
	if goldenDir == "" {
		goldenDir = filepath.Join(filepath.Dir(filepath.Clean(scenariosDir)), "golden")
	}

	result := TestResult{Scenarios: make([]ScenarioResult, 0, len(files)), Total: len(files)}
	if len(files) == 0 {
		if f.JSON() {
			return f.Success(result)
		}
		f.Printf("No scenarios found.\n")
		return nil
	}

	for _, file := range files {
		r := runScenario(file, goldenDir, opts.Update)
		if r.Pass {
			result.Passed++
			f.Printf("✓ %s", r.Name)
			if r.Golden == "updated" {
				f.Printf(" (golden updated)")
			}
			f.Printf("\n")
		} else {
			result.Failed++
			f.Printf("✗ %s\n", r.Name)
			for _, e := range r.Errors {
				f.Printf("  %s\n", e)
			}
		}
		opts.logger().Debug("scenario finished", "name", r.Name, "pass", r.Pass, "golden", r.Golden)
		result.Scenarios = append(result.Scenarios, r)
	}

	if f.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if result.Failed > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeTestFailed, Message: fmt.Sprintf("%d scenario(s) failed", result.Failed)}
		}
		if err := f.Encode(resp); err != nil {
			return err
		}
	} else {
		f.Printf("\nTest Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	f.Printf("✓ All scenarios passed\n")
	return nil
}

// runScenario executes one scenario file and checks or rewrites its golden trace.
func runScenario(file, goldenDir string, update bool) ScenarioResult {
	r := ScenarioResult{Name: filepath.Base(file), File: file}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		r.Errors = []string{fmt.Sprintf("load: %v", err)}
		return r
	}
	r.Name = scenario.Name

	res, err := harness.Run(scenario)
	if err != nil {
		r.Errors = []string{fmt.Sprintf("run: %v", err)}
		return r
	}
	r.Errors = append(r.Errors, res.Errors...)

	trace, err := harness.MarshalTrace(res.Trace)
	if err != nil {
		r.Errors = append(r.Errors, fmt.Sprintf("marshal trace: %v", err))
		return r
	}

	goldenPath := filepath.Join(goldenDir, scenario.Name+".golden")
	if update {
		if err := os.MkdirAll(goldenDir, 0o755); err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("create golden directory: %v", err))
			return r
		}
		if err := os.WriteFile(goldenPath, trace, 0o644); err != nil {
			r.Errors = append(r.Errors, fmt.Sprintf("write golden file: %v", err))
			return r
		}
		r.Golden = "updated"
	} else {
		want, err := os.ReadFile(goldenPath)
		switch {
		case os.IsNotExist(err):
			r.Golden = "missing"
		case err != nil:
			r.Errors = append(r.Errors, fmt.Sprintf("read golden file: %v", err))
			return r
		case bytes.Equal(want, trace):
			r.Golden = "match"
		default:
			r.Golden = "mismatch"
			r.Errors = append(r.Errors, "trace does not match golden file (run with --update to regenerate)")
		}
	}

	r.Pass = len(r.Errors) == 0
	return r
}
