package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/playtree/internal/compiler"
	"github.com/roach88/playtree/internal/playtree"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                      `json:"valid"`
	Hash    string                    `json:"hash"`
	Nodes   int                       `json:"nodes"`
	Roots   int                       `json:"roots"`
	Issues  []playtree.Issue          `json:"issues"`
	Routing []compiler.RoutingWarning `json:"routing"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <playtree>",
		Short: "Check a playtree for structural problems",
		Long: `Load a playtree and report validation issues.

Errors (unknown node kinds, negative weights, bad limits, duplicate item
ids, undeclared scopes) make the tree unusable. Warnings (dangling edges,
roots on missing nodes, duplicate edges, cycles of routing-only nodes)
describe parts the engine will skip or cut off.

Exit codes:
  0 - No errors (warnings allowed)
  1 - The tree has errors
  2 - The tree could not be loaded`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	res, err := LoadPlaytree(path)
	if err != nil {
		return f.fail(ExitCommandError, loadCode(err), "failed to load playtree", err)
	}
	f.VerboseLog("Loaded %s (%d nodes, hash %s)", path, len(res.Tree.Nodes), res.Hash)

	result := ValidationResult{
		Valid:   res.Valid(),
		Hash:    res.Hash,
		Nodes:   len(res.Tree.Nodes),
		Roots:   len(res.Tree.Roots),
		Issues:  res.Issues,
		Routing: res.Routing,
	}
	if result.Issues == nil {
		result.Issues = []playtree.Issue{}
	}

	if f.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeInvalidTree, Message: firstError(res.Issues)}
		}
		if err := f.Encode(resp); err != nil {
			return err
		}
	} else {
		outputValidateText(f, path, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", countErrors(res.Issues)))
	}
	return nil
}

func outputValidateText(f *OutputFormatter, path string, result ValidationResult) {
	if result.Valid {
		f.Printf("✓ %s is valid (%d nodes, %d roots)\n", path, result.Nodes, result.Roots)
	} else {
		f.Printf("✗ Validation failed\n")
	}
	if len(result.Issues)+len(result.Routing) == 0 {
		return
	}
	f.Printf("\n")
	for _, issue := range result.Issues {
		f.Printf("%-7s %s %s\n  %s\n", issue.Severity, issue.Code, issue.Path, issue.Message)
	}
	for _, w := range result.Routing {
		f.Printf("%-7s routing\n  %s\n", w.Level, w.Message)
	}
}

func countErrors(issues []playtree.Issue) int {
	n := 0
	for _, i := range issues {
		if i.Severity == playtree.SeverityError {
			n++
		}
	}
	return n
}

func firstError(issues []playtree.Issue) string {
	for _, i := range issues {
		if i.Severity == playtree.SeverityError {
			return i.Error()
		}
	}
	return ""
}
