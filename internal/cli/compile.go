package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/playtree/internal/playtree"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path; stdout when empty
	To     string // "json" | "yaml"
}

// CompilationResult summarizes a compiled tree for --format json.
type CompilationResult struct {
	Hash   string             `json:"hash"`
	Output string             `json:"output,omitempty"`
	Tree   *playtree.Playtree `json:"tree,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <playtree>",
		Short: "Compile a playtree to JSON or YAML",
		Long: `Compile a playtree to the engine's interchange format.

Accepts a .cue file or CUE package directory as well as JSON and YAML,
so it also converts between the two. Every limit is written explicitly.
Trees with validation errors are refused.

Examples:
  playtree compile morning.cue
  playtree compile ./trees/morning -o morning.json
  playtree compile morning.json --to yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.To, "to", "json", "output encoding (json|yaml)")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	to := playtree.Format(opts.To)
	if to != playtree.FormatJSON && to != playtree.FormatYAML {
		return f.fail(ExitCommandError, ErrCodeBadArgument, fmt.Sprintf("invalid --to %q: must be json or yaml", opts.To), nil)
	}

	res, err := loadValidTree(f, path)
	if err != nil {
		return err
	}
	f.VerboseLog("Compiled %s (%d nodes)", path, len(res.Tree.Nodes))

	var buf bytes.Buffer
	if err := playtree.Encode(&buf, res.Tree, to); err != nil {
		return f.fail(ExitCommandError, ErrCodeGeneric, "encoding playtree", err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, buf.Bytes(), 0o644); err != nil {
			return f.fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), err)
		}
		if f.JSON() {
			return f.Success(CompilationResult{Hash: res.Hash, Output: opts.Output})
		}
		f.Printf("✓ Wrote %s (hash %s)\n", opts.Output, res.Hash)
		return nil
	}

	if f.JSON() {
		return f.Success(CompilationResult{Hash: res.Hash, Tree: res.Tree})
	}
	_, err = f.Writer.Write(buf.Bytes())
	return err
}
