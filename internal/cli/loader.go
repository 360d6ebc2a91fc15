package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/playtree/internal/compiler"
	"github.com/roach88/playtree/internal/playtree"
)

// Error code constants, shared by every command.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeNotFound      = "E002" // Path not found
	ErrCodeUnsupported   = "E003" // Unsupported tree file extension
	ErrCodeDecodeFailed  = "E004" // JSON/YAML decode failed
	ErrCodeCompileFailed = "E005" // CUE compile failed
	ErrCodeWriteFailed   = "E006" // File write error
	ErrCodeInvalidTree   = "E007" // Tree has error-level issues

	ErrCodeStoreFailed     = "E010" // Database open/read/write failed
	ErrCodeSessionNotFound = "E011" // No such session
	ErrCodeBadArgument     = "E012" // Bad event, direction, or flag value
	ErrCodeContract        = "E013" // Engine refused the operation
	ErrCodeDiverged        = "E014" // Journal replay diverged
	ErrCodeTestFailed      = "E015" // One or more scenarios failed
)

// LoadError is a tree loading failure with a CLI error code.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadResult is a loaded tree with its validation findings.
type LoadResult struct {
	Tree     *playtree.Playtree
	Issues   []playtree.Issue
	Routing  []compiler.RoutingWarning
	Hash     string
	IsSource bool // loaded from CUE
}

// Valid reports whether the tree has no error-level issues.
func (r *LoadResult) Valid() bool {
	return !playtree.HasErrors(r.Issues)
}

// LoadPlaytree loads a tree from a .json, .yaml, .yml, or .cue file or a
// CUE package directory and validates it. Validation findings are part of
// the result; only failures to produce a tree at all are errors.
func LoadPlaytree(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("playtree not found: %s", path), Err: err}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing playtree: %v", err), Err: err}
	}

	isSource := info.IsDir()
	if !isSource {
		if _, ferr := playtree.FormatFromPath(path); ferr != nil {
			isSource = isCUE(path)
			if !isSource {
				return nil, &LoadError{Code: ErrCodeUnsupported, Message: ferr.Error(), Err: ferr}
			}
		}
	}

	tree, err := compiler.LoadTree(path)
	if err != nil {
		return nil, convertLoadError(err, isSource)
	}

	hash, err := playtree.ContentHash(tree)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("hashing playtree: %v", err), Err: err}
	}

	return &LoadResult{
		Tree:     tree,
		Issues:   playtree.Validate(tree),
		Routing:  compiler.AnalyzeRouting(tree),
		Hash:     hash,
		IsSource: isSource,
	}, nil
}

func isCUE(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".cue")
}

// convertLoadError maps a loader failure to a LoadError with position info.
func convertLoadError(err error, isSource bool) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeCompileFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
			Err:     err,
		}
	}
	if isSource {
		return &LoadError{Code: ErrCodeCompileFailed, Message: err.Error(), Err: err}
	}
	return &LoadError{Code: ErrCodeDecodeFailed, Message: err.Error(), Err: err}
}

// loadCode extracts the CLI code from a LoadPlaytree error.
func loadCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}

// loadValidTree loads path and refuses trees with error-level issues.
// Warnings are logged through the formatter's verbose channel.
func loadValidTree(f *OutputFormatter, path string) (*LoadResult, error) {
	res, err := LoadPlaytree(path)
	if err != nil {
		return nil, f.fail(ExitCommandError, loadCode(err), "failed to load playtree", err)
	}
	for _, issue := range res.Issues {
		f.VerboseLog("%s %s", issue.Severity, issue.Error())
	}
	if !res.Valid() {
		return nil, f.fail(ExitFailure, ErrCodeInvalidTree, "playtree has errors (run validate for details)", nil)
	}
	return res, nil
}
