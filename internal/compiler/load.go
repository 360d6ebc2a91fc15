package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/playtree/internal/playtree"
)

// CompileSource compiles CUE source holding a top-level playtree field.
// filename is used in error positions.
func CompileSource(filename string, src []byte) (*playtree.Playtree, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return lookupPlaytree(v)
}

// LoadFile compiles a single .cue file.
func LoadFile(path string) (*playtree.Playtree, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return CompileSource(path, src)
}

// LoadDir builds the CUE package in dir, so a playtree can be split across
// files and share definitions, and compiles its playtree field.
func LoadDir(dir string) (*playtree.Playtree, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances in %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	ctx := cuecontext.New()
	v := ctx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return lookupPlaytree(v)
}

// LoadTree loads a playtree from any supported source: a directory holding
// a CUE package, a .cue file, or a JSON or YAML file.
func LoadTree(path string) (*playtree.Playtree, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("playtree source: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return LoadFile(path)
	}
	return playtree.LoadFile(path)
}

func lookupPlaytree(v cue.Value) (*playtree.Playtree, error) {
	pt := v.LookupPath(cue.ParsePath("playtree"))
	if !pt.Exists() {
		return nil, &CompileError{
			Field:   "playtree",
			Message: "playtree is required",
			Pos:     v.Pos(),
		}
	}
	return CompilePlaytree(pt)
}
