package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/playtree/internal/engine"
)

// Scenario is a scripted walk through one playtree.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Tree is the playtree source: a .json, .yaml, or .cue file, or a CUE
	// package directory. Relative paths resolve against the scenario file.
	Tree string `yaml:"tree"`

	// MaxTraversalSteps overrides the engine's hop cap when positive.
	MaxTraversalSteps int `yaml:"max_traversal_steps,omitempty"`

	// Load supplies draws for selector roots.
	Load LoadStep `yaml:"load,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// LoadStep configures the initial load.
type LoadStep struct {
	Draws  Draws   `yaml:"draws,omitempty"`
	Expect *Expect `yaml:"expect,omitempty"`
}

// Draws lists the random values one step hands the engine.
type Draws struct {
	Selector []float64 `yaml:"selector,omitempty"`
	Edge     []float64 `yaml:"edge,omitempty"`
}

// Step is one engine operation. Exactly one of Advance, Rewind, and
// Switch is set.
type Step struct {
	Advance string  `yaml:"advance,omitempty"` // song_ended or skip_forward
	Rewind  bool    `yaml:"rewind,omitempty"`
	Switch  string  `yaml:"switch,omitempty"` // next, prev, +1, -1
	Draws   Draws   `yaml:"draws,omitempty"`
	Expect  *Expect `yaml:"expect,omitempty"`
}

// Op names the step's operation.
func (s Step) Op() string {
	switch {
	case s.Advance != "":
		return "advance"
	case s.Rewind:
		return "rewind"
	case s.Switch != "":
		return "switch"
	}
	return ""
}

// Expect checks the state after a step. Zero-valued fields are not
// checked; pointer fields distinguish "expect zero" from "don't care".
type Expect struct {
	Playhead string         `yaml:"playhead,omitempty"` // acted-on playhead
	Current  string         `yaml:"current,omitempty"`
	Node     string         `yaml:"node,omitempty"`
	Item     string         `yaml:"item,omitempty"`
	Mult     *int           `yaml:"mult,omitempty"`
	Outcome  string         `yaml:"outcome,omitempty"`
	Route    []string       `yaml:"route,omitempty"`
	Failure  string         `yaml:"failure,omitempty"`
	Stopped  *bool          `yaml:"stopped,omitempty"`
	History  *int           `yaml:"history,omitempty"`
	Error    string         `yaml:"error,omitempty"`
	Counters map[string]int `yaml:"counters,omitempty"` // acted-on playhead
}

// Assertion validates the final state or the whole trace.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	Playhead string   `yaml:"playhead,omitempty"`
	Node     string   `yaml:"node,omitempty"`
	Item     string   `yaml:"item,omitempty"`
	Stopped  *bool    `yaml:"stopped,omitempty"`
	Key      string   `yaml:"key,omitempty"`
	Count    int      `yaml:"count,omitempty"`
	Text     string   `yaml:"text,omitempty"`
	Items    []string `yaml:"items,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState      = "final_state"
	AssertCounter         = "counter"
	AssertMessageContains = "message_contains"
	AssertItemsPlayed     = "items_played"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict fields catch typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Tree != "" && !filepath.IsAbs(scenario.Tree) {
		scenario.Tree = filepath.Join(filepath.Dir(path), scenario.Tree)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Tree == "" {
		return fmt.Errorf("tree is required")
	}
	if _, err := os.Stat(s.Tree); os.IsNotExist(err) {
		return fmt.Errorf("tree not found: %s", s.Tree)
	}
	if s.MaxTraversalSteps < 0 {
		return fmt.Errorf("max_traversal_steps must be non-negative")
	}

	for i, step := range s.Steps {
		set := 0
		if step.Advance != "" {
			set++
		}
		if step.Rewind {
			set++
		}
		if step.Switch != "" {
			set++
		}
		if set != 1 {
			return fmt.Errorf("steps[%d]: exactly one of advance, rewind, switch is required", i)
		}
		if step.Switch != "" {
			if _, err := engine.ParseDirection(step.Switch); err != nil {
				return fmt.Errorf("steps[%d]: %w", i, err)
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalState:
		if a.Playhead == "" {
			return fmt.Errorf("assertions[%d]: playhead is required for final_state", index)
		}
	case AssertCounter:
		if a.Playhead == "" || a.Key == "" {
			return fmt.Errorf("assertions[%d]: playhead and key are required for counter", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for counter", index)
		}
	case AssertMessageContains:
		if a.Playhead == "" || a.Text == "" {
			return fmt.Errorf("assertions[%d]: playhead and text are required for message_contains", index)
		}
	case AssertItemsPlayed:
		if len(a.Items) == 0 {
			return fmt.Errorf("assertions[%d]: items list is required for items_played", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
