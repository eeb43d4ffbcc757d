package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one compile scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	Target string `yaml:"target"`
	Device string `yaml:"device,omitempty"`

	// BlocksDir is a CUE package of custom block types. Resolved relative to
	// the scenario file when loaded from disk.
	BlocksDir string `yaml:"blocks_dir,omitempty"`

	// IdleDelayMS overrides the profile's idle delay when set.
	IdleDelayMS *int `yaml:"idle_delay_ms,omitempty"`

	// Workspace is the block tree in YAML tree form.
	Workspace map[string]any `yaml:"workspace"`

	Assertions []Assertion `yaml:"assertions"`
}

// Assertion checks one property of a compile.
type Assertion struct {
	Type string `yaml:"type"`

	// Text is the substring for contains, not_contains, count and warning.
	Text string `yaml:"text,omitempty"`

	// Texts is the expected sequence for order.
	Texts []string `yaml:"texts,omitempty"`

	// Count is the expected number of occurrences for count.
	Count int `yaml:"count,omitempty"`

	// Code is the expected error code for error.
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertContains    = "contains"
	AssertNotContains = "not_contains"
	AssertOrder       = "order"
	AssertCount       = "count"
	AssertWarning     = "warning"
	AssertNoWarnings  = "no_warnings"
	AssertValid       = "valid"
	AssertError       = "error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.BlocksDir != "" && !filepath.IsAbs(scenario.BlocksDir) {
		scenario.BlocksDir = filepath.Join(filepath.Dir(path), scenario.BlocksDir)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. blocks_dir is left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
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
	if s.Target == "" {
		return fmt.Errorf("target is required")
	}
	if s.Workspace == nil {
		return fmt.Errorf("workspace is required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if s.IdleDelayMS != nil && *s.IdleDelayMS < 0 {
		return fmt.Errorf("idle_delay_ms must be non-negative")
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
	case AssertContains, AssertNotContains, AssertWarning:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertOrder:
		if len(a.Texts) < 2 {
			return fmt.Errorf("assertions[%d]: order needs at least two texts", index)
		}
	case AssertCount:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertError:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error", index)
		}
	case AssertNoWarnings, AssertValid:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
