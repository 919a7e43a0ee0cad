package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one normalization run over a seeded store.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// DryRun runs the pass without committing.
	DryRun bool `yaml:"dry_run,omitempty"`

	// Nodes are created in order before the pass runs.
	Nodes []NodeSeed `yaml:"nodes"`

	// Expect is checked against the pass outcome and the final store.
	Expect Expectation `yaml:"expect"`
}

// NodeSeed describes one node to create.
// Exactly one of Properties and Raw is used.
type NodeSeed struct {
	Labels []string `yaml:"labels,omitempty"`

	// Properties are converted to prop values; floats become prop.Number.
	Properties map[string]any `yaml:"properties,omitempty"`

	// Raw is stored verbatim as the node's property map.
	Raw string `yaml:"raw,omitempty"`
}

// Expectation describes the expected outcome of a scenario.
type Expectation struct {
	// Error is the expected failure class: "", ErrorScanFault or ErrorOther.
	Error string `yaml:"error,omitempty"`

	// Report holds expected report counters keyed by JSON name.
	// Subset match - only listed counters are checked.
	Report map[string]int `yaml:"report,omitempty"`

	// Nodes holds the expected final properties of each seeded node, in
	// seed order. Subset match - only listed properties are checked.
	Nodes []map[string]any `yaml:"nodes,omitempty"`
}

// Failure classes for Expectation.Error.
const (
	ErrorScanFault = "scan_fault"
	ErrorOther     = "error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "node:" vs "nodes:".
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

	for i, n := range s.Nodes {
		if n.Raw != "" && n.Properties != nil {
			return fmt.Errorf("nodes[%d]: properties and raw are mutually exclusive", i)
		}
	}

	switch s.Expect.Error {
	case "", ErrorScanFault, ErrorOther:
	default:
		return fmt.Errorf("expect.error: unknown failure class %q", s.Expect.Error)
	}

	for key := range s.Expect.Report {
		if _, ok := reportCounterNames[key]; !ok {
			return fmt.Errorf("expect.report: unknown counter %q", key)
		}
	}

	if len(s.Expect.Nodes) > len(s.Nodes) {
		return fmt.Errorf("expect.nodes: %d entries for %d seeded nodes", len(s.Expect.Nodes), len(s.Nodes))
	}

	return nil
}
