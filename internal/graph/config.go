package graph

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed config.cue
var configSchema string

const defaultConfigYAML = `# graph store configuration
busy_timeout_ms: 5000
synchronous: NORMAL
page_size: 500
`

// Config is the store configuration read from conf/graph.yaml.
// Keys absent from the file keep their defaults.
type Config struct {
	ReadOnly      bool   `yaml:"read_only"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
	Synchronous   string `yaml:"synchronous"`
	PageSize      int    `yaml:"page_size"`
}

// DefaultConfig returns the configuration used for an empty config file.
func DefaultConfig() Config {
	return Config{
		BusyTimeoutMS: 5000,
		Synchronous:   "NORMAL",
		PageSize:      500,
	}
}

// LoadConfig reads and validates a store config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig validates data against the config schema and decodes it over
// the defaults.
func ParseConfig(data []byte) (Config, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := DefaultConfig()
	if doc == nil {
		return cfg, nil
	}

	if err := validateConfig(doc); err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// validateConfig unifies the decoded document with the closed #Config
// definition, so unknown keys and out-of-range values are both rejected.
func validateConfig(doc map[string]any) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(configSchema, cue.Filename("config.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	value := ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
