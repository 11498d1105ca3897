// Package config loads the mainframe's HCL configuration: root prefixes,
// logging, the optional channel transport, and library load priorities.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Config is the translated, validated configuration.
type Config struct {
	SharedRoot string
	LocalRoot  string
	Logging    Logging
	Channels   *Channels
	Libraries  []Library
}

// Logging selects the slog level and handler format.
type Logging struct {
	Level  string
	Format string
}

// Channels configures the socket.io channel transport. Nil means the
// in-memory bus is used instead.
type Channels struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
}

// Library is one priority registration for the load-order table.
type Library struct {
	Path     string
	Priority float64
}

// --- HCL schema ---

type fileSchema struct {
	Mainframe *rootsBlock    `hcl:"mainframe,block"`
	Logging   *loggingBlock  `hcl:"logging,block"`
	Channels  *channelsBlock `hcl:"channels,block"`
	Libraries []libraryBlock `hcl:"library,block"`
}

type rootsBlock struct {
	SharedRoot string `hcl:"shared_root,optional"`
	LocalRoot  string `hcl:"local_root,optional"`
}

type loggingBlock struct {
	Level  string `hcl:"level,optional"`
	Format string `hcl:"format,optional"`
}

type channelsBlock struct {
	URL                string `hcl:"url"`
	Namespace          string `hcl:"namespace,optional"`
	InsecureSkipVerify bool   `hcl:"insecure_skip_verify,optional"`
}

type libraryBlock struct {
	Path     string         `hcl:"path,label"`
	Priority hcl.Expression `hcl:"priority"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		SharedRoot: "mainframe",
		LocalRoot:  "mainframe_local",
		Logging:    Logging{Level: "info", Format: "text"},
	}
}

// Load reads and translates the HCL file at path. An empty path, or a path
// that does not exist, yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parsing %q: %w", path, diags)
	}

	var schema fileSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &schema); diags.HasErrors() {
		return nil, fmt.Errorf("config: decoding %q: %w", path, diags)
	}

	return translate(&schema)
}

// translate converts the HCL schema into the validated Config, evaluating
// priority expressions through cty.
func translate(schema *fileSchema) (*Config, error) {
	cfg := Default()

	if schema.Mainframe != nil {
		if schema.Mainframe.SharedRoot != "" {
			cfg.SharedRoot = schema.Mainframe.SharedRoot
		}
		if schema.Mainframe.LocalRoot != "" {
			cfg.LocalRoot = schema.Mainframe.LocalRoot
		}
	}

	if schema.Logging != nil {
		if schema.Logging.Level != "" {
			cfg.Logging.Level = schema.Logging.Level
		}
		if schema.Logging.Format != "" {
			cfg.Logging.Format = schema.Logging.Format
		}
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("config: invalid logging level %q, want 'debug', 'info', 'warn' or 'error'", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return nil, fmt.Errorf("config: invalid logging format %q, want 'text' or 'json'", cfg.Logging.Format)
	}

	if schema.Channels != nil {
		cfg.Channels = &Channels{
			URL:                schema.Channels.URL,
			Namespace:          schema.Channels.Namespace,
			InsecureSkipVerify: schema.Channels.InsecureSkipVerify,
		}
	}

	for _, lib := range schema.Libraries {
		val, diags := lib.Priority.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("config: library %q: evaluating priority: %w", lib.Path, diags)
		}
		if val.IsNull() {
			return nil, fmt.Errorf("config: library %q: priority must not be null", lib.Path)
		}

		var priority float64
		if err := gocty.FromCtyValue(val, &priority); err != nil {
			return nil, fmt.Errorf("config: library %q: priority must be a number: %w", lib.Path, err)
		}
		cfg.Libraries = append(cfg.Libraries, Library{Path: lib.Path, Priority: priority})
	}

	return cfg, nil
}
