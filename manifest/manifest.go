// Package manifest handles sol25.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the project configuration file.
const FileName = "sol25.toml"

// Output formats.
const (
	FormatXML  = "xml"
	FormatCBOR = "cbor"
)

// Defaults applied to keys absent from the file.
const (
	DefaultFormat = FormatXML
	DefaultIndent = 2
	DefaultAddr   = ":4567"
)

// Manifest represents a sol25.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Check   Check   `toml:"check"`
	Output  Output  `toml:"output"`
	Server  Server  `toml:"server"`

	// Dir is the directory containing the sol25.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Check configures the semantic analyzer.
type Check struct {
	StrictClasses bool `toml:"strict-classes"`
}

// Output configures the serialized document.
type Output struct {
	Format string `toml:"format"`
	Indent int    `toml:"indent"`
	Dump   string `toml:"dump"`
}

// Server configures the check service.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no sol25.toml exists.
func Default() *Manifest {
	return &Manifest{
		Output: Output{Format: DefaultFormat, Indent: DefaultIndent},
		Server: Server{Addr: DefaultAddr},
	}
}

// Load parses the sol25.toml file in the given directory.
func Load(dir string) (*Manifest, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses and validates a configuration file at path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates configuration text, then fills in defaults.
func Parse(data []byte) (*Manifest, error) {
	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if err := Validate(raw); err != nil {
		return nil, err
	}

	m := Default()
	md, err := toml.Decode(string(data), m)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	// Decode leaves zero values for empty strings given explicitly.
	if m.Output.Format == "" {
		m.Output.Format = DefaultFormat
	}
	if !md.IsDefined("output", "indent") {
		m.Output.Indent = DefaultIndent
	}
	if m.Server.Addr == "" {
		m.Server.Addr = DefaultAddr
	}
	return m, nil
}

// FindAndLoad walks up from startDir to find a sol25.toml file, then loads
// and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// DumpPath returns the dump file path resolved against the manifest
// directory, or "" when no dump is configured.
func (m *Manifest) DumpPath() string {
	if m.Output.Dump == "" || filepath.IsAbs(m.Output.Dump) || m.Dir == "" {
		return m.Output.Dump
	}
	return filepath.Join(m.Dir, m.Output.Dump)
}
