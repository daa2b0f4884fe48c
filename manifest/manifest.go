// Package manifest handles chaperone.toml runtime configuration.
package manifest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/chaperone/vm"
)

// FileName is the configuration file looked for by Load and FindAndLoad.
const FileName = "chaperone.toml"

// Manifest represents a chaperone.toml configuration.
type Manifest struct {
	Runtime Runtime `toml:"runtime"`
	Log     Log     `toml:"log"`
	Metrics Metrics `toml:"metrics"`

	// Dir is the directory containing the chaperone.toml file (set at load
	// time). Empty for the built-in defaults.
	Dir string `toml:"-"`
}

// Runtime configures the VM.
type Runtime struct {
	CheckChaperones bool `toml:"check-chaperones"`
	MaxSteps        int  `toml:"max-steps"`
}

// Log configures commonlog.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Metrics configures metric output.
type Metrics struct {
	Enabled bool `toml:"enabled"`
}

// Default returns the configuration used when no chaperone.toml exists.
func Default() *Manifest {
	return &Manifest{}
}

// Load parses a chaperone.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m := Default()
	md, err := toml.Decode(string(data), m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	if m.Runtime.MaxSteps < 0 {
		return nil, fmt.Errorf("%s: runtime.max-steps must not be negative", path)
	}
	if m.Log.Verbosity < 0 {
		m.Log.Verbosity = 0
	}

	return m, nil
}

// FindAndLoad walks up from startDir to find a chaperone.toml file, then
// loads and returns it. Returns nil if no file is found.
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
			return nil, nil
		}
		dir = parent
	}
}

// LoadOrDefault is FindAndLoad falling back to Default.
func LoadOrDefault(startDir string) (*Manifest, error) {
	m, err := FindAndLoad(startDir)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return Default(), nil
	}
	return m, nil
}

// VMConfig returns the VM configuration described by m.
func (m *Manifest) VMConfig() vm.Config {
	return vm.Config{
		CheckChaperones: m.Runtime.CheckChaperones,
		MaxSteps:        m.Runtime.MaxSteps,
	}
}

// LogPath returns the log file path, resolved against Dir, or nil for
// stderr.
func (m *Manifest) LogPath() *string {
	if m.Log.File == "" {
		return nil
	}
	path := m.Log.File
	if !filepath.IsAbs(path) && m.Dir != "" {
		path = filepath.Join(m.Dir, path)
	}
	return &path
}

// Encode writes m in chaperone.toml form.
func (m *Manifest) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(m)
}
