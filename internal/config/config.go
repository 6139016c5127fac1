package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "microes.json"

	// DefaultPort is the default preview server port.
	DefaultPort = 7878

	// DefaultPortAttempts is how many sequential ports the preview server
	// tries when the requested one is busy.
	DefaultPortAttempts = 10

	// DefaultDebounceMS is the watcher poll interval in milliseconds.
	DefaultDebounceMS = 100
)

// Config represents the complete microes.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Preview contains preview server settings.
	Preview PreviewConfig `json:"preview,omitempty"`

	// Build contains toolchain settings for building project scripts.
	Build BuildConfig `json:"build,omitempty"`

	// Watch contains file-watching settings.
	Watch WatchConfig `json:"watch,omitempty"`

	// dir stores the project directory the config was loaded from.
	dir string
}

// PreviewConfig contains preview server settings.
type PreviewConfig struct {
	// Port is the requested preview port. The bound port may differ when
	// this one is busy.
	Port int `json:"port,omitempty"`

	// PortAttempts is how many sequential ports to try.
	PortAttempts int `json:"portAttempts,omitempty"`

	// OpenBrowser opens the preview in the default browser on start.
	OpenBrowser bool `json:"openBrowser,omitempty"`
}

// BuildConfig contains project toolchain settings.
type BuildConfig struct {
	// Command is the executable that builds the project's scripts into
	// dist/. Empty means the project has no build step and script changes
	// reload directly.
	Command string `json:"command,omitempty"`

	// Args are passed to Command.
	Args []string `json:"args,omitempty"`
}

// WatchConfig contains file-watching settings.
type WatchConfig struct {
	// Paths are the directories to watch, relative to the project root.
	// Empty means the whole project root.
	Paths []string `json:"paths,omitempty"`

	// Ignore are patterns skipped during watching, added to the defaults.
	Ignore []string `json:"ignore,omitempty"`

	// DebounceMS is the poll interval in milliseconds.
	DebounceMS int `json:"debounceMs,omitempty"`
}

// Load reads microes.json from the given project directory. A missing file
// is not an error: the zero config plus defaults describes a perfectly
// serviceable project.
func Load(dir string) (*Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %q: %w", dir, err)
	}

	cfg := &Config{dir: abs}

	data, err := os.ReadFile(filepath.Join(abs, ConfigFileName))
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", ConfigFileName, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", ConfigFileName, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadFromWorkingDir loads the config from the current working directory.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return Load(wd)
}

// applyDefaults fills zero values with defaults.
func (c *Config) applyDefaults() {
	if c.Preview.Port == 0 {
		c.Preview.Port = DefaultPort
	}
	if c.Preview.PortAttempts == 0 {
		c.Preview.PortAttempts = DefaultPortAttempts
	}
	if c.Watch.DebounceMS == 0 {
		c.Watch.DebounceMS = DefaultDebounceMS
	}
}

// Dir returns the project directory the config was loaded from.
func (c *Config) Dir() string {
	return c.dir
}

// WatchPaths returns the absolute directories the watcher should monitor.
func (c *Config) WatchPaths() []string {
	if len(c.Watch.Paths) == 0 {
		return []string{c.dir}
	}
	paths := make([]string, 0, len(c.Watch.Paths))
	for _, p := range c.Watch.Paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(c.dir, p)
		}
		paths = append(paths, p)
	}
	return paths
}

// HasBuildStep reports whether the project configures a script toolchain.
func (c *Config) HasBuildStep() bool {
	return c.Build.Command != ""
}
