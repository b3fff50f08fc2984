package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the application configuration
type Config struct {
	Fetch     FetchConfig     `mapstructure:"fetch" yaml:"fetch"`
	Workspace WorkspaceConfig `mapstructure:"workspace" yaml:"workspace"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// FetchConfig contains settings for retrieving the remote subdirectory
type FetchConfig struct {
	Host       string        `mapstructure:"host" yaml:"host"`
	Backend    string        `mapstructure:"backend" yaml:"backend"`
	GitBinary  string        `mapstructure:"git_binary" yaml:"git_binary"`
	RemoteName string        `mapstructure:"remote_name" yaml:"remote_name"`
	Depth      int           `mapstructure:"depth" yaml:"depth"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"` // 0 = wait forever
	// Token is reserved for private repositories and is not sent anywhere yet.
	Token string `mapstructure:"token" yaml:"-"`
}

// WorkspaceConfig controls where scratch directories are created
type WorkspaceConfig struct {
	Dir    string `mapstructure:"dir" yaml:"dir"` // empty = system temp dir
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	UpdateGitignore bool   `mapstructure:"update_gitignore" yaml:"update_gitignore"`
	IgnoreFile      string `mapstructure:"ignore_file" yaml:"ignore_file"`
	Progress        bool   `mapstructure:"progress" yaml:"progress"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration, replacing empty or out-of-range
// values with defaults. Only an unknown backend is an error.
func (c *Config) Validate() error {
	c.Fetch.Backend = strings.ToLower(strings.TrimSpace(c.Fetch.Backend))
	if c.Fetch.Backend == "" {
		c.Fetch.Backend = DefaultBackend
	}
	if !IsValidBackend(c.Fetch.Backend) {
		return fmt.Errorf("invalid fetch.backend %q (valid: %s)", c.Fetch.Backend, strings.Join(ValidBackends, ", "))
	}

	c.Fetch.Host = strings.Trim(strings.TrimSpace(c.Fetch.Host), "/")
	if c.Fetch.Host == "" {
		c.Fetch.Host = DefaultHost
	}
	if c.Fetch.GitBinary == "" {
		c.Fetch.GitBinary = DefaultGitBinary
	}
	if c.Fetch.RemoteName == "" {
		c.Fetch.RemoteName = DefaultRemoteName
	}
	if c.Fetch.Depth < 1 {
		c.Fetch.Depth = DefaultDepth
	}
	if c.Fetch.Timeout < 0 {
		c.Fetch.Timeout = 0
	}
	if c.Workspace.Prefix == "" {
		c.Workspace.Prefix = DefaultWorkspacePrefix
	}
	if c.Output.IgnoreFile == "" {
		c.Output.IgnoreFile = DefaultIgnoreFile
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format != "json" {
		c.Logging.Format = DefaultLogFormat
	}
	return nil
}

// IsValidBackend reports whether name is a supported fetch backend
func IsValidBackend(name string) bool {
	for _, b := range ValidBackends {
		if b == name {
			return true
		}
	}
	return false
}
