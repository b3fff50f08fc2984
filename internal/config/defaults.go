package config

import (
	"os"
	"path/filepath"
)

// Default values
const (
	// Fetch defaults
	DefaultHost       = "github.com"
	DefaultBackend    = BackendExec
	DefaultGitBinary  = "git"
	DefaultRemoteName = "origin"
	DefaultDepth      = 1

	// Workspace defaults
	DefaultWorkspacePrefix = "git-get-"

	// Output defaults
	DefaultUpdateGitignore = true
	DefaultIgnoreFile      = ".gitignore"
	DefaultProgress        = true

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// Fetch backends
const (
	BackendExec    = "exec"
	BackendGoGit   = "gogit"
	BackendArchive = "archive"
)

// ValidBackends lists the accepted values of fetch.backend
var ValidBackends = []string{BackendExec, BackendGoGit, BackendArchive}

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".git-get"
	}
	return filepath.Join(home, ".git-get")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Fetch: FetchConfig{
			Host:       DefaultHost,
			Backend:    DefaultBackend,
			GitBinary:  DefaultGitBinary,
			RemoteName: DefaultRemoteName,
			Depth:      DefaultDepth,
		},
		Workspace: WorkspaceConfig{
			Prefix: DefaultWorkspacePrefix,
		},
		Output: OutputConfig{
			UpdateGitignore: DefaultUpdateGitignore,
			IgnoreFile:      DefaultIgnoreFile,
			Progress:        DefaultProgress,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
