package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. GITGET_FETCH_BACKEND
const EnvPrefix = "GITGET"

// LoadFrom loads configuration through v, honoring any flag bindings and
// explicit config file already set on it
func LoadFrom(v *viper.Viper) (*Config, error) {
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// An explicit --config file set via SetConfigFile wins over the search paths
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Fetch defaults
	v.SetDefault("fetch.host", DefaultHost)
	v.SetDefault("fetch.backend", DefaultBackend)
	v.SetDefault("fetch.git_binary", DefaultGitBinary)
	v.SetDefault("fetch.remote_name", DefaultRemoteName)
	v.SetDefault("fetch.depth", DefaultDepth)
	v.SetDefault("fetch.timeout", time.Duration(0))
	v.SetDefault("fetch.token", "")

	// Workspace defaults
	v.SetDefault("workspace.dir", "")
	v.SetDefault("workspace.prefix", DefaultWorkspacePrefix)

	// Output defaults
	v.SetDefault("output.update_gitignore", DefaultUpdateGitignore)
	v.SetDefault("output.ignore_file", DefaultIgnoreFile)
	v.SetDefault("output.progress", DefaultProgress)

	// Logging defaults
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}

