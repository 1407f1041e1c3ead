package util

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ConfigEnv names the environment variable consulted when no -config flag is given.
const ConfigEnv = "BREWIN_CONFIG"

type Configuration struct {
	Version   string `toml:"-"`
	BuildDate string `toml:"-"`
	Commit    string `toml:"-"`

	Dialect     string `toml:"dialect"`
	GlobalScope bool   `toml:"global_scope"`
	MaxDepth    int    `toml:"max_depth"`
	Trace       bool   `toml:"trace"`
	DebugAST    bool   `toml:"debug_ast"`

	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	ResultsDSN  string `toml:"results_dsn"`
	Parallelism int    `toml:"parallelism"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		LogLevel:    "error",
		Parallelism: 4,
	}
}

// ConfigPath returns explicit if set, otherwise the value of $BREWIN_CONFIG.
func ConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv(ConfigEnv)
}

// LoadConfiguration decodes the TOML file at path over the defaults. An empty
// path yields the defaults unchanged.
func LoadConfiguration(path string) (Configuration, error) {
	config := DefaultConfiguration()
	if path == "" {
		return config, nil
	}
	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return config, fmt.Errorf("reading config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return config, fmt.Errorf("reading config %s: unknown key %q", path, undecoded[0].String())
	}
	if config.Parallelism < 1 {
		config.Parallelism = 1
	}
	return config, nil
}
