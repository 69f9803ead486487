package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "synapdb.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "synapdb.yml"

// envPrefix namespaces the environment overrides. Nesting uses a double
// underscore: SYNAPDB_DATABASE__HOST -> database.host.
const envPrefix = "SYNAPDB_"

// flagKeys maps CLI flag names to config keys. Only flags listed here feed
// into configuration; everything else on the flag set is command plumbing.
var flagKeys = map[string]string{
	"db-type":  "database.type",
	"db-path":  "database.path",
	"db-host":  "database.host",
	"db-port":  "database.port",
	"db-name":  "database.name",
	"rig-name": "rig_name",
}

// Load reads configuration in precedence order: defaults, then the YAML
// file at path (skipped when path is empty), then environment overrides.
func Load(path string) (*Config, error) {
	return LoadWithFlags(path, nil)
}

// LoadWithFlags is Load with a final CLI-flag layer on top: flags that were
// explicitly set override file and environment values.
func LoadWithFlags(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"database.type": "postgres",
		"database.host": "localhost",
		"database.port": 5432,
		"database.name": DefaultDatabaseName,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// LoadFromDir loads configuration from the synapdb.yaml or synapdb.yml in
// dir, falling back to defaults and environment when neither exists.
func LoadFromDir(dir string) (*Config, error) {
	return Load(findConfigFile(dir))
}

// LoadFromDirWithFlags is LoadFromDir with the CLI-flag layer.
func LoadFromDirWithFlags(dir string, flags *pflag.FlagSet) (*Config, error) {
	return LoadWithFlags(findConfigFile(dir), flags)
}

// findConfigFile finds the config file in the given directory.
// Returns empty string if not found.
func findConfigFile(dir string) string {
	yamlPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath
	}

	ymlPath := filepath.Join(dir, ConfigFileNameAlt)
	if _, err := os.Stat(ymlPath); err == nil {
		return ymlPath
	}

	return ""
}
