package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, DefaultDatabaseName, cfg.Database.Name)
	assert.Equal(t, "cache", cfg.CachePath)
	assert.Equal(t, 8, cfg.NHeadstages)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	content := `
database:
  type: sqlite
  path: /data/synphys.sqlite
data_paths:
  - /backup_rig
  - /backup_server
rig_name: MP2
n_headstages: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "/data/synphys.sqlite", cfg.Database.Path)
	assert.Equal(t, []string{"/backup_rig", "/backup_server"}, cfg.DataPaths)
	assert.Equal(t, "MP2", cfg.RigName)
	assert.Equal(t, 4, cfg.NHeadstages)
	// Unset fields still pick up defaults.
	assert.Equal(t, DefaultDatabaseName, cfg.Database.Name)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("database:\n  host: filehost\n"), 0o644))

	t.Setenv("SYNAPDB_DATABASE__HOST", "envhost")
	t.Setenv("SYNAPDB_DATABASE__PASSWORD", "sekrit")
	t.Setenv("SYNAPDB_RIG_NAME", "MP5")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "envhost", cfg.Database.Host)
	assert.Equal(t, "sekrit", cfg.Database.Password)
	assert.Equal(t, "MP5", cfg.RigName)
}

func TestFlagsOverrideEverything(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("database:\n  host: filehost\n  port: 5433\n"), 0o644))
	t.Setenv("SYNAPDB_DATABASE__HOST", "envhost")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db-host", "", "")
	flags.Int("db-port", 0, "")
	flags.String("rig-name", "", "")
	flags.String("unrelated", "", "")
	require.NoError(t, flags.Parse([]string{"--db-host=flaghost", "--rig-name=MP9", "--unrelated=ignored"}))

	cfg, err := LoadWithFlags(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "flaghost", cfg.Database.Host)
	assert.Equal(t, "MP9", cfg.RigName)
	// Flags left unset do not clobber lower layers.
	assert.Equal(t, 5433, cfg.Database.Port)
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()

	// No config file: defaults apply.
	cfg, err := LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Type)

	// The .yml spelling is honored too.
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileNameAlt),
		[]byte("rig_name: MP1\n"), 0o644))
	cfg, err = LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "MP1", cfg.RigName)

	// The .yaml spelling wins over .yml when both exist.
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName),
		[]byte("rig_name: MP2\n"), 0o644))
	cfg, err = LoadFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "MP2", cfg.RigName)
}

func TestAdapterConfigTranslation(t *testing.T) {
	d := Database{
		Type:     "postgres",
		Host:     "db.internal",
		Port:     5433,
		Name:     "synphys",
		User:     "acq",
		Password: "pw",
		Options:  map[string]string{"sslmode": "require"},
	}
	ac := d.AdapterConfig()
	assert.Equal(t, "postgres", ac.Type)
	assert.Equal(t, "db.internal", ac.Host)
	assert.Equal(t, 5433, ac.Port)
	assert.Equal(t, "synphys", ac.Database)
	assert.Equal(t, "acq", ac.Username)
	assert.Equal(t, "pw", ac.Password)
	assert.Equal(t, "require", ac.Options["sslmode"])
}
