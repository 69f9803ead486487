// Package config loads synapdb configuration. The mapping engine itself
// only ever sees the connection endpoint; everything else here is rig
// bookkeeping for the acquisition pipeline around it.
package config

import (
	"github.com/ephyslab/synapdb/pkg/adapter"
)

// Database holds the storage-engine endpoint.
type Database struct {
	// Type selects the engine adapter ("postgres" or "sqlite").
	Type string `koanf:"type"`

	// Path is the database file for the sqlite engine.
	Path string `koanf:"path"`

	// Host and Port locate the postgres server.
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// Name is the database name.
	Name string `koanf:"name"`

	// User and Password authenticate against the server.
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Options carries driver-specific settings (e.g. sslmode).
	Options map[string]string `koanf:"options"`
}

// AdapterConfig translates the config block into the adapter boundary type.
func (d Database) AdapterConfig() adapter.Config {
	return adapter.Config{
		Type:     d.Type,
		Path:     d.Path,
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Name,
		Username: d.User,
		Password: d.Password,
		Options:  d.Options,
	}
}

// Config is the full synapdb configuration.
type Config struct {
	Database Database `koanf:"database"`

	// DataPaths are the rig backup locations scanned for raw data.
	DataPaths []string `koanf:"data_paths"`

	// CachePath is the local analysis cache directory.
	CachePath string `koanf:"cache_path"`

	// RigName identifies the acquisition rig (e.g. "MP2").
	RigName string `koanf:"rig_name"`

	// NHeadstages is the number of patch headstages on the rig.
	NHeadstages int `koanf:"n_headstages"`
}
