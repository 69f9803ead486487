package config

// DefaultDatabaseName is the database used when none is configured.
const DefaultDatabaseName = "synphys"

// ApplyDefaults fills unset fields with working defaults.
func (c *Config) ApplyDefaults() {
	if c.Database.Type == "" {
		c.Database.Type = "postgres"
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.Name == "" {
		c.Database.Name = DefaultDatabaseName
	}
	if c.CachePath == "" {
		c.CachePath = "cache"
	}
	if c.NHeadstages == 0 {
		c.NHeadstages = 8
	}
}
