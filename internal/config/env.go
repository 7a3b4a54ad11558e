package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment overrides applied after archivist.toml is decoded.
const (
	EnvDate       = "ARCHIVIST_DATE"
	EnvHashSuffix = "ARCHIVIST_HASH_SUFFIX"
	EnvPublishDir = "ARCHIVIST_PUBLISH_DIR"
	EnvArchiveDir = "ARCHIVIST_ARCHIVE_DIR"
)

// LoadDotEnv loads dir/.env into the process environment. Variables already
// set in the environment keep their values. A missing file is not an error.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides configuration values from ARCHIVIST_* variables.
// lookup is normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDate); ok && v != "" {
		c.Version.Date = v
	}
	if v, ok := lookup(EnvHashSuffix); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s must be true or false: %w", EnvHashSuffix, err)
		}
		c.Version.HashSuffix = b
	}
	if v, ok := lookup(EnvPublishDir); ok && v != "" {
		c.Paths.PublishDir = v
	}
	if v, ok := lookup(EnvArchiveDir); ok && v != "" {
		c.Paths.ArchiveDir = v
	}
	return nil
}
