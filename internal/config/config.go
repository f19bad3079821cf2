// Package config resolves application settings from a .env file, the
// environment and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/benewagner/musicmapping/internal/llm"
	"github.com/benewagner/musicmapping/internal/store"
)

// Environment variables read by Load.
const (
	EnvDB       = "MUSICMAPPING_DB"
	EnvLog      = "MUSICMAPPING_LOG"
	EnvLogLevel = "MUSICMAPPING_LOG_LEVEL"
	EnvCDNRoot  = "MUSICMAPPING_CDN_ROOT"
	EnvDotEnv   = "MUSICMAPPING_ENV_FILE"
)

// Flag names bound by Load when present on the flag set.
const (
	FlagDB       = "db"
	FlagLogLevel = "log-level"
	FlagCDNRoot  = "cdn-root"
)

// Config holds resolved application settings.
type Config struct {
	DBPath   string
	LogPath  string
	LogLevel string
	CDNRoot  string
	LLM      llm.Config
}

// Load reads an optional .env file (MUSICMAPPING_ENV_FILE, else ./.env),
// then the environment, then any flags in fs that the user set. The
// database and log directories are created.
func Load(flags *pflag.FlagSet) (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:   os.Getenv(EnvDB),
		LogPath:  os.Getenv(EnvLog),
		LogLevel: getEnv(EnvLogLevel, "info"),
		CDNRoot:  os.Getenv(EnvCDNRoot),
		LLM:      llm.ConfigFromEnv(),
	}

	if flags != nil {
		for name, dst := range map[string]*string{
			FlagDB:       &cfg.DBPath,
			FlagLogLevel: &cfg.LogLevel,
			FlagCDNRoot:  &cfg.CDNRoot,
		} {
			if f := flags.Lookup(name); f != nil && f.Changed {
				*dst = f.Value.String()
			}
		}
	}

	if cfg.DBPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return Config{}, err
		}
		cfg.DBPath = p
	}
	if cfg.LogPath == "" {
		dir, err := store.DataDir()
		if err != nil {
			return Config{}, err
		}
		cfg.LogPath = filepath.Join(dir, "musicmapping.log")
	}
	for _, p := range []string{cfg.DBPath, cfg.LogPath} {
		if err := store.EnsureDir(p); err != nil {
			return Config{}, fmt.Errorf("create directory for %s: %w", p, err)
		}
	}

	return cfg, nil
}

// loadDotEnv loads the .env file without overriding variables that are
// already set. A missing default file is not an error.
func loadDotEnv() error {
	path := os.Getenv(EnvDotEnv)
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
