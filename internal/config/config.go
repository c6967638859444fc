// Package config loads server configuration from an optional ini file with
// environment-variable overrides.
//
// Precedence, lowest to highest: built-in defaults, the ini file (if one is
// given), then PORT / DB_PATH / JWT_SECRET from the environment. Env
// overrides keep container deployments simple — the file is for everything
// else.
package config

import (
	"fmt"
	"strconv"

	"gopkg.in/ini.v1"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
}

// defaults returns the built-in baseline.
func defaults() Config {
	return Config{
		Port:   8080,
		DBPath: "data/taskboard.db",
	}
}

// Load assembles the configuration. path may be empty, in which case only
// defaults and the environment apply. getenv is injected (os.Getenv in
// production) so tests control the environment without mutating the process.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := defaults()

	if path != "" {
		file, err := ini.Load(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: loading %s: %w", path, err)
		}
		section := file.Section("")
		if key := section.Key("port"); key.String() != "" {
			port, err := key.Int()
			if err != nil {
				return Config{}, fmt.Errorf("config: invalid port %q in %s", key.String(), path)
			}
			cfg.Port = port
		}
		if v := section.Key("db_path").String(); v != "" {
			cfg.DBPath = v
		}
		if v := section.Key("jwt_secret").String(); v != "" {
			cfg.JWTSecret = v
		}
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid PORT value %q", v)
		}
		cfg.Port = port
	}
	if v := getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}

	// The token service refuses short secrets too, but failing here gives a
	// configuration error instead of a wiring error.
	if len(cfg.JWTSecret) < 16 {
		return Config{}, fmt.Errorf("config: jwt_secret must be set (at least 16 characters)")
	}

	return cfg, nil
}
