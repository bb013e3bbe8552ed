package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where the server looks for its YAML config.
const DefaultConfigPath = "config.yaml"

// Load reads, parses and normalizes the YAML config at path. A missing file
// is not an error; env vars and defaults still apply.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}

	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	normalize(cfg)

	if cfg.DSN == "" {
		return nil, fmt.Errorf("no database configured (set dsn or database.* in %s)", path)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("SL_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("SL_DSN"); v != "" {
		cfg.DSN = v
	}
	if v := os.Getenv("SL_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("SL_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("SL_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
}

func normalize(cfg *AppConfig) {
	if cfg.Port == 0 {
		cfg.Port = 2333
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.DSN == "" {
		cfg.DSN = buildDSN(cfg.Database)
	}
	if cfg.RedisURL == "" {
		cfg.RedisURL = buildRedisURL(cfg.Redis)
	}
}
