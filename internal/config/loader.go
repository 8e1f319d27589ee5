package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// envPrefix namespaces pland environment variables.
	envPrefix = "PLAND_"
)

// Load loads configuration from a YAML file, then overrides with
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (PLAND_SERVER_PORT, PLAND_PLANNER_MAX_SEARCHES, ...)
//  2. YAML config file (~/.config/pland/config.yaml by default)
//  3. Hardcoded defaults
//
// Environment variables drop the PLAND_ prefix, lowercase, and split on
// the first underscore into section.field:
//
//	PLAND_SERVER_PORT               -> server.port
//	PLAND_PLANNER_MAX_SEARCHES      -> planner.max_searches
//	PLAND_PROVIDER_API_KEY          -> provider.api_key
//
// Additionally, DEEPSEEK_API_KEY is honored for provider.api_key and
// GITHUB_TOKEN for search.github_token, matching what developers already
// have exported.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "pland", "config.yaml")
	}

	// Load from YAML file if it exists
	if _, err := os.Stat(configPath); err == nil {
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Override with environment variables
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		// PLAND_SERVER_PORT -> server.port
		// PLAND_PLANNER_MAX_SEARCHES -> planner.max_searches
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Conventional variables developers already export win only when the
	// pland-namespaced value is absent.
	if !cfg.Provider.APIKey.IsSet() {
		cfg.Provider.APIKey = Secret(os.Getenv("DEEPSEEK_API_KEY"))
	}
	if !cfg.Search.GitHubToken.IsSet() {
		cfg.Search.GitHubToken = Secret(os.Getenv("GITHUB_TOKEN"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}
