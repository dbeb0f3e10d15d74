// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads the agent's layered configuration: a YAML file on
// disk overridden by TIDYBEE_-prefixed environment variables, per spec.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// CatalogConfig controls the embedded catalog database.
type CatalogConfig struct {
	Path        string `mapstructure:"path"`
	DropOnStart bool   `mapstructure:"drop_on_start"`
}

// RulesConfig points at the tidy-rule manifest.
type RulesConfig struct {
	ManifestPath string `mapstructure:"manifest_path"`
}

// HTTPConfig controls the local read API bind address.
type HTTPConfig struct {
	BindAddress string `mapstructure:"bind_address"`
}

// HubConfig controls the outbound RPC connection to the remote hub.
type HubConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Protocol string `mapstructure:"protocol"`
	AuthPath string `mapstructure:"auth_path"`
}

// LogConfig controls agent log output.
type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// WatchConfig names the directory roots the agent indexes and observes.
type WatchConfig struct {
	Roots      []string `mapstructure:"roots"`
	ListRoots  []string `mapstructure:"list_roots"`
	Extensions []string `mapstructure:"extensions"`
	Type       string   `mapstructure:"type"`
}

// AgentVersionConfig carries the self-reported version strings surfaced by
// get_status; unset fields default to "0.0.0", matching the original agent.
type AgentVersionConfig struct {
	LatestVersion  string `mapstructure:"latest_version"`
	MinimalVersion string `mapstructure:"minimal_version"`
}

// Config is the fully-resolved configuration document.
type Config struct {
	Catalog     CatalogConfig      `mapstructure:"catalog"`
	Rules       RulesConfig        `mapstructure:"rules"`
	HTTP        HTTPConfig         `mapstructure:"http"`
	Hub         HubConfig          `mapstructure:"hub"`
	Log         LogConfig          `mapstructure:"log"`
	Watch       WatchConfig        `mapstructure:"watch"`
	AgentConfig AgentVersionConfig `mapstructure:"agent_config"`
}

const envPrefix = "TIDYBEE"

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.path", "tidybee.db")
	v.SetDefault("catalog.drop_on_start", false)
	v.SetDefault("rules.manifest_path", "rules.yaml")
	v.SetDefault("http.bind_address", "127.0.0.1:8080")
	v.SetDefault("hub.protocol", "https")
	v.SetDefault("hub.port", 443)
	v.SetDefault("hub.auth_path", "config/uuid")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "tidybee.log")
	v.SetDefault("watch.type", "all")
	v.SetDefault("agent_config.latest_version", "0.0.0")
	v.SetDefault("agent_config.minimal_version", "0.0.0")
}

// New loads configuration from path (a YAML file; missing file falls back to
// defaults) layered with TIDYBEE_-prefixed environment overrides.
func New(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	bindEnvOverrides(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &cfg, nil
}

// validExtensions and validWatchTypes mirror the CLI surface spec.md §6
// defines: --extension is a subset of this list, --type is one of these.
var (
	validExtensions = []string{"docx", "jpeg", "jpg", "mp3", "mp4", "pdf", "png", "xlsx"}
	validWatchTypes = []string{"all", "directory", "regular"}
)

// Validate checks the fully-resolved configuration (after CLI flag
// overrides have been applied) against the constraints spec.md §6 names as
// configuration errors: every list/watch root must exist and be a
// directory, extensions and watch type must be recognized values, and
// watch type "directory" may not be combined with any extension filter.
// Callers treat a non-nil return as fatal, exiting with status 1.
func (c *Config) Validate() error {
	for _, root := range append(slices.Clone(c.Watch.ListRoots), c.Watch.Roots...) {
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("config: watch root %q: %w", root, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("config: watch root %q: not a directory", root)
		}
	}

	for _, ext := range c.Watch.Extensions {
		if !slices.Contains(validExtensions, ext) {
			return fmt.Errorf("config: invalid file extension %q", ext)
		}
	}

	if c.Watch.Type != "" && !slices.Contains(validWatchTypes, c.Watch.Type) {
		return fmt.Errorf("config: invalid watch type %q", c.Watch.Type)
	}

	if c.Watch.Type == "directory" && len(c.Watch.Extensions) > 0 {
		return fmt.Errorf("config: watch type %q cannot be combined with file extension filters", c.Watch.Type)
	}

	return nil
}

// bindEnvOverrides makes sure every mapstructure key has an explicit env
// binding even when it's absent from the config file and has no default,
// since viper's AutomaticEnv only resolves keys it already knows about.
func bindEnvOverrides(v *viper.Viper) {
	keys := []string{
		"catalog.path", "catalog.drop_on_start",
		"rules.manifest_path",
		"http.bind_address",
		"hub.host", "hub.port", "hub.protocol", "hub.auth_path",
		"log.level", "log.path",
		"watch.roots", "watch.list_roots", "watch.extensions", "watch.type",
		"agent_config.latest_version", "agent_config.minimal_version",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}
