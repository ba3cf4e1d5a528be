package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/pdegbridge/internal/config"
)

type fileConfig struct {
	HubURL        string   `toml:"hub_url"`
	HubToken      string   `toml:"hub_token"`
	ListenHost    string   `toml:"listen_host"`
	Port          int      `toml:"port"`
	ReadTimeout   string   `toml:"read_timeout"`
	HubTimeout    string   `toml:"hub_timeout"`
	MaxFrameBytes int      `toml:"max_frame_bytes"`
	LogLevel      string   `toml:"log_level"`
	LogFormat     string   `toml:"log_format"`
	LogFile       string   `toml:"log_file"`
	AdminAddr     string   `toml:"admin_addr"`
	AdminCORS     []string `toml:"admin_cors_origins"`
	AdminToken    string   `toml:"admin_token"`
}

// loadConfig resolves defaults, then the optional TOML file named by
// PDEG_CONFIG_FILE, then the environment, and validates the result.
func loadConfig(lookup config.LookupFunc) (config.Config, error) {
	cfg := config.Default()

	if path, ok := lookup(config.EnvConfigFile); ok && strings.TrimSpace(path) != "" {
		if err := applyFile(&cfg, strings.TrimSpace(path)); err != nil {
			return config.Config{}, err
		}
	}
	if err := config.ApplyEnv(&cfg, lookup); err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *config.Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("load bridge config: %w", err)
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load bridge config: %w", err)
	}

	if meta.IsDefined("hub_url") {
		cfg.HubURL = strings.TrimSpace(raw.HubURL)
	}
	if meta.IsDefined("hub_token") {
		cfg.HubToken = strings.TrimSpace(raw.HubToken)
	}
	if meta.IsDefined("listen_host") {
		cfg.ListenHost = strings.TrimSpace(raw.ListenHost)
	}
	if meta.IsDefined("port") {
		cfg.Port = raw.Port
	}
	if meta.IsDefined("read_timeout") {
		d, err := config.ParseDuration(raw.ReadTimeout)
		if err != nil {
			return fmt.Errorf("parse read_timeout: %w", err)
		}
		cfg.ReadTimeout = d
	}
	if meta.IsDefined("hub_timeout") {
		d, err := config.ParseDuration(raw.HubTimeout)
		if err != nil {
			return fmt.Errorf("parse hub_timeout: %w", err)
		}
		cfg.HubTimeout = d
	}
	if meta.IsDefined("max_frame_bytes") {
		cfg.MaxFrameBytes = raw.MaxFrameBytes
	}
	if meta.IsDefined("log_level") {
		cfg.Log.Level = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_format") {
		cfg.Log.Format = strings.TrimSpace(raw.LogFormat)
	}
	if meta.IsDefined("log_file") {
		cfg.Log.File = strings.TrimSpace(raw.LogFile)
	}
	if meta.IsDefined("admin_addr") {
		cfg.Admin.Addr = strings.TrimSpace(raw.AdminAddr)
	}
	if meta.IsDefined("admin_cors_origins") {
		cfg.Admin.CORSOrigins = normalizeOrigins(raw.AdminCORS)
	}
	if meta.IsDefined("admin_token") {
		cfg.Admin.Token = strings.TrimSpace(raw.AdminToken)
	}
	return nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
