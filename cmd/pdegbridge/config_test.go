package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/pdegbridge/internal/config"
	"github.com/danmuck/pdegbridge/internal/testutil/testlog"
)

func lookupFrom(env map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	testlog.Start(t)

	cfg, err := loadConfig(lookupFrom(map[string]string{
		config.EnvConfigFile: "ex.config.toml",
	}))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HubURL != "http://homeassistant.local:8123/" {
		t.Fatalf("unexpected hub url: %q", cfg.HubURL)
	}
	if cfg.HubToken != "file-token" {
		t.Fatalf("unexpected token: %q", cfg.HubToken)
	}
	if cfg.ListenAddr() != "127.0.0.1:2424" {
		t.Fatalf("unexpected listen addr: %q", cfg.ListenAddr())
	}
	if cfg.ReadTimeout != 10*time.Second {
		t.Fatalf("unexpected read timeout: %v", cfg.ReadTimeout)
	}
	if cfg.HubTimeout != 3*time.Second {
		t.Fatalf("unexpected hub timeout: %v", cfg.HubTimeout)
	}
	if cfg.MaxFrameBytes != 4096 {
		t.Fatalf("max_frame_bytes should keep its default: %d", cfg.MaxFrameBytes)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
	if cfg.Admin.Addr != "127.0.0.1:7020" {
		t.Fatalf("unexpected admin addr: %q", cfg.Admin.Addr)
	}
	if len(cfg.Admin.CORSOrigins) != 1 || cfg.Admin.CORSOrigins[0] != "http://localhost:3000" {
		t.Fatalf("unexpected cors origins: %+v", cfg.Admin.CORSOrigins)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	testlog.Start(t)

	cfg, err := loadConfig(lookupFrom(map[string]string{
		config.EnvConfigFile: "ex.config.toml",
		config.EnvHubToken:   "env-token",
		config.EnvPort:       "2323",
	}))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HubToken != "env-token" {
		t.Fatalf("env token should win: %q", cfg.HubToken)
	}
	if cfg.Port != 2323 {
		t.Fatalf("env port should win: %d", cfg.Port)
	}
	if cfg.ListenHost != "127.0.0.1" {
		t.Fatalf("file listen host should survive: %q", cfg.ListenHost)
	}
}

func TestLoadConfigEnvOnly(t *testing.T) {
	testlog.Start(t)

	cfg, err := loadConfig(lookupFrom(map[string]string{
		config.EnvHubURL:   "http://hub:8123",
		config.EnvHubToken: "tok",
	}))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ListenAddr() != "0.0.0.0:2323" {
		t.Fatalf("unexpected default listen addr: %q", cfg.ListenAddr())
	}
	if cfg.Log.Level != "error" {
		t.Fatalf("unexpected default log level: %q", cfg.Log.Level)
	}
}

func TestLoadConfigMissingRequired(t *testing.T) {
	testlog.Start(t)

	_, err := loadConfig(lookupFrom(map[string]string{}))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{config.EnvHubURL, config.EnvHubToken} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q should mention %s", err, want)
		}
	}
}

func TestLoadConfigBadFile(t *testing.T) {
	testlog.Start(t)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("read_timeout = \"soon\"\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := loadConfig(lookupFrom(map[string]string{config.EnvConfigFile: bad})); err == nil {
		t.Fatalf("expected duration parse error")
	}
	if _, err := loadConfig(lookupFrom(map[string]string{config.EnvConfigFile: filepath.Join(dir, "missing.toml")})); err == nil {
		t.Fatalf("expected missing file error")
	}
}
