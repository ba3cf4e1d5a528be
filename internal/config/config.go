package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Environment variables read by the process entry point.
const (
	EnvHubURL        = "HA_URL"
	EnvHubToken      = "HA_TOKEN"
	EnvPort          = "CONFIG_PORT"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFormat     = "LOG_FORMAT"
	EnvLogFile       = "LOG_FILE"
	EnvListenHost    = "PDEG_LISTEN_HOST"
	EnvReadTimeout   = "PDEG_READ_TIMEOUT"
	EnvHubTimeout    = "PDEG_HUB_TIMEOUT"
	EnvMaxFrameBytes = "PDEG_MAX_FRAME_BYTES"
	EnvAdminAddr     = "PDEG_ADMIN_ADDR"
	EnvAdminCORS     = "PDEG_ADMIN_CORS"
	EnvAdminToken    = "PDEG_ADMIN_TOKEN"
	EnvConfigFile    = "PDEG_CONFIG_FILE"
)

const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"

	minFrameBytes = 64
	redacted      = "********"
)

// LookupFunc has the shape of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

type LogConfig struct {
	Level  string
	Format string
	File   string
}

// AdminConfig enables the operator HTTP surface when Addr is set. A non-empty
// Token guards the config and dry-run routes with bearer auth.
type AdminConfig struct {
	Addr        string
	CORSOrigins []string
	Token       string
}

// Config is the bridge runtime configuration, built once at startup.
type Config struct {
	HubURL        string
	HubToken      string
	ListenHost    string
	Port          int
	ReadTimeout   time.Duration
	HubTimeout    time.Duration
	MaxFrameBytes int
	Log           LogConfig
	Admin         AdminConfig
}

func Default() Config {
	return Config{
		ListenHost:    "0.0.0.0",
		Port:          2323,
		ReadTimeout:   30 * time.Second,
		HubTimeout:    5 * time.Second,
		MaxFrameBytes: 4096,
		Log: LogConfig{
			Level:  "error",
			Format: LogFormatConsole,
		},
	}
}

// ListenAddr is the TCP address the controller connects to.
func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.ListenHost, strconv.Itoa(c.Port))
}

// Redacted returns a copy safe to log or expose.
func (c Config) Redacted() Config {
	out := c
	if out.HubToken != "" {
		out.HubToken = redacted
	}
	if out.Admin.Token != "" {
		out.Admin.Token = redacted
	}
	out.Admin.CORSOrigins = append([]string(nil), c.Admin.CORSOrigins...)
	return out
}

// ApplyEnv overrides cfg with every variable lookup reports as set.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	var errs multiErr

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			d, err := ParseDuration(v)
			if err != nil {
				errs.addf("%s: %v", key, err)
				return
			}
			*dst = d
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs.addf("%s: %q is not an integer", key, v)
				return
			}
			*dst = n
		}
	}

	str(EnvHubURL, &cfg.HubURL)
	str(EnvHubToken, &cfg.HubToken)
	num(EnvPort, &cfg.Port)
	str(EnvLogLevel, &cfg.Log.Level)
	str(EnvLogFormat, &cfg.Log.Format)
	str(EnvLogFile, &cfg.Log.File)
	str(EnvListenHost, &cfg.ListenHost)
	dur(EnvReadTimeout, &cfg.ReadTimeout)
	dur(EnvHubTimeout, &cfg.HubTimeout)
	num(EnvMaxFrameBytes, &cfg.MaxFrameBytes)
	str(EnvAdminAddr, &cfg.Admin.Addr)
	str(EnvAdminToken, &cfg.Admin.Token)
	if v, ok := lookup(EnvAdminCORS); ok {
		cfg.Admin.CORSOrigins = SplitList(v)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Validate reports every problem in one error.
func (c Config) Validate() error {
	var errs multiErr

	if strings.TrimSpace(c.HubURL) == "" {
		errs.addf("%s is required", EnvHubURL)
	} else if u, err := url.Parse(c.HubURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs.addf("%s must be an http(s) url, got %q", EnvHubURL, c.HubURL)
	}
	if strings.TrimSpace(c.HubToken) == "" {
		errs.addf("%s is required", EnvHubToken)
	}
	if c.Port < 1 || c.Port > 65535 {
		errs.addf("port must be 1..65535, got %d", c.Port)
	}
	if c.HubTimeout <= 0 {
		errs.add("hub timeout must be > 0")
	}
	if c.ReadTimeout < 0 {
		errs.add("read timeout cannot be negative")
	}
	if c.MaxFrameBytes < minFrameBytes {
		errs.addf("max frame bytes must be >= %d", minFrameBytes)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", LogFormatConsole, LogFormatJSON:
	default:
		errs.addf("log format must be %q or %q", LogFormatConsole, LogFormatJSON)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ParseDuration accepts Go durations ("30s") and bare integers as seconds.
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(raw)
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

type encodedConfig struct {
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

// Encode renders the redacted config as TOML, in the same keys the overlay file accepts.
func Encode(c Config) ([]byte, error) {
	r := c.Redacted()
	out, err := toml.Marshal(encodedConfig{
		HubURL:        r.HubURL,
		HubToken:      r.HubToken,
		ListenHost:    r.ListenHost,
		Port:          r.Port,
		ReadTimeout:   r.ReadTimeout.String(),
		HubTimeout:    r.HubTimeout.String(),
		MaxFrameBytes: r.MaxFrameBytes,
		LogLevel:      r.Log.Level,
		LogFormat:     r.Log.Format,
		LogFile:       r.Log.File,
		AdminAddr:     r.Admin.Addr,
		AdminCORS:     r.Admin.CORSOrigins,
		AdminToken:    r.Admin.Token,
	})
	if err != nil {
		return nil, fmt.Errorf("config encode failed: %w", err)
	}
	return out, nil
}

type multiErr []string

func (m *multiErr) add(s string)            { *m = append(*m, s) }
func (m *multiErr) addf(f string, a ...any) { *m = append(*m, fmt.Sprintf(f, a...)) }
func (m multiErr) Error() string            { return "config: " + strings.Join(m, "; ") }
