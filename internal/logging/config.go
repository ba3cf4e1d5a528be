package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"

	AppName = "pdeg_bridge"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Options selects level, encoding and destination of the process logger.
type Options struct {
	Level     string
	Format    string
	File      string
	NoColor   bool
	Timestamp bool
}

var testOnce sync.Once

func DefaultOptions(profile Profile) Options {
	switch profile {
	case ProfileTest:
		return Options{Level: "debug", Format: FormatConsole, NoColor: true}
	default:
		return Options{Level: "info", Format: FormatConsole, Timestamp: true}
	}
}

// ConfigureTests installs a debug console logger once per test binary.
func ConfigureTests() {
	testOnce.Do(func() {
		_, _ = Configure(DefaultOptions(ProfileTest))
	})
}

// Configure builds the logger for opts and installs it as the zerolog global.
// The returned closer releases the log file when one is configured.
func Configure(opts Options) (io.Closer, error) {
	if path := strings.TrimSpace(opts.File); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("logging: prepare log dir: %w", err)
		}
	}
	out, closer := output(opts)
	lvl, ok := ParseLevel(opts.Level)
	if !ok {
		lvl = zerolog.InfoLevel
	}

	ctx := zerolog.New(out).Level(lvl).With().Str("app", AppName)
	if opts.Timestamp {
		ctx = ctx.Timestamp()
	}
	log.Logger = ctx.Logger()
	zerolog.DefaultContextLogger = &log.Logger

	if !ok && strings.TrimSpace(opts.Level) != "" {
		log.Warn().Str("level", opts.Level).Msg("unknown log level, using info")
	}
	return closer, nil
}

func output(opts Options) (io.Writer, io.Closer) {
	var sink io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}
	if path := strings.TrimSpace(opts.File); path != "" {
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		sink, closer = lj, lj
	}
	if strings.EqualFold(strings.TrimSpace(opts.Format), FormatJSON) {
		return sink, closer
	}
	return zerolog.ConsoleWriter{
		Out:        sink,
		NoColor:    opts.NoColor || opts.File != "",
		TimeFormat: time.RFC3339,
	}, closer
}

// ParseLevel accepts zerolog level names plus the aliases operators tend to type.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return zerolog.InfoLevel, false
	case "trace", "diagnostics":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "fatal", "critical":
		return zerolog.FatalLevel, true
	case "disabled", "disable", "off", "none", "inactive":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
