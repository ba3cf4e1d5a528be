package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/pdegbridge/internal/hass"
	"github.com/danmuck/pdegbridge/internal/observability"
	"github.com/danmuck/pdegbridge/internal/protocol/command"
	"github.com/danmuck/pdegbridge/internal/protocol/frame"
)

// Stage is one step of a connection run.
type Stage string

const (
	StageReading    Stage = "reading"
	StageExtracting Stage = "extracting"
	StageParsing    Stage = "parsing"
	StageMapping    Stage = "mapping"
	StageInvoking   Stage = "invoking"
	StageClosing    Stage = "closing"
)

// ResultKind is the terminal state of a connection run.
type ResultKind string

const (
	ClosedClean ResultKind = "clean"
	ClosedFatal ResultKind = "fatal"
)

// Result reports how one connection ended. Stage is the last stage entered
// before closing. Err carries the recoverable cause on a clean close and a
// *FatalError on a fatal one.
type Result struct {
	Kind    ResultKind
	Stage   Stage
	Err     error
	Outcome *hass.Outcome
}

// Invoker performs one hub service call.
type Invoker interface {
	Call(ctx context.Context, call hass.ServiceCall) (hass.Outcome, error)
}

type HandlerConfig struct {
	ReadTimeout   time.Duration
	MaxFrameBytes int
}

// Handler runs one connection from first byte to close.
type Handler struct {
	hub           Invoker
	readTimeout   time.Duration
	maxFrameBytes int
}

func NewHandler(hub Invoker, cfg HandlerConfig) *Handler {
	maxBytes := cfg.MaxFrameBytes
	if maxBytes <= 0 {
		maxBytes = frame.DefaultMaxBytes
	}
	return &Handler{
		hub:           hub,
		readTimeout:   cfg.ReadTimeout,
		maxFrameBytes: maxBytes,
	}
}

// Handle reads one frame from conn, drives the hub call it encodes and closes
// conn on every path. Cancelling ctx aborts a pending read but never an
// in-flight hub call.
func (h *Handler) Handle(ctx context.Context, conn net.Conn) (res Result) {
	logger := log.With().
		Str("conn_id", uuid.New().String()).
		Str("remote", remoteAddr(conn)).
		Logger()
	ctx = logger.WithContext(ctx)

	stage := StageReading
	stopWatch := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})

	defer func() {
		stopWatch()
		if r := recover(); r != nil {
			logger.Error().
				Str("stage", string(stage)).
				Bytes("stack", debug.Stack()).
				Msgf("panic: %v", r)
			res = Result{Kind: ClosedFatal, Stage: stage, Err: fatal(string(stage), fmt.Errorf("panic: %v", r))}
		}
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Debug().Err(err).Msg("close failed")
		}
		observability.RecordConnectionResult(string(res.Kind), string(res.Stage))
		logger.Debug().
			Str("stage", string(StageClosing)).
			Str("result", string(res.Kind)).
			Str("last_stage", string(res.Stage)).
			Msg("connection closed")
		if res.Kind == ClosedFatal {
			logger.Error().Err(res.Err).Msg("fatal error in handler; exiting for supervisor restart")
		}
	}()

	return h.run(ctx, logger, conn, &stage)
}

func (h *Handler) run(ctx context.Context, logger zerolog.Logger, conn net.Conn, stage *Stage) Result {
	if h.readTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(h.readTimeout))
	}
	raw, err := frame.ReadLine(conn, h.maxFrameBytes)
	if err != nil {
		logger.Warn().Err(err).Int("bytes", len(raw)).Msg("read error; dropping connection")
		observability.RecordFrame("read_error")
		return Result{Kind: ClosedClean, Stage: *stage, Err: err}
	}

	*stage = StageExtracting
	logger.Debug().Str("hex", frame.Hex(raw)).Msg("rx raw")
	line := frame.Extract(raw)
	logger.Info().Str("line", line).Msg("rx")

	*stage = StageParsing
	cmd, err := command.Parse(line)
	if err != nil {
		logger.Warn().Err(err).Str("line", line).Msg("input error")
		observability.RecordFrame("parse_error")
		return Result{Kind: ClosedClean, Stage: *stage, Err: err}
	}
	observability.RecordCommand(string(cmd.Action))

	*stage = StageMapping
	call, err := hass.Map(cmd)
	if err != nil {
		logger.Warn().Err(err).Str("line", line).Msg("build service error")
		observability.RecordFrame("domain_error")
		return Result{Kind: ClosedClean, Stage: *stage, Err: err}
	}

	*stage = StageInvoking
	logger.Info().
		Str("domain", call.Domain).
		Str("service", call.Service).
		Interface("payload", call.Payload).
		Msg("hub call")
	out, err := h.hub.Call(context.WithoutCancel(ctx), call)
	if err != nil {
		return Result{Kind: ClosedFatal, Stage: *stage, Err: fatal(string(*stage), err)}
	}
	observability.RecordHubCall(call.Domain, call.Service, string(out.Kind), out.Duration)

	if serr := out.Err(); serr != nil {
		logger.Error().
			Err(serr).
			Int("status", out.StatusCode).
			Dur("duration", out.Duration).
			Msg("hub call failed")
		observability.RecordFrame("hub_error")
		return Result{Kind: ClosedClean, Stage: *stage, Err: serr, Outcome: &out}
	}

	logger.Info().Int("status", out.StatusCode).Dur("duration", out.Duration).Msg("OK")
	observability.RecordFrame("ok")
	return Result{Kind: ClosedClean, Stage: *stage, Outcome: &out}
}

func remoteAddr(conn net.Conn) string {
	if addr := conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
