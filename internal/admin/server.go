package admin

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/pdegbridge/internal/auth"
	"github.com/danmuck/pdegbridge/internal/config"
	"github.com/danmuck/pdegbridge/internal/hass"
	"github.com/danmuck/pdegbridge/internal/observability"
	"github.com/danmuck/pdegbridge/internal/protocol/command"
	"github.com/danmuck/pdegbridge/internal/protocol/frame"
)

const (
	Version      = "0.1.0"
	maxBodyBytes = 4096
)

// ReadyFunc reports whether the controller listener is accepting.
type ReadyFunc func() bool

// Server is the operator-facing HTTP surface: health, metrics, effective
// config and a dry-run of the command pipeline that never calls the hub.
type Server struct {
	Addr     string
	Appeared time.Time

	cfg    config.Config
	hubURL func(hass.ServiceCall) string
	ready  ReadyFunc
	router *gin.Engine
}

func New(cfg config.Config, ready ReadyFunc, hubURL func(hass.ServiceCall) string) *Server {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.Admin.CORSOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	if ready == nil {
		ready = func() bool { return true }
	}
	s := &Server{
		Addr:     cfg.Admin.Addr,
		Appeared: time.Now(),
		cfg:      cfg,
		hubURL:   hubURL,
		ready:    ready,
		router:   r,
	}
	s.RegisterRoutes()
	return s
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) RegisterRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"listen":  s.cfg.ListenAddr(),
			"version": Version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/ready", func(c *gin.Context) {
		ready := s.ready()
		status := http.StatusOK
		if !ready {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"ready":   ready,
			"uptime":  time.Since(s.Appeared).String(),
			"version": Version,
		})
	})

	var guard auth.Validator
	if s.cfg.Admin.Token != "" {
		guard = auth.StaticToken{Token: s.cfg.Admin.Token}
	}
	operator := s.router.Group("/", auth.RequireBearer(guard))

	operator.GET("/config", func(c *gin.Context) {
		out, err := config.Encode(s.cfg)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/toml; charset=utf-8", out)
	})

	operator.POST("/commands/dry-run", func(c *gin.Context) {
		raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		resp, err := s.DryRun(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "line": resp.Line})
			return
		}
		c.JSON(http.StatusOK, resp)
	})
}

// DryRunResult shows what a frame would do without touching the hub.
type DryRunResult struct {
	Line    string            `json:"line"`
	Command *command.Command  `json:"command,omitempty"`
	Call    *hass.ServiceCall `json:"call,omitempty"`
	URL     string            `json:"url,omitempty"`
}

// DryRun runs extract, parse and map over one raw frame.
func (s *Server) DryRun(raw []byte) (DryRunResult, error) {
	res := DryRunResult{Line: frame.Extract(raw)}
	cmd, err := command.Parse(res.Line)
	if err != nil {
		return res, err
	}
	res.Command = &cmd
	call, err := hass.Map(cmd)
	if err != nil {
		return res, err
	}
	res.Call = &call
	if s.hubURL != nil {
		res.URL = s.hubURL(call)
	}
	return res, nil
}

// Serve listens on Addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", strings.TrimSpace(s.Addr))
	if err != nil {
		return err
	}
	return s.ServeListener(ctx, ln)
}

func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})
	defer stop()

	log.Info().Str("addr", ln.Addr().String()).Msg("admin listening")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
