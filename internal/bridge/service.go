package bridge

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/pdegbridge/internal/admin"
	"github.com/danmuck/pdegbridge/internal/config"
	"github.com/danmuck/pdegbridge/internal/hass"
)

// Service wires the controller listener, the hub client and the optional
// admin server from one Config value.
type Service struct {
	cfg      config.Config
	hub      *hass.Client
	handler  *Handler
	listener *Listener
	admin    *admin.Server
}

func NewService(cfg config.Config) *Service {
	hub := hass.NewClient(hass.ClientConfig{
		BaseURL: cfg.HubURL,
		Token:   cfg.HubToken,
		Timeout: cfg.HubTimeout,
	})
	handler := NewHandler(hub, HandlerConfig{
		ReadTimeout:   cfg.ReadTimeout,
		MaxFrameBytes: cfg.MaxFrameBytes,
	})
	s := &Service{
		cfg:      cfg,
		hub:      hub,
		handler:  handler,
		listener: NewListener(cfg.ListenAddr(), handler),
	}
	if strings.TrimSpace(cfg.Admin.Addr) != "" {
		s.admin = admin.New(cfg, s.listener.Ready, hub.URL)
	}
	return s
}

func (s *Service) Listener() *Listener {
	return s.listener
}

// Run blocks until ctx is cancelled (nil) or a fatal error stops the bridge.
func (s *Service) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.checkToken(time.Now())
	log.Info().
		Str("listen", s.cfg.ListenAddr()).
		Str("hub", s.cfg.HubURL).
		Dur("hub_timeout", s.cfg.HubTimeout).
		Dur("read_timeout", s.cfg.ReadTimeout).
		Msg("bridge starting")

	listenErr := make(chan error, 1)
	adminErr := make(chan error, 1)
	go func() {
		listenErr <- s.listener.Serve(ctx)
	}()
	if s.admin != nil {
		go func() {
			adminErr <- s.admin.Serve(ctx)
		}()
	}

	select {
	case err := <-listenErr:
		cancel()
		if s.admin != nil {
			<-adminErr
		}
		return err
	case err := <-adminErr:
		cancel()
		lerr := <-listenErr
		if err != nil {
			return fatal("admin", err)
		}
		return lerr
	}
}

func (s *Service) checkToken(now time.Time) {
	info, err := hass.InspectToken(s.cfg.HubToken, now)
	if err != nil {
		log.Warn().Err(err).Msg("hub token is not a readable JWT; expiry unknown")
		return
	}
	event := log.Info()
	if info.Expired {
		event = log.Warn()
	}
	event.
		Str("issuer", info.Issuer).
		Time("expires_at", info.ExpiresAt).
		Bool("expired", info.Expired).
		Msg("hub token")
}
