package bridge

import (
	"context"
	"net"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/pdegbridge/internal/observability"
)

// Listener accepts controller connections and gives each its own Handler run.
type Listener struct {
	addr    string
	handler *Handler

	ready atomic.Bool
	bound atomic.Value
}

func NewListener(addr string, handler *Handler) *Listener {
	return &Listener{addr: addr, handler: handler}
}

// Ready reports whether the listener is bound and accepting.
func (l *Listener) Ready() bool {
	return l.ready.Load()
}

// Addr returns the bound address once Serve has bound, else the configured one.
func (l *Listener) Addr() string {
	if v, ok := l.bound.Load().(string); ok {
		return v
	}
	return l.addr
}

// Serve binds the configured address and accepts until ctx is cancelled or a
// connection run ends fatally. A bind or accept failure is fatal.
func (l *Listener) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fatal("listen", err)
	}
	return l.ServeListener(ctx, ln)
}

// ServeListener accepts on an already bound listener and closes it on return.
// Cancellation waits for in-flight connection runs before returning nil.
func (l *Listener) ServeListener(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.bound.Store(ln.Addr().String())
	l.ready.Store(true)
	defer l.ready.Store(false)

	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})
	defer stop()
	log.Info().Str("addr", ln.Addr().String()).Msg("listening")

	fatalCh := make(chan error, 1)
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case ferr := <-fatalCh:
				return ferr
			default:
			}
			if ctx.Err() != nil {
				wg.Wait()
				select {
				case ferr := <-fatalCh:
					return ferr
				default:
					return nil
				}
			}
			_ = ln.Close()
			return fatal("accept", err)
		}

		observability.RecordConnection()
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := l.handler.Handle(ctx, conn)
			if res.Kind != ClosedFatal {
				return
			}
			select {
			case fatalCh <- res.Err:
			default:
			}
			cancel()
		}()
	}
}
