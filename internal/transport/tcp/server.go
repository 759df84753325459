package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/linechat-server/internal/core"
)

// Server owns the listening socket. Every accepted connection gets its own
// goroutine; the accept loop never blocks on a session.
type Server struct {
	addr  string
	state *core.State
	log   *zerolog.Logger

	// set once Run has bound, for tests that listen on port 0
	boundAddr chan net.Addr
}

// NewServer builds a TCP chat server over the given store.
func NewServer(addr string, state *core.State, logger *zerolog.Logger) *Server {
	return &Server{
		addr:      addr,
		state:     state,
		log:       logger,
		boundAddr: make(chan net.Addr, 1),
	}
}

// BoundAddr reports the address the listener actually bound, once Run has
// bound it.
func (s *Server) BoundAddr() net.Addr {
	return <-s.boundAddr
}

// Run binds and accepts until ctx is cancelled. A bind failure is returned
// to the caller and is fatal to the process; a failure on a single accepted
// connection only ends that session.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.addr, err)
	}
	s.boundAddr <- ln.Addr()
	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		nc, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn().Err(err).Msg("accept failed")
			continue
		}

		sess := newSession(nc, s.state, s.log)
		s.log.Info().
			Str("session_id", sess.id).
			Str("remote_addr", nc.RemoteAddr().String()).
			Msg("client connected")
		go sess.run()
	}
}
