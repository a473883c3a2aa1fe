package main

import (
	"bufio"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nickyhof/RecordGen"
	"github.com/nickyhof/RecordGen/codegen"
	"github.com/nickyhof/RecordGen/config"
	"github.com/nickyhof/RecordGen/core"
	"github.com/nickyhof/RecordGen/db"
)

// Server is a TCP server that exposes the RecordGen engine over a
// newline-delimited JSON protocol.
type Server struct {
	listener   net.Listener
	instance   *RecordGen.Instance
	identity   core.Identity
	dialect    codegen.Dialect
	authConfig *config.AuthConfig
	tlsEnabled bool

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	done  chan struct{}
	stop  sync.Once
	wg    sync.WaitGroup
}

// NewServer creates a server whose commits are authored by identity.
func NewServer(instance *RecordGen.Instance, identity core.Identity, dialect codegen.Dialect) *Server {
	return &Server{
		instance: instance,
		identity: identity,
		dialect:  dialect,
		conns:    make(map[net.Conn]struct{}),
		done:     make(chan struct{}),
	}
}

// NewServerWithAuth creates a server that requires AUTH before generating.
// Authenticated connections commit as the token's identity.
func NewServerWithAuth(instance *RecordGen.Instance, identity core.Identity, dialect codegen.Dialect, auth *config.AuthConfig) *Server {
	server := NewServer(instance, identity, dialect)
	server.authConfig = auth
	return server
}

// Start begins listening for connections on the specified address.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listen(listener)
	return nil
}

// StartTLS is Start with TLS using the given certificate and key files.
func (s *Server) StartTLS(addr, certFile, keyFile string) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return fmt.Errorf("failed to load TLS certificate: %w", err)
	}

	listener, err := tls.Listen("tcp", addr, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	if err != nil {
		return fmt.Errorf("failed to start TLS server: %w", err)
	}
	s.tlsEnabled = true
	s.listen(listener)
	return nil
}

func (s *Server) listen(listener net.Listener) {
	s.listener = listener
	log.Info().
		Str("addr", listener.Addr().String()).
		Bool("tls", s.tlsEnabled).
		Bool("auth", s.authRequired()).
		Str("dialect", s.dialect.String()).
		Msg("server listening")

	s.wg.Add(1)
	go s.acceptLoop()
}

// Stop closes the listener and every open connection, then waits for the
// connection goroutines to finish.
func (s *Server) Stop() error {
	s.stop.Do(func() {
		close(s.done)
		if s.listener != nil {
			s.listener.Close()
		}
		s.mu.Lock()
		for conn := range s.conns {
			conn.Close()
		}
		s.mu.Unlock()
	})
	s.wg.Wait()
	return nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) TLSEnabled() bool {
	return s.tlsEnabled
}

func (s *Server) authRequired() bool {
	return s.authConfig != nil && s.authConfig.Enabled
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Warn().Err(err).Msg("accept failed")
			continue
		}

		if !s.track(conn) {
			conn.Close()
			return
		}
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

// track registers conn for Stop. It returns false once the server is stopping.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
		return false
	default:
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	log.Debug().Str("remote", remote).Msg("client connected")

	state := &ConnectionState{}
	engine := s.instance.Engine(s.identity).WithDialect(s.dialect)
	reader := bufio.NewReader(conn)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF && !errors.Is(err, net.ErrClosed) {
				log.Debug().Err(err).Str("remote", remote).Msg("read failed")
			}
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "quit") || strings.EqualFold(line, "exit") {
			log.Debug().Str("remote", remote).Msg("client disconnected")
			return
		}

		var response db.Response
		if isAuthCommand(line) {
			response = s.handleAuth(line, state)
			if response.Success {
				engine = engine.WithIdentity(*state.Identity())
				log.Info().Str("remote", remote).Str("identity", state.Identity().String()).Msg("client authenticated")
			}
		} else {
			response = s.handleLine(engine, line, state)
		}

		data, err := EncodeResponse(response)
		if err != nil {
			log.Error().Err(err).Msg("failed to encode response")
			continue
		}
		if _, err := conn.Write(data); err != nil {
			log.Debug().Err(err).Str("remote", remote).Msg("write failed")
			return
		}
	}
}

// handleLine runs one request line through the connection's engine.
func (s *Server) handleLine(engine *db.Engine, line string, state *ConnectionState) db.Response {
	if s.authRequired() {
		if !state.IsAuthenticated() {
			return db.ErrorResponse(ErrAuthRequired)
		}
		if state.expired(time.Now()) {
			return db.ErrorResponse(errors.New("token expired: send AUTH JWT <token>"))
		}
	}

	req, err := DecodeRequest([]byte(line))
	if err != nil {
		return db.ErrorResponse(err)
	}

	if req.Dialect != "" {
		dialect, err := codegen.ParseDialect(req.Dialect)
		if err != nil {
			return db.ErrorResponse(err)
		}
		engine = engine.WithDialect(dialect)
	}

	switch req.Action {
	case ActionCheck:
		return db.NewResponse(engine.Check(req.Query))
	case ActionRecords:
		return db.NewResponse(engine.Records())
	case ActionHistory:
		return db.NewResponse(engine.History(req.Limit))
	default:
		return db.NewResponse(engine.Execute(req.Query))
	}
}
