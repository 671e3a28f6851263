// Package httpapi exposes the REST engine over HTTP.
//
//	srv, err := httpapi.New(deps)
//	srv.Start(ctx)
//	defer srv.Close()
//
// Every activated resource is mounted at /<path>, plus /.well-known/core and
// a JSON /healthz. Requests are dispatched through the engine, so verbs it
// does not allow answer 405 and unknown paths 404.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"devicerest-go/services/logging"
	"devicerest-go/services/rest"
)

const gracefulShutdownTimeout = 5 * time.Second

// Config configures the listener.
type Config struct {
	Addr     string         `yaml:"addr"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`
}

// TimeoutsConfig holds seconds.
type TimeoutsConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// Deps holds what the server needs.
type Deps struct {
	Config  Config
	Logger  *logging.Logger
	Engine  *rest.Engine
	Version string
}

type Server struct {
	cfg     Config
	logger  *logging.Logger
	engine  *rest.Engine
	version string

	server *http.Server
	ln     net.Listener
	done   chan struct{}
}

// New validates deps. The server does not listen until Start.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	return &Server{
		cfg:     deps.Config,
		logger:  deps.Logger.With("component", "http"),
		engine:  deps.Engine,
		version: deps.Version,
	}, nil
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.ln = ln
	s.done = make(chan struct{})
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       seconds(s.cfg.Timeouts.Read),
		ReadHeaderTimeout: seconds(s.cfg.Timeouts.Read),
		WriteTimeout:      seconds(s.cfg.Timeouts.Write),
		IdleTimeout:       seconds(s.cfg.Timeouts.Idle),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		defer close(s.done)
		s.logger.Info("http server listening", "address", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()
	return nil
}

// Addr is the bound address once started.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.cfg.Addr
	}
	return s.ln.Addr().String()
}

// Close shuts down gracefully, waiting for in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	err := s.server.Shutdown(ctx)
	<-s.done
	s.logger.Info("http server stopped")
	return err
}

func seconds(n int) time.Duration {
	if n <= 0 {
		n = 10
	}
	return time.Duration(n) * time.Second
}

// handleResource dispatches one HTTP request through the engine.
func (s *Server) handleResource(w http.ResponseWriter, r *http.Request) {
	m, ok := rest.ParseMethod(r.Method)
	if !ok {
		writeStatus(w, rest.StatusMethodNotAllowed)
		return
	}
	req, err := rest.NewRequest(m, r.URL.Path, r.URL.RawQuery)
	if err != nil {
		writeStatus(w, rest.StatusBadRequest)
		return
	}
	resp := s.engine.Dispatch(req)

	if ct := resp.ContentType(); ct != "" {
		w.Header().Set("Content-Type", string(ct))
	}
	body := resp.Payload()
	if resp.Status() != rest.StatusChanged {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	}
	writeStatus(w, resp.Status())
	if len(body) > 0 {
		//nolint:errcheck // client may have gone away
		w.Write(body)
	}
}

// writeStatus sets the HTTP status and echoes the CoAP-style code.
func writeStatus(w http.ResponseWriter, st rest.Status) {
	w.Header().Set("X-CoAP-Code", st.String())
	w.WriteHeader(st.HTTP())
}
