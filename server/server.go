package server

import (
	"fmt"
	"net/http"

	"connectrpc.com/connect"

	"github.com/chazu/zzed/compiler"
	"github.com/chazu/zzed/editor"
)

// ZzedServer serves the ScriptService over Connect (HTTP/JSON).
type ZzedServer struct {
	worker *EditWorker
	mux    *http.ServeMux
}

// ServerOption configures a ZzedServer.
type ServerOption func(*serverConfig)

type serverConfig struct {
	session   *editor.Session
	annotator compiler.Annotator
}

// WithSession enables the load and save procedures on the given session.
func WithSession(session *editor.Session) ServerOption {
	return func(c *serverConfig) { c.session = session }
}

// WithAnnotator sets the annotator used by annotated decompiles. Without
// one, Decompile never adds comments.
func WithAnnotator(a compiler.Annotator) ServerOption {
	return func(c *serverConfig) { c.annotator = a }
}

// New creates a ZzedServer.
func New(opts ...ServerOption) *ZzedServer {
	cfg := &serverConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &ZzedServer{mux: http.NewServeMux()}
	if cfg.session != nil {
		s.worker = NewEditWorker(cfg.session)
	}

	scriptSvc := NewScriptService(s.worker, cfg.annotator)
	path, handler := NewScriptServiceHandler(scriptSvc,
		connect.WithInterceptors(NewRequestIDInterceptor()))
	s.mux.Handle(path, handler)

	return s
}

// Handler returns the HTTP handler serving all procedures.
func (s *ZzedServer) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server on the given address.
// The address should be in the form "host:port" or ":port".
func (s *ZzedServer) ListenAndServe(addr string) error {
	fmt.Printf("zzed script server listening on %s\n", addr)
	fmt.Printf("  Connect (HTTP/JSON): http://%s%s\n", addr, CompileProcedure)
	return http.ListenAndServe(addr, s.mux)
}

// Stop shuts down the server.
func (s *ZzedServer) Stop() {
	if s.worker != nil {
		s.worker.Stop()
	}
}
