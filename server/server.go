package server

import (
	"net/http"

	"github.com/tliron/commonlog"

	"github.com/chazu/sol25/compiler"
)

var log = commonlog.GetLogger("sol25.server")

// Sol25Server serves the check service over Connect (HTTP/JSON).
type Sol25Server struct {
	check *CheckService
	mux   *http.ServeMux
}

// ServerOption configures a Sol25Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	opts   compiler.Options
	indent int
}

// WithStrictClasses makes every check reject undefined class references.
func WithStrictClasses(strict bool) ServerOption {
	return func(c *serverConfig) { c.opts.StrictClasses = strict }
}

// WithIndent sets the indentation of returned XML documents. Zero or less
// returns single-line documents.
func WithIndent(indent int) ServerOption {
	return func(c *serverConfig) { c.indent = indent }
}

// New creates a Sol25Server.
func New(opts ...ServerOption) *Sol25Server {
	cfg := &serverConfig{indent: 2}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Sol25Server{
		check: NewCheckService(cfg.opts, cfg.indent),
		mux:   http.NewServeMux(),
	}

	checkPath, checkHandler := NewCheckServiceHandler(s.check)
	s.mux.Handle(checkPath, checkHandler)

	return s
}

// Handler returns the HTTP handler serving every registered procedure.
func (s *Sol25Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server on the given address.
// The address should be in the form "host:port" or ":port".
func (s *Sol25Server) ListenAndServe(addr string) error {
	log.Noticef("SOL25 check server listening on %s", addr)
	log.Noticef("  Connect (HTTP/JSON): http://%s%s", addr, CheckProcedure)
	return http.ListenAndServe(addr, s.mux)
}
