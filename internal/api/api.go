// Package api exposes the generation pipeline and the deterministic
// assembler over HTTP for the bpmn-js front end.
//
// Internal failures never leak to clients; every error path degrades to a
// safe user-facing message.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PigStep/Vibe-BPMN-studio/internal/agent"
	"github.com/PigStep/Vibe-BPMN-studio/internal/validation"
)

// SessionHeader carries the opaque session identifier across requests.
const SessionHeader = "X-Session-ID"

// Opts configures the HTTP server.
type Opts struct {
	Addr           string // listen address, e.g. ":8080"
	StaticDir      string // front-end files served at the root
	ExampleXMLPath string // static example diagram returned by the API
}

// Server wires the pipeline, the assembler input validator and the static
// assets into an HTTP handler.
type Server struct {
	pipeline *agent.Pipeline
	input    *validation.InputValidator
	opts     Opts
}

// NewServer creates the API server around an explicitly constructed pipeline.
func NewServer(pipeline *agent.Pipeline, input *validation.InputValidator, opts Opts) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	return &Server{pipeline: pipeline, input: input, opts: opts}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Post("/api/generate", s.handleGenerate)
	r.Post("/api/assemble", s.handleAssemble)
	r.Get("/api/example-bpmn-xml", s.handleExampleXML)
	r.Delete("/api/session", s.handleResetSession)

	if s.opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.opts.StaticDir)))
	}
	return r
}

// Run starts the HTTP server and blocks.
func (s *Server) Run() error {
	slog.Info("Server.Run: Vibe BPMN Studio API listening", "addr", s.opts.Addr)
	return http.ListenAndServe(s.opts.Addr, s.Handler())
}
