// Package web provides an HTTP status server for the sequencer daemon.
package web

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/sweeney/led-sequencer/internal/status"
)

// Server serves the status page over HTTP and accepts trigger requests.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	commands   chan<- string
}

// New creates a Server that reads state from tracker. Trigger requests are
// forwarded to commands; a nil channel disables POST /trigger.
func New(addr string, tracker *status.Tracker, commands chan<- string) *Server {
	s := &Server{tracker: tracker, commands: commands}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/trigger", s.handleTrigger)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

// handleTrigger queues ?event=<name|code> for the run loop. The event is
// resolved there, so unknown names are only logged.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.commands == nil {
		http.Error(w, "triggers disabled", http.StatusNotFound)
		return
	}
	event := strings.TrimSpace(r.FormValue("event"))
	if event == "" {
		http.Error(w, "missing event", http.StatusBadRequest)
		return
	}

	select {
	case s.commands <- event:
		w.WriteHeader(http.StatusAccepted)
	default:
		http.Error(w, "busy", http.StatusServiceUnavailable)
	}
}
