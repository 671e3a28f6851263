package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"devicerest-go/services/rest"
)

// Handler builds the router. It reflects the resources active at call time.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.HandleFunc("/"+rest.WellKnownCore, s.handleResource)
	for _, res := range s.engine.Resources() {
		r.HandleFunc("/"+res.Path, s.handleResource)
	}
	r.NotFound(s.handleResource)
	r.MethodNotAllowed(s.handleResource)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // best effort
		json.NewEncoder(w).Encode(v)
	}
}
