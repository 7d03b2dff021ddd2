package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/zsiec/vtc/pkg/version"
)

// handleVersion handles the /version endpoint
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if err := s.writeJSON(w, http.StatusOK, version.GetInfo()); err != nil {
		s.logger.WithError(err).Error("Failed to encode version response")
	}
}

// APIRouter returns the /api/v1 subrouter with the request timeout applied.
// Handlers registered through RegisterRoutes should hang off it.
func (s *Server) APIRouter(router *mux.Router) *mux.Router {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(s.timeoutMiddleware(s.config.WriteTimeout))
	return api
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}
