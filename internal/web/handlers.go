package web

import (
	"net/http"
	"strconv"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListFormats returns every supported vendor format in detection order.
func (s *Server) handleListFormats(w http.ResponseWriter, r *http.Request) {
	defs := s.service.Formats()
	out := make([]formatResponse, 0, len(defs))
	for _, def := range defs {
		out = append(out, formatResponse{
			Key:     def.Info.Key,
			Label:   def.Info.Label,
			Columns: def.Info.Columns,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleImportStatus returns the import limiter state.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Limiter().Status())
}

// handleHistory returns the latest import summaries.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 0)

	summaries, err := s.service.Recent(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
