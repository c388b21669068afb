package api

import (
	"net/http"
)

// handleStats reports presentation pacing: how long recent slides were
// shown and how long the current one has been up.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	// Refresh the current slide before reporting.
	s.currentPosition(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"pacing": s.pacing.Snapshot(),
	})
}
