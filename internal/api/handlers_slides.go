package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dgallion1/slidedeck/internal/parser"
	"github.com/dgallion1/slidedeck/internal/slides"
	"github.com/go-chi/chi/v5"
)

// handleDocument serves the assembled deck in the same shape as the static
// export.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deck.Document())
}

type slideResponse struct {
	Slide slides.Slide      `json:"slide"`
	HTML  map[string]string `json:"html,omitempty"`
}

// handleSlide serves one slide by number. With ?format=html the present
// sections are also rendered to HTML.
func (s *Server) handleSlide(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		jsonError(w, "slide number must be an integer", http.StatusBadRequest)
		return
	}
	slide, ok := s.deck.Assemble(number)
	if !ok {
		jsonError(w, "slide "+strconv.Itoa(number)+" not found", http.StatusNotFound)
		return
	}

	resp := slideResponse{Slide: slide}
	if r.URL.Query().Get("format") == "html" {
		html, err := renderSections(slide.Content)
		if err != nil {
			s.log.Error("render slide failed", "slide", number, "error", err)
			jsonError(w, "failed to render slide", http.StatusInternalServerError)
			return
		}
		resp.HTML = html
	}
	writeJSON(w, http.StatusOK, resp)
}

func renderSections(sec slides.Sections) (map[string]string, error) {
	fields := map[string]*string{
		"content":           sec.Content,
		"speakerNotes":      sec.SpeakerNotes,
		"visualDescription": sec.VisualDescription,
		"references":        sec.References,
	}
	out := make(map[string]string, len(fields))
	for name, md := range fields {
		if md == nil {
			continue
		}
		html, err := parser.RenderHTML(*md)
		if err != nil {
			return nil, err
		}
		out[name] = html
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
