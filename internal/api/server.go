package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgallion1/slidedeck/internal/config"
	"github.com/dgallion1/slidedeck/internal/deck"
	"github.com/dgallion1/slidedeck/internal/pacing"
	"github.com/dgallion1/slidedeck/internal/position"
	"github.com/dgallion1/slidedeck/internal/slides"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

// Server is the HTTP API for the deck: slide content plus the shared
// navigation position.
type Server struct {
	router    chi.Router
	deck      *deck.Store
	positions position.Store
	pacing    *pacing.Tracker
	upgrader  websocket.Upgrader
	log       *slog.Logger
	cfg       config.Config

	// streams outlive their requests once hijacked; Close ends them.
	streams     context.Context
	cancel      context.CancelFunc
	unsubscribe func()
}

// NewServer creates and configures the HTTP server.
func NewServer(store *deck.Store, positions position.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		deck:      store,
		positions: positions,
		pacing:    pacing.NewTracker(4 * time.Hour),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Presenter views are often opened from a different origin
			// (a static host) than the API.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
		cfg: cfg,
	}
	s.streams, s.cancel = context.WithCancel(context.Background())
	// Record every move the store reports, not only the ones a request sees.
	s.unsubscribe = positions.Subscribe(cfg.PositionKey, func(v string) {
		if n, ok := position.Parse(v); ok && n >= 1 {
			s.pacing.Observe(n)
		}
	})
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close disconnects open position streams and stops pacing updates.
// Register it with http.Server.RegisterOnShutdown.
func (s *Server) Close() {
	s.cancel()
	s.unsubscribe()
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Get(slides.EndpointPath, s.handleDocument)
	r.Get("/api/slides", s.handleDocument)
	r.Get("/api/slides/{number}", s.handleSlide)

	r.Get("/api/position", s.handleGetPosition)
	r.Get("/api/position/ws", s.handlePositionStream)
	r.Get("/api/stats", s.handleStats)

	// Moving the presentation is the only write; guard it when a key is set.
	r.Group(func(r chi.Router) {
		if s.cfg.DeckAPIKey != "" {
			r.Use(AuthMiddleware(s.cfg.DeckAPIKey, s.log))
		}
		r.Put("/api/position", s.handlePutPosition)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
