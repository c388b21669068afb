package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dgallion1/slidedeck/internal/position"
	"github.com/gorilla/websocket"
)

// positionBody is {"position": n}, with null when nothing usable is stored.
type positionBody struct {
	Position *int `json:"position"`
}

func (s *Server) currentPosition(ctx context.Context) positionBody {
	n, ok := position.Read(ctx, s.positions, s.cfg.PositionKey)
	if !ok {
		return positionBody{}
	}
	s.pacing.Observe(n)
	return positionBody{Position: &n}
}

func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.currentPosition(r.Context()))
}

// handlePutPosition moves the presentation, for controllers that cannot
// reach the store directly.
func (s *Server) handlePutPosition(w http.ResponseWriter, r *http.Request) {
	var body positionBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	total := s.deck.Catalog().Len()
	if body.Position == nil || *body.Position < 1 || *body.Position > total {
		jsonError(w, fmt.Sprintf("position must be between 1 and %d", total), http.StatusBadRequest)
		return
	}

	if err := position.Write(r.Context(), s.positions, s.cfg.PositionKey, *body.Position); err != nil {
		s.log.Error("write position failed", "slide", *body.Position, "error", err)
		jsonError(w, "failed to store position", http.StatusInternalServerError)
		return
	}
	s.pacing.Observe(*body.Position)
	writeJSON(w, http.StatusOK, body)
}

// handlePositionStream pushes the position over a websocket: once on connect,
// then on every change. Store notifications trigger an immediate check and a
// ticker covers backends without notifications.
func (s *Server) handlePositionStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(s.streams)
	defer cancel()

	// The client never sends anything we need; reading detects disconnects.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	changed := make(chan struct{}, 1)
	unsubscribe := s.positions.Subscribe(s.cfg.PositionKey, func(string) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	var last *positionBody
	for {
		cur := s.currentPosition(ctx)
		if last == nil || !samePosition(*last, cur) {
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(cur); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.log.Debug("websocket write failed", "error", err)
				}
				return
			}
			last = &cur
		}

		select {
		case <-ctx.Done():
			return
		case <-changed:
		case <-ticker.C:
		}
	}
}

func samePosition(a, b positionBody) bool {
	if a.Position == nil || b.Position == nil {
		return a.Position == nil && b.Position == nil
	}
	return *a.Position == *b.Position
}
