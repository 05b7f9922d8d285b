package server

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"

	"github.com/jason-s-yu/lobbyd/internal/middleware"
)

// Handler returns the HTTP router: a health check, the lobby listing and the
// WebSocket gateway.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/ping"))
	r.Use(middleware.LogMiddleware(s.logger))

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"https://*", "http://*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			MaxAge:         300,
		}))
		r.Get("/lobbies", s.listLobbies)
	})
	r.Get("/ws", s.serveWS)
	return r
}

func (s *Server) listLobbies(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.dispatcher.Registry().Snapshot()); err != nil {
		s.logger.WithError(err).Error("Failed to encode lobby listing")
	}
}

// serveWS upgrades the request and speaks the same line protocol as TCP, one
// or more newline terminated frames per text message.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.opts.WSOrigins,
	})
	if err != nil {
		s.logger.Warnf("websocket accept error: %v", err)
		return
	}
	c.SetReadLimit(int64(s.opts.MaxFrameBytes))

	conn := websocket.NetConn(r.Context(), c, websocket.MessageText)
	s.ServeConn(conn, "ws", r.RemoteAddr)
}
