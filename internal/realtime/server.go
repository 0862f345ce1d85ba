package realtime

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier func(token string) (string, error)

// Server serves the websocket endpoint on its own listener.
type Server struct {
	hub      *Hub
	verify   TokenVerifier
	logger   *zap.Logger
	origins  map[string]struct{}
	upgrader websocket.Upgrader
	http     *http.Server
}

// NewServer builds the websocket server bound to addr. Browser upgrades are
// accepted only from allowedOrigins; an empty list accepts any origin.
func NewServer(addr string, hub *Hub, verify TokenVerifier, allowedOrigins []string, logger *zap.Logger) *Server {
	s := &Server{
		hub:     hub,
		verify:  verify,
		logger:  logger,
		origins: make(map[string]struct{}, len(allowedOrigins)),
	}
	for _, origin := range allowedOrigins {
		if origin = normalizeOrigin(origin); origin != "" {
			s.origins[origin] = struct{}{}
		}
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router exposes the routes, mainly for tests.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	return r
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("realtime server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting connections.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// checkOrigin lets clients without an Origin header through; they are not
// browsers and still need a valid token.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.origins) == 0 {
		return true
	}
	if _, ok := s.origins[normalizeOrigin(origin)]; ok {
		return true
	}
	s.logger.Warn("websocket origin rejected", zap.String("origin", origin))
	return false
}

func normalizeOrigin(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if h := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(h), "bearer ") {
			token = h[len("bearer "):]
		}
	}
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	userID, err := s.verify(token)
	if err != nil || userID == "" {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(s.hub, conn, userID)
	s.hub.Register(client)

	go client.writePump()
	go client.readPump(s.logger)
}
