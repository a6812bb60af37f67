package websocket

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type HandlerConfig struct {
	ReadBufferSize   int
	WriteBufferSize  int
	HandshakeTimeout time.Duration
	PongTimeout      time.Duration
	AllowedOrigins   []string
}

// Server upgrades authenticated HTTP requests and attaches them to a hub.
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
	pongWait time.Duration
}

func NewServer(hub *Hub, config HandlerConfig) *Server {
	return &Server{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   config.ReadBufferSize,
			WriteBufferSize:  config.WriteBufferSize,
			HandshakeTimeout: config.HandshakeTimeout,
			CheckOrigin:      originChecker(config.AllowedOrigins),
		},
		pongWait: config.PongTimeout,
	}
}

// Serve upgrades the connection and subscribes it to rooms. The caller is
// responsible for authenticating the request first.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, userID string, rooms []string) error {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := NewClient(s.hub, conn, userID, rooms, s.pongWait)
	if !s.hub.Register(client) {
		conn.Close()
		return nil
	}

	go client.writePump()
	go client.readPump()
	return nil
}

func originChecker(allowed []string) func(r *http.Request) bool {
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		for _, candidate := range allowed {
			if strings.EqualFold(strings.TrimRight(candidate, "/"), origin) {
				return true
			}
		}
		return false
	}
}
