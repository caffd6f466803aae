// Package dashboard is a minimal stub of the teacher's WebSocket dashboard
// (internal/api/hub.go + server.go): a streaming UI is explicitly out of
// the core's scope (spec §1, "Progress-bar UIs... are out of scope"), so
// this keeps only the part that matters for parity — broadcasting Account
// snapshots to connected clients — and drops the static web/ file server
// and REST snapshot/health endpoints the teacher also carried.
package dashboard

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/0xtitan6/tradecore/internal/account"
	"github.com/0xtitan6/tradecore/internal/config"
)

// Hub manages WebSocket clients and broadcasts account snapshots to them.
// Grounded on the teacher's internal/api.Hub client-registration loop,
// narrowed from a general event bus to a single Account-snapshot broadcast.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	mu         sync.RWMutex
	logger     *slog.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub builds an idle Hub; call Run to start its event loop.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 256),
		logger:     logger.With("component", "dashboard-hub"),
	}
}

// Run drives the hub's register/unregister/broadcast loop until ctx done
// would be the live version; the stub runs until the process exits, the
// same as the teacher's fire-and-forget `go hub.Run()`.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastAccount marshals acc and fans it out to every connected client.
func (h *Hub) BroadcastAccount(acc account.Account) {
	data, err := json.Marshal(acc)
	if err != nil {
		h.logger.Error("marshal account snapshot", "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("dashboard broadcast buffer full, dropping snapshot")
	}
}

// Server exposes a single /ws endpoint streaming Account snapshots through
// Hub, gated by config.DashboardConfig.Enabled — the ambient "optional
// stub" SPEC_FULL.md carries for parity with the teacher's dashboard
// config surface without reintroducing a full UI.
type Server struct {
	cfg    config.DashboardConfig
	hub    *Hub
	http   *http.Server
	logger *slog.Logger
}

// NewServer builds a dashboard server; call ListenAndServe to listen (it
// also starts the hub's broadcast loop) and Hub().BroadcastAccount on every
// step.
func NewServer(cfg config.DashboardConfig, logger *slog.Logger) *Server {
	hub := NewHub(logger)
	mux := http.NewServeMux()
	s := &Server{cfg: cfg, hub: hub, logger: logger.With("component", "dashboard-server")}
	mux.HandleFunc("/ws", s.handleWebSocket)
	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

// Hub returns the underlying broadcast hub.
func (s *Server) Hub() *Hub { return s.hub }

// ListenAndServe starts the hub's broadcast loop and the HTTP server, and
// blocks until the server returns an error. When the dashboard is disabled
// it returns nil at once.
func (s *Server) ListenAndServe() error {
	if !s.cfg.Enabled {
		return nil
	}
	go s.hub.Run()
	return s.http.ListenAndServe()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(req *http.Request) bool {
			return isOriginAllowed(req.Header.Get("Origin"), s.cfg.AllowedOrigins, req.Host)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 16)}
	s.hub.register <- c
	go func() {
		defer func() {
			s.hub.unregister <- c
			conn.Close()
		}()
		for msg := range c.send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()
}

// isOriginAllowed mirrors the teacher's CORS check for the dashboard
// WebSocket: no Origin header (non-browser clients) is allowed through,
// an explicit allow-list takes precedence, and otherwise localhost or the
// request's own host is allowed.
func isOriginAllowed(origin string, allowed []string, reqHost string) bool {
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	normalized := normalizeOrigin(originURL.Scheme, originURL.Host)
	if normalized == "" {
		return false
	}

	if len(allowed) > 0 {
		for _, a := range allowed {
			u, err := url.Parse(a)
			if err != nil {
				continue
			}
			if normalized == normalizeOrigin(u.Scheme, u.Host) {
				return true
			}
		}
		return false
	}

	host := strings.ToLower(originURL.Hostname())
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return true
	}
	return host == normalizeHost(reqHost)
}

func normalizeOrigin(scheme, host string) string {
	if scheme == "" || host == "" {
		return ""
	}
	return strings.ToLower(scheme) + "://" + strings.ToLower(host)
}

func normalizeHost(hostport string) string {
	hostport = strings.TrimSpace(hostport)
	if hostport == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return strings.ToLower(host)
	}
	return strings.ToLower(hostport)
}
