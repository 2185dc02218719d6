package hub

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/softwarechaser9/elearning-notify/internal/notify"
	"github.com/softwarechaser9/elearning-notify/internal/wire"
)

// Server exposes the websocket channel endpoint and a small HTTP API for
// publishing and listing notifications.
type Server struct {
	hub            *Hub
	store          *Store
	jwtSecret      string
	publishToken   string
	allowedOrigins map[string]bool
	allowedHosts   map[string]bool
}

func NewServer(hub *Hub, store *Store, jwtSecret, publishToken string, allowedOrigins []string) *Server {
	s := &Server{
		hub:            hub,
		store:          store,
		jwtSecret:      jwtSecret,
		publishToken:   publishToken,
		allowedOrigins: make(map[string]bool),
		allowedHosts:   make(map[string]bool),
	}

	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		s.allowedOrigins[trimmed] = true
		if parsed, err := url.Parse(trimmed); err == nil && parsed.Host != "" {
			s.allowedHosts[parsed.Host] = true
		}
	}

	return s
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/notifications", s.handleChannel)
	mux.HandleFunc("/api/notifications", s.handleNotifications)
	mux.HandleFunc("/api/notifications/read-all", s.handleReadAll)
}

// handleChannel upgrades the connection and attaches it to the user's
// notification group. Inbound frames are mark_read signals; anything
// malformed is logged and dropped without closing the channel.
func (s *Server) handleChannel(w http.ResponseWriter, r *http.Request) {
	user, err := s.identify(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: s.checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("hub: upgrade error: %v", err)
		return
	}

	log.Printf("hub: channel open for %s (%s)", user, r.RemoteAddr)
	c := s.hub.Register(user, conn)

	go func() {
		defer func() {
			s.hub.Remove(c)
			log.Printf("hub: channel closed for %s (%s)", user, r.RemoteAddr)
		}()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			frame, err := wire.DecodeClientFrame(data)
			if err != nil {
				log.Printf("hub: %v", err)
				continue
			}
			if frame.Type == wire.TypeMarkRead && frame.NotificationID != "" {
				s.hub.MarkRead(user, frame.NotificationID)
			}
		}
	}()
}

type publishRequest struct {
	Recipient   string `json:"recipient"`
	Kind        string `json:"type"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	IsImportant bool   `json:"is_important"`
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handlePublish(w, r)
	case http.MethodGet:
		s.handleList(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handlePublish injects a notification; upstream this is driven by course
// events (new material, enrollment, feedback), here it is an API for the
// surrounding platform.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	if !s.authorizePublish(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Recipient == "" || req.Title == "" {
		http.Error(w, "recipient and title required", http.StatusBadRequest)
		return
	}

	n := notify.Notification{
		Kind:        notify.Kind(req.Kind),
		Title:       req.Title,
		Message:     req.Message,
		IsImportant: req.IsImportant,
	}
	if err := s.hub.Publish(req.Recipient, n); err != nil {
		log.Printf("hub: publish: %v", err)
		http.Error(w, "publish failed", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	user, err := s.identify(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	items, err := s.store.Recent(user, notify.DefaultFeedCapacity)
	if err != nil {
		log.Printf("hub: %v", err)
		http.Error(w, "list failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (s *Server) handleReadAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, err := s.identify(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	s.hub.MarkAllRead(user)
	w.WriteHeader(http.StatusNoContent)
}

// identify resolves the user identity from the channel token, checked in
// the same places the rest of the platform passes credentials: query
// parameter, custom header, or bearer token.
func (s *Server) identify(r *http.Request) (string, error) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		raw = r.Header.Get("X-Notify-Token")
	}
	if raw == "" {
		auth := r.Header.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			raw = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if raw == "" {
		return "", ErrBadToken
	}
	return ParseToken(s.jwtSecret, raw)
}

func (s *Server) authorizePublish(r *http.Request) bool {
	if s.publishToken == "" {
		return true
	}
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.publishToken
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if len(s.allowedOrigins) > 0 {
		if s.allowedOrigins[origin] {
			return true
		}
		if parsed, err := url.Parse(origin); err == nil && parsed.Host != "" {
			return s.allowedHosts[parsed.Host]
		}
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := parsed.Host
	if host == "" {
		return false
	}

	if host == r.Host {
		return true
	}

	if strings.HasPrefix(host, "localhost:") || host == "localhost" {
		return true
	}
	if strings.HasPrefix(host, "127.0.0.1:") || host == "127.0.0.1" {
		return true
	}
	if strings.HasPrefix(host, "[::1]:") || host == "::1" {
		return true
	}

	return false
}

func ListenAndServe(host string, port int, mux *http.ServeMux) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	log.Printf("Server listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
