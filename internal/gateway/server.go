package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/udisondev/arena/internal/game/event"
	"github.com/udisondev/arena/internal/game/skill"
	"github.com/udisondev/arena/internal/model"
)

const (
	// максимальный размер входящего сообщения
	maxMessageSize = 4 * 1024

	defaultWriteWait = 10 * time.Second
	defaultPongWait  = 60 * time.Second
	defaultSendQueue = 256
)

// Submitter accepts action requests (session.Session).
type Submitter interface {
	Submit(req model.ActionRequest)
}

// Views exposes the published actor snapshots (session.Session).
type Views interface {
	Snapshot(actorID uint32) (model.ActorSnapshot, bool)
	Snapshots() []model.ActorSnapshot
}

// Describer describes a kit's skills (skill.Registry).
type Describer interface {
	Describe(kit model.Kit) ([]skill.Description, error)
}

// Config holds the connection timeouts.
type Config struct {
	WriteTimeout time.Duration // per-write deadline
	ReadTimeout  time.Duration // idle disconnect; pings go out at 9/10 of it
	SendQueue    int           // per-connection outbound queue
}

func (c Config) withDefaults() Config {
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultWriteWait
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = defaultPongWait
	}
	if c.SendQueue <= 0 {
		c.SendQueue = defaultSendQueue
	}
	return c
}

// Server is the websocket gateway: it binds one connection to one actor,
// forwards the actor's requests to the session and streams events back.
// There is no authentication; lobby and accounts live elsewhere.
type Server struct {
	cfg      Config
	submit   Submitter
	views    Views
	skills   Describer
	bus      *event.Bus
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*conn
}

// NewServer creates a gateway.
func NewServer(cfg Config, submit Submitter, views Views, skills Describer, bus *event.Bus) *Server {
	return &Server{
		cfg:    cfg.withDefaults(),
		submit: submit,
		views:  views,
		skills: skills,
		bus:    bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// клиенты арены не браузерные, origin не проверяем
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[string]*conn),
	}
}

// Handler returns the HTTP routes: /ws?actor=<id> and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %d\n", s.ConnectionCount())
	})
	return mux
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("gateway listening", "address", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("gateway: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// hijacked websocket connections are not closed by Shutdown
	s.closeAll()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("gateway shutdown: %w", err)
	}
	slog.Info("gateway stopped")
	return nil
}

// ConnectionCount returns the number of open connections.
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.URL.Query().Get("actor"), 10, 32)
	if err != nil || id == 0 {
		http.Error(w, "actor query parameter required", http.StatusBadRequest)
		return
	}
	actorID := uint32(id)

	self, ok := s.views.Snapshot(actorID)
	if !ok {
		http.Error(w, "unknown actor", http.StatusNotFound)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "actor", actorID, "error", err)
		return
	}

	c := &conn{
		id:      uuid.NewString(),
		actorID: actorID,
		ws:      ws,
		server:  s,
		send:    make(chan []byte, s.cfg.SendQueue),
		done:    make(chan struct{}),
	}
	c.sub = s.bus.Subscribe(relevantTo(actorID))

	s.mu.Lock()
	s.conns[c.id] = c
	s.mu.Unlock()

	slog.Info("client connected", "connection", c.id, "actor", actorID, "remote", r.RemoteAddr)

	skills, err := s.skills.Describe(self.Kit)
	if err != nil {
		slog.Warn("describing kit", "actor", actorID, "error", err)
	}
	c.enqueue(MessageWelcome, Welcome{
		ConnectionID: c.id,
		ActorID:      actorID,
		Actors:       s.views.Snapshots(),
		Skills:       skills,
	})

	go c.writePump()
	go c.forwardPump()
	go c.readPump()
}

func (s *Server) remove(c *conn) {
	s.mu.Lock()
	delete(s.conns, c.id)
	s.mu.Unlock()
	s.bus.Unsubscribe(c.sub)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	conns := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.close()
	}
}

// relevantTo forwards world state for everyone, notifications for the own actor.
func relevantTo(actorID uint32) func(event.Event) bool {
	return func(ev event.Event) bool {
		switch ev.Kind {
		case event.KindActorState, event.KindDied, event.KindRespawned, event.KindDespawned:
			return true
		default:
			return ev.ActorID == actorID
		}
	}
}
