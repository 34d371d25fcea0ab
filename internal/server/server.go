package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

// Server exposes rooms over HTTP and WebSocket
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	rooms       *RoomManager
	logger      *log.Logger
	router      chi.Router
	mu          sync.Mutex
	connections map[*Connection]bool
}

// NewServer creates a server for the rooms in rm
func NewServer(addr string, rm *RoomManager, logger *log.Logger) *Server {
	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		rooms:       rm,
		logger:      logger.WithPrefix("server"),
		connections: make(map[*Connection]bool),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler, for embedding and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)
	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", s.handleListRooms)
		r.Post("/", s.handleCreateRoom)
		r.Route("/{roomID}", func(r chi.Router) {
			r.Get("/", s.handleGetRoom)
			r.Delete("/", s.handleDeleteRoom)
			r.Post("/reset", s.handleResetRoom)
			r.Get("/ws", s.handleRoomWebSocket)
		})
	})
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully and stops
// every room.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.closeConnections()
		s.rooms.StopAll()
		return err
	})
	return g.Wait()
}

func (s *Server) closeConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close()
	}
}

func (s *Server) track(conn *Connection) {
	s.mu.Lock()
	s.connections[conn] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)

	go func() {
		<-conn.Done()
		s.mu.Lock()
		delete(s.connections, conn)
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info("Client disconnected", "player", conn.Player(), "total", total)
	}()
}

func (s *Server) upgrade(w http.ResponseWriter, r *http.Request) (*Connection, bool) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return nil, false
	}
	conn := NewConnection(ws, s.logger, s.rooms)
	s.track(conn)
	return conn, true
}

// handleWebSocket accepts a connection that joins rooms by message
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, ok := s.upgrade(w, r)
	if !ok {
		return
	}
	conn.Start()
}

// handleRoomWebSocket joins the room straight away: seated when a player
// query parameter is given, otherwise as a spectator
func (s *Server) handleRoomWebSocket(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if _, err := s.rooms.Get(roomID); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	conn, ok := s.upgrade(w, r)
	if !ok {
		return
	}
	conn.Start()
	if player := r.URL.Query().Get("player"); player != "" {
		conn.handleJoin(JoinRoomData{RoomID: roomID, PlayerID: player})
	} else {
		conn.handleWatch(WatchRoomData{RoomID: roomID})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RoomListData{Rooms: s.rooms.List()})
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var cfg RoomConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid room config: %w", err))
		return
	}
	room, err := s.rooms.Create(cfg)
	switch {
	case errors.Is(err, ErrRoomExists):
		writeError(w, http.StatusConflict, err)
	case err != nil:
		writeError(w, http.StatusBadRequest, err)
	default:
		writeJSON(w, http.StatusCreated, room.Summary())
	}
}

// handleGetRoom returns the spectator view of a room
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.rooms.Get(chi.URLParam(r, "roomID"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, room.Snapshot(""))
}

func (s *Server) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	if err := s.rooms.Delete(chi.URLParam(r, "roomID")); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleResetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.rooms.Get(chi.URLParam(r, "roomID"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	room.Reset()
	writeJSON(w, http.StatusOK, room.Summary())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorData{Code: http.StatusText(status), Message: err.Error()})
}
