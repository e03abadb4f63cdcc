package inspect

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/rstate/pkg/document"
	"github.com/vango-dev/rstate/pkg/reactive"
)

// SeqHeader carries the snapshot sequence number on GET /state.
const SeqHeader = "X-Rstate-Seq"

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithCheckOrigin overrides the websocket origin check. All origins are
// accepted by default.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.upgrader.CheckOrigin = fn
	}
}

// client serializes writes to one connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Server exposes one root over HTTP and websockets.
type Server struct {
	root     *reactive.Root
	binding  *reactive.Binding
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	upgrader websocket.Upgrader
	router   chi.Router

	// mu guards snapshot, seq and clients. It is held while broadcasting
	// so messages reach every client in sequence order.
	mu       sync.Mutex
	snapshot []byte
	seq      uint64
	clients  map[*client]bool
	closed   bool
}

// New attaches a server to root. It must be called on the goroutine that
// owns root. The server refreshes its snapshot through a batched coarse
// binding, so clients see one change per scheduler tick.
func New(root *reactive.Root, opts ...Option) *Server {
	s := &Server{
		root:     root,
		logger:   slog.Default(),
		gatherer: prometheus.DefaultGatherer,
		clients:  make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("root", root.ID())

	snap, err := s.encode()
	if err != nil {
		s.logger.Error("initial snapshot failed", "error", err)
		snap = []byte("null")
	}
	s.snapshot = snap
	s.binding = reactive.BindObserver(root, s.refresh)
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/state", s.handleState)
	r.Get("/ws", s.handleWebSocket)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) encode() ([]byte, error) {
	data, err := document.Encode(s.root.Node(), document.FormatJSON)
	if err != nil {
		return nil, err
	}
	return bytes.TrimSpace(data), nil
}

// refresh runs on the owner goroutine after each batch.
func (s *Server) refresh() {
	next, err := s.encode()
	if err != nil {
		s.logger.Error("snapshot failed", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || bytes.Equal(next, s.snapshot) {
		return
	}

	patch, err := mergePatch(s.snapshot, next)
	if err != nil {
		s.logger.Error("merge patch failed", "error", err)
		patch = next
	}
	s.snapshot = next
	s.seq++
	s.broadcastLocked(Message{Type: MessageChange, Seq: s.seq, Patch: patch})
}

// broadcastLocked sends msg to every client. s.mu must be held.
func (s *Server) broadcastLocked(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("encode message failed", "error", err)
		return
	}

	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}

	for _, c := range clients {
		if err := c.write(data); err != nil {
			s.logger.Debug("dropping client", "remote", c.conn.RemoteAddr().String(), "error", err)
			delete(s.clients, c)
			c.conn.Close()
		}
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snap, seq := s.snapshot, s.seq
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(SeqHeader, strconv.FormatUint(seq, 10))
	w.Write(snap)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	hello, _ := json.Marshal(Message{Type: MessageSnapshot, Seq: s.seq, State: s.snapshot})
	if err := c.write(hello); err != nil {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.clients[c] = true
	s.mu.Unlock()
	s.logger.Debug("client connected", "remote", conn.RemoteAddr().String())

	// Reads only detect the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	conn.Close()
}

// Seq returns the number of change messages produced so far.
func (s *Server) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// Snapshot returns the cached JSON snapshot.
func (s *Server) Snapshot() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close detaches from the root and closes all client connections. The
// HTTP handler keeps serving the last snapshot.
func (s *Server) Close() {
	s.binding.Teardown()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for c := range s.clients {
		c.conn.Close()
		delete(s.clients, c)
	}
}
