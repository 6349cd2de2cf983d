// Package monitor pushes planner status over a websocket so a dashboard can
// watch the ring buffer and dispatcher without polling. It never feeds
// anything back into the planner: StatusSource is read-only, and a client
// disconnecting or the send channel filling up never blocks Step().
//
// Grounded on the teacher's moonraker.Server: the same wsUpgrader/client-map/
// broadcast-loop shape, shrunk to the one thing a motion planner actually
// needs to expose — a periodic Snapshot push — instead of a full Moonraker
// JSON-RPC surface.
package monitor

import (
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sugawarayuuta/sonnet"

	"aline-planner/pkg/aline"
	"aline-planner/pkg/log"
	"aline-planner/pkg/pool"
)

const (
	defaultInterval  = 250 * time.Millisecond
	pingInterval     = 30 * time.Second
	writeWait        = 10 * time.Second
	readWait         = 60 * time.Second
	clientSendBuffer = 16
)

// StatusSource is anything that can report a point-in-time Snapshot.
// *aline.Machine satisfies this.
type StatusSource interface {
	GetStatus() aline.Snapshot
}

// Config holds server configuration.
type Config struct {
	// Addr is the HTTP address to listen on (e.g. ":8787").
	Addr string
	// Source is polled once per Interval to build the broadcast payload.
	Source StatusSource
	// Interval is the broadcast period. Zero means defaultInterval.
	Interval time.Duration
	Logger   *log.Logger
}

// Server is a minimal websocket status pusher.
type Server struct {
	addr     string
	source   StatusSource
	interval time.Duration
	logger   *log.Logger

	httpServer *http.Server
	upgrader   websocket.Upgrader

	clientMu sync.RWMutex
	clients  map[int64]*wsClient
	nextID   int64

	running atomic.Bool
	stop    chan struct{}
}

// New constructs a Server. Call Start to begin listening and broadcasting.
func New(cfg Config) *Server {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New("monitor")
	}
	return &Server{
		addr:     cfg.Addr,
		source:   cfg.Source,
		interval: interval,
		logger:   logger,
		clients:  make(map[int64]*wsClient),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		stop: make(chan struct{}),
	}
}

// Start begins serving /status (websocket push) and /status/snapshot (a
// single polled JSON GET) and starts the broadcast loop. It returns once the
// listener is up; serving continues on a background goroutine.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleWebSocket)
	mux.HandleFunc("/status/snapshot", s.handleSnapshot)

	s.httpServer = &http.Server{Addr: s.addr, Handler: mux}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.running.Store(true)
	go s.broadcastLoop()
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("monitor: server exited", log.Fields{"error": err.Error()})
		}
	}()
	return nil
}

// Stop shuts down the HTTP server and disconnects every client.
func (s *Server) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	close(s.stop)

	s.clientMu.Lock()
	for id, c := range s.clients {
		c.Close()
		delete(s.clients, id)
	}
	s.clientMu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

// handleSnapshot serves a single Snapshot as JSON, for a curl/dashboard
// initial load before it upgrades to the websocket.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	m := s.source.GetStatus().AsMap()
	defer pool.PutStatusMap(m)
	w.Header().Set("Content-Type", "application/json")
	enc := sonnet.NewEncoder(w)
	if err := enc.Encode(m); err != nil {
		s.logger.Warn("monitor: snapshot encode failed", log.Fields{"error": err.Error()})
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("monitor: upgrade failed", log.Fields{"error": err.Error()})
		return
	}

	id := atomic.AddInt64(&s.nextID, 1)
	client := &wsClient{
		id:     id,
		conn:   conn,
		sendCh: make(chan []byte, clientSendBuffer),
		done:   make(chan struct{}),
	}

	s.clientMu.Lock()
	s.clients[id] = client
	s.clientMu.Unlock()

	go client.writePump(s.logger)
	client.readPump(func() {
		s.clientMu.Lock()
		delete(s.clients, id)
		s.clientMu.Unlock()
	})
}

// broadcastLoop polls Source at Interval and fans the encoded Snapshot out
// to every connected client. A client whose send buffer is full is dropped
// from that tick rather than blocking the others.
func (s *Server) broadcastLoop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.broadcastOnce()
		}
	}
}

func (s *Server) broadcastOnce() {
	snap := s.source.GetStatus().AsMap()
	payload, err := sonnet.Marshal(snap)
	pool.PutStatusMap(snap)
	if err != nil {
		s.logger.Warn("monitor: snapshot marshal failed", log.Fields{"error": err.Error()})
		return
	}

	s.clientMu.RLock()
	defer s.clientMu.RUnlock()
	for _, c := range s.clients {
		c.send(payload)
	}
}

// wsClient is a single websocket connection receiving broadcast payloads.
// It never parses anything the client sends back; monitor is push-only.
type wsClient struct {
	id     int64
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
	once   sync.Once
}

func (c *wsClient) send(payload []byte) {
	select {
	case c.sendCh <- payload:
	case <-c.done:
	default:
		// Slow client; drop this tick rather than backing up the broadcaster.
	}
}

func (c *wsClient) Close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// readPump only exists to detect the peer closing the connection; onClose
// runs the server-side cleanup (removing the client from the broadcast map).
func (c *wsClient) readPump(onClose func()) {
	defer func() {
		onClose()
		c.Close()
	}()
	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(readWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump(logger *log.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case payload, ok := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Warn("monitor: write failed", log.Fields{"client": c.id, "error": err.Error()})
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
