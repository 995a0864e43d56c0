// Package wschat serves a bot.Handler over WebSocket. Each connection is its
// own chat: frames in are {"text": ...} or {"callback": ...}, frames out are
// bot.Reply objects.
package wschat

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/japaniel/magistr/pkg/bot"
)

const (
	writeTimeout = 10 * time.Second
	sendBuffer   = 64
	readLimit    = 64 << 10
)

// Incoming is one client frame.
type Incoming struct {
	Text     string `json:"text,omitempty"`
	Callback string `json:"callback,omitempty"`
	UserName string `json:"user_name,omitempty"`
}

// Outgoing is one server frame. The first frame of a connection carries only
// the chat id.
type Outgoing struct {
	bot.Reply
	ChatID int64 `json:"chat_id,omitempty"`
}

// Server accepts WebSocket chats.
type Server struct {
	handler bot.Handler
	logger  *zap.Logger

	// OriginPatterns are the cross-origin hosts allowed to connect. Same-origin
	// requests are always accepted.
	OriginPatterns []string

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	chatID int64
	conn   *websocket.Conn
	send   chan []byte

	mu     sync.Mutex
	closed bool
}

// enqueue reports false when the send buffer is full.
func (c *client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *client) close(code websocket.StatusCode, reason string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	_ = c.conn.Close(code, reason)
}

// NewServer creates a Server for handler.
func NewServer(handler bot.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{handler: handler, logger: logger, clients: make(map[*client]struct{})}
}

// ChatID derives a positive chat id from a random uuid.
func ChatID() int64 {
	id := uuid.New()
	return int64(binary.BigEndian.Uint64(id[:8]) &^ (1 << 63))
}

// Clients reports the number of open connections.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// ServeHTTP upgrades the request and runs the chat until either side closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.OriginPatterns})
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(readLimit)

	c := &client{chatID: ChatID(), conn: conn, send: make(chan []byte, sendBuffer)}
	log := s.logger.With(zap.Int64("chat_id", c.chatID))
	s.register(c)
	defer s.unregister(c)

	go s.writePump(c, log)
	s.push(c, Outgoing{ChatID: c.chatID}, log)
	s.readPump(r.Context(), c, log)
}

func (s *Server) register(c *client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	n := len(s.clients)
	s.mu.Unlock()
	s.logger.Info("websocket chat connected", zap.Int64("chat_id", c.chatID), zap.Int("total", n))
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	n := len(s.clients)
	s.mu.Unlock()
	c.close(websocket.StatusNormalClosure, "")
	s.logger.Info("websocket chat disconnected", zap.Int64("chat_id", c.chatID), zap.Int("total", n))
}

func (s *Server) writePump(c *client, log *zap.Logger) {
	for msg := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := c.conn.Write(ctx, websocket.MessageText, msg)
		cancel()
		if err != nil {
			log.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}

func (s *Server) readPump(ctx context.Context, c *client, log *zap.Logger) {
	reply := func(r bot.Reply) { s.push(c, Outgoing{Reply: r}, log) }
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				log.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		var in Incoming
		if err := json.Unmarshal(data, &in); err != nil || (in.Text == "" && in.Callback == "") {
			reply(bot.Reply{Text: `❌ Ожидается {"text": "..."} или {"callback": "..."}`})
			continue
		}
		s.handler.Handle(ctx, bot.Update{
			ChatID:   c.chatID,
			UserName: in.UserName,
			Text:     in.Text,
			Callback: in.Callback,
		}, reply)
	}
}

// push queues a frame; a client that cannot keep up is disconnected.
func (s *Server) push(c *client, out Outgoing, log *zap.Logger) {
	data, err := json.Marshal(out)
	if err != nil {
		log.Error("encode websocket frame", zap.Error(err))
		return
	}
	if !c.enqueue(data) {
		log.Warn("websocket client too slow, disconnecting")
		c.close(websocket.StatusPolicyViolation, "too slow")
	}
}

// Close disconnects every client.
func (s *Server) Close() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()
	for _, c := range clients {
		c.close(websocket.StatusGoingAway, "server shutting down")
	}
}

// ListenAndServe serves s on addr under /ws, with /healthz for probes, until
// ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, s *Server) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return Serve(ctx, ln, s)
}

// Serve is ListenAndServe on an existing listener.
func Serve(ctx context.Context, ln net.Listener, s *Server) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", s)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("websocket chat listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
