package ws

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Datash/backend/internal/bridge"
	"github.com/GriffinCanCode/Datash/backend/internal/domain/notify"
	"github.com/GriffinCanCode/Datash/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Datash/backend/internal/shared/id"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Bridge accepts surfaces and their calls
type Bridge interface {
	Attach(s bridge.Surface)
	Detach(s bridge.Surface)
	Handle(s bridge.Surface, call bridge.Call)
}

// Watcher streams notification updates
type Watcher interface {
	Watch(fn func(notify.Notification)) func()
}

// Options tunes connections
type Options struct {
	// MaxMessageBytes bounds one inbound frame; completeTransfer payloads are the largest
	MaxMessageBytes int64
	// AllowedOrigins may upgrade; empty admits only the host's own origin
	AllowedOrigins []string
}

// Handler manages bridge WebSocket connections
type Handler struct {
	bridge   Bridge
	watcher  Watcher
	upgrader websocket.Upgrader
	policy   *bluemonday.Policy
	opts     Options
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler
func NewHandler(b Bridge, w Watcher, opts Options, logger *zap.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxMessageBytes <= 0 {
		opts.MaxMessageBytes = 64 << 20
	}

	h := &Handler{
		bridge:  b,
		watcher: w,
		policy:  bluemonday.StrictPolicy(),
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  32 << 10,
		WriteBufferSize: 32 << 10,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin admits non-browser clients (no Origin header), listed origins
// and, with no list, only the host's own origin
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	if len(h.opts.AllowedOrigins) == 0 {
		if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
			return true
		}
	}

	h.logger.Warn("Rejected bridge connection from foreign origin", zap.String("origin", origin))
	return false
}

// HandleConnection handles WebSocket upgrade and messages
func (h *Handler) HandleConnection(c *gin.Context) {
	wsConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	conn := &surface{
		id:      id.NewConnID(),
		ws:      wsConn,
		policy:  h.policy,
		metrics: h.metrics,
	}
	log := h.logger.With(zap.String("conn_id", conn.id.String()))

	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()
	defer wsConn.Close()

	done := make(chan struct{})
	defer close(done)

	h.bridge.Attach(conn)
	defer h.bridge.Detach(conn)

	if h.watcher != nil {
		stop := h.watcher.Watch(func(n notify.Notification) {
			if err := conn.write(Frame{Type: TypeNotification, Notification: &n}); err != nil {
				log.Debug("Failed to forward notification", zap.Error(err))
			}
		})
		defer stop()
	}

	conn.write(Frame{
		Type:      TypeSystem,
		Message:   "Connected to Datash bridge",
		Timestamp: time.Now().Unix(),
	})
	log.Info("Bridge surface connected", zap.String("remote", c.ClientIP()))

	wsConn.SetReadLimit(h.opts.MaxMessageBytes)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		return wsConn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go conn.keepAlive(done)

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("WebSocket read error", zap.Error(err))
			}
			break
		}

		var frame Frame
		if err := sonic.Unmarshal(data, &frame); err != nil {
			h.metrics.RecordWSMessage("in", "malformed")
			conn.Reject(c.Request.Context(), "malformed frame")
			continue
		}
		h.metrics.RecordWSMessage("in", frame.Type)

		switch frame.Type {
		case TypeCall:
			h.bridge.Handle(conn, bridge.Call{Method: frame.Method, Args: frame.Args})
		default:
			conn.Reject(c.Request.Context(), "unknown message type")
		}
	}

	log.Info("Bridge surface disconnected")
}

// surface is one connection acting as the bridge surface
type surface struct {
	id      id.ConnID
	ws      *websocket.Conn
	writeMu sync.Mutex
	policy  *bluemonday.Policy
	metrics *monitoring.Metrics
}

func (s *surface) Evaluate(ctx context.Context, script string) error {
	return s.write(Frame{Type: TypeEvaluate, Script: script})
}

func (s *surface) Toast(ctx context.Context, message string, success bool) error {
	return s.write(Frame{
		Type:      TypeToast,
		Message:   s.policy.Sanitize(message),
		Sticky:    !success,
		Timestamp: time.Now().Unix(),
	})
}

func (s *surface) Pong(ctx context.Context) error {
	return s.write(Frame{Type: TypePong, Timestamp: time.Now().Unix()})
}

func (s *surface) Reject(ctx context.Context, message string) error {
	return s.write(Frame{
		Type:      TypeError,
		Message:   s.policy.Sanitize(message),
		Timestamp: time.Now().Unix(),
	})
}

func (s *surface) write(f Frame) error {
	data, err := sonic.Marshal(f)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	s.metrics.RecordWSMessage("out", f.Type)
	return nil
}

func (s *surface) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
