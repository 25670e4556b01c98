package signal

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/skyfall/planning/internal/app"
	"github.com/skyfall/planning/internal/config"
	"github.com/skyfall/planning/internal/core"
	"github.com/skyfall/planning/internal/domain"
	"github.com/skyfall/planning/pkg/metrics"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the WebSocket side of the event protocol: upgrading,
// pumping frames and dispatching typed events to the orchestrator.
type Controller struct {
	Orch    *app.Orchestrator
	limiter *JoinRateLimiter

	upgrader   websocket.Upgrader
	sendBuffer int
	readLimit  int64
	pingPeriod time.Duration
}

func NewController(orch *app.Orchestrator, cfg *config.Config) *Controller {
	return &Controller{
		Orch:       orch,
		limiter:    NewJoinRateLimiter(cfg.JoinLimit, cfg.JoinInterval),
		sendBuffer: cfg.SendBuffer,
		readLimit:  cfg.ReadLimit,
		pingPeriod: cfg.PingPeriod,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(cfg.AllowedOrigins),
		},
	}
}

// originChecker allows non-browser clients (no Origin header) and any
// origin on the configured allowlist. "*" opens the endpoint up entirely.
func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		log.Warn().Str("module", "signal").Str("origin", origin).Msg("origin rejected")
		return false
	}
}

// WsConn wraps one client socket with a buffered outbound channel.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleWS upgrades the request and runs the connection until it drops.
// Each socket gets a fresh connection id; the client token from the
// session cookie is only used for rate limiting and logs.
func (ctl *Controller) HandleWS(c *gin.Context) {
	token := c.GetString("client_token")

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	cid := domain.ConnID(uuid.NewString())
	conn := &WsConn{conn: ws, send: make(chan core.Frame, ctl.sendBuffer)}

	ctl.Orch.Registry.Bind(cid, conn)
	metrics.OpenConnections.Inc()
	log.Info().Str("module", "signal").Str("cid", string(cid)).Str("client", token).Msg("connection open")

	go ctl.writePump(conn)
	go ctl.readPump(cid, token, conn)
}
