package server

import (
	"net/http"
	"time"

	"autoref-server/internal/domain"
	"autoref-server/internal/engine"
	"autoref-server/internal/network"
	"autoref-server/pkg/api"
	"autoref-server/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// MonitorClient - посредник между Websocket монитора и судьей.
type MonitorClient struct {
	ID      string
	Referee *engine.Referee
	Hub     *network.Broadcaster
	Conn    *websocket.Conn
	Send    chan api.MatchEvent

	limiter *rate.Limiter
	log     *logrus.Entry
}

func NewMonitorClient(referee *engine.Referee, hub *network.Broadcaster, conn *websocket.Conn, commandRate float64) *MonitorClient {
	id := uuid.NewString()
	c := &MonitorClient{
		ID:      id,
		Referee: referee,
		Hub:     hub,
		Conn:    conn,
		limiter: rate.NewLimiter(rate.Limit(commandRate), 1),
		log: logger.Log.WithFields(logrus.Fields{
			"component": "monitor",
			"client_id": id,
		}),
	}
	// Регистрируемся сразу: события не должны теряться до старта пампов
	c.Send = hub.Register(id)
	return c
}

// readPump читает команды тренера
func (c *MonitorClient) readPump() {
	defer func() {
		c.Hub.Unregister(c.ID)
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection")
		}
		c.log.Info("Monitor disconnected")
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.log.WithError(err).Warn("failed to set pong read deadline")
		}
		return nil
	})

	c.log.Info("Monitor connected")

	for {
		var cmd api.TrainerCommand
		if err := c.Conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Error("WS error")
			}
			break
		}
		c.handleCommand(cmd)
	}
}

func (c *MonitorClient) handleCommand(cmd api.TrainerCommand) {
	if !c.limiter.Allow() {
		c.reject("command rate limit exceeded")
		return
	}

	typ := domain.ParseCommand(cmd.Action)
	if typ == domain.CommandUnknown {
		c.reject("unknown action " + cmd.Action)
		return
	}

	internal := domain.InternalCommand{
		Type:    typ,
		Source:  c.ID,
		Payload: cmd.Payload,
	}
	// ABORT действует сразу, не дожидаясь кадра физики
	if typ == domain.CommandAbort {
		c.log.Warn("Abort requested by monitor")
		c.Referee.Abort()
		return
	}
	if err := c.Referee.SubmitCommand(internal); err != nil {
		c.reject(err.Error())
	}
}

func (c *MonitorClient) reject(msg string) {
	c.log.WithField("reason", msg).Warn("Trainer command rejected")
	c.Hub.SendTo(c.ID, api.MatchEvent{
		ID:      uuid.NewString(),
		MatchID: c.Referee.ID,
		Type:    api.EventError,
		Message: msg,
	})
}

// writePump отправляет события монитору + Ping
func (c *MonitorClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				c.log.WithError(err).Debug("write json message failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
