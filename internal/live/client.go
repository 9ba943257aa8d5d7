package live

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hongminglow/bunny-bank/internal/view"
	"go.uber.org/zap"
)

var errClosed = errors.New("live: connection closed")

var _ view.Renderer = (*client)(nil)

// client is one websocket. Only the latest pending dashboard is kept.
type client struct {
	sid  string
	conn *websocket.Conn
	send chan view.Dashboard
	done chan struct{}
	once sync.Once
}

func newClient(sid string, conn *websocket.Conn) *client {
	return &client{
		sid:  sid,
		conn: conn,
		send: make(chan view.Dashboard, 1),
		done: make(chan struct{}),
	}
}

// Render queues d, replacing any dashboard not yet written.
func (c *client) Render(d view.Dashboard) error {
	for {
		select {
		case <-c.done:
			return errClosed
		case c.send <- d:
			return nil
		default:
			select {
			case <-c.send:
			default:
			}
		}
	}
}

func (c *client) writeLoop(ping time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(ping)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case d := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(d); err != nil {
				logger.Debug("websocket write failed", zap.String("session", c.sid), zap.Error(err))
				c.close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.close()
				return
			}
		}
	}
}

// readLoop drains client frames until the connection fails. Clients never
// send commands over the socket.
func (c *client) readLoop(timeout time.Duration) {
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(timeout))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.close()
			return
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		_ = c.conn.Close()
	})
}
