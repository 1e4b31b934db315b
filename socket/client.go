package socket

import (
	"fmt"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-arena-server/codec"
	"github.com/beka-birhanu/vinom-arena-server/service/i"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type client struct {
	id    uuid.UUID
	conn  *websocket.Conn
	codec codec.Codec
	send  chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, c codec.Codec, sendBuffer int) *client {
	return &client{
		id:    uuid.New(),
		conn:  conn,
		codec: c,
		send:  make(chan []byte, sendBuffer),
		done:  make(chan struct{}),
	}
}

// enqueue queues frame without blocking. It reports false when the client is
// closed or its queue is full.
func (c *client) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// close signals the write pump to send a close frame and hang up.
func (c *client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *client) messageType() int {
	if c.codec.FrameType() == codec.BinaryFrame {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

func (c *client) readPump(s *ServerSocketManager) {
	defer func() {
		s.unregister(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(s.heartbeatExpiration))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(s.heartbeatExpiration))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug(fmt.Sprintf("client %s read: %s", c.id, err))
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(s.heartbeatExpiration))
		s.handleFrame(c, frame)
	}
}

func (c *client) writePump(pingInterval, writeTimeout time.Duration, logger i.Logger) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(c.messageType(), frame); err != nil {
				logger.Debug(fmt.Sprintf("client %s write: %s", c.id, err))
				c.close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Debug(fmt.Sprintf("client %s ping: %s", c.id, err))
				c.close()
				return
			}

		case <-c.done:
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
			return
		}
	}
}
