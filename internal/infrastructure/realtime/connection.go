package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 64
)

// ErrSlowConsumer is returned by Send when the outbound buffer is full.
// The hub treats it like any other send failure and prunes the
// connection.
var ErrSlowConsumer = errors.New("realtime: outbound buffer full")

// ErrConnClosed is returned by Send after Close.
var ErrConnClosed = errors.New("realtime: connection closed")

// WSConn adapts a gorilla websocket to the hub's Conn interface. All
// socket writes happen on a single pump goroutine; Send only enqueues.
type WSConn struct {
	socket *websocket.Conn

	out  chan []byte
	done chan struct{}
	once sync.Once
}

func NewWSConn(socket *websocket.Conn) *WSConn {
	c := &WSConn{
		socket: socket,
		out:    make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
	socket.SetReadDeadline(time.Now().Add(pongWait))
	socket.SetPongHandler(func(string) error {
		return socket.SetReadDeadline(time.Now().Add(pongWait))
	})
	go c.writePump()
	return c
}

// Send enqueues one frame for delivery. It never blocks: a full buffer
// fails fast so the hub can prune the laggard.
func (c *WSConn) Send(frame []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.out <- frame:
		return nil
	default:
		return ErrSlowConsumer
	}
}

// Close stops the write pump and closes the underlying socket. Safe to
// call more than once.
func (c *WSConn) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *WSConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.socket.Close()
	}()

	for {
		select {
		case frame := <-c.out:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			c.socket.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
