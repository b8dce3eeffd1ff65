package multiplayer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// WSClient is a Network that talks to a relay over WebSocket.
type WSClient struct {
	clientCore

	url         string
	dialer      *websocket.Dialer
	dialTimeout time.Duration

	wmu  sync.Mutex
	conn *websocket.Conn
}

// NewWSClient creates a client for the relay at url
// (for example ws://localhost:8080/play). Connect dials it.
func NewWSClient(url string, dialTimeout time.Duration, logger *log.Logger) *WSClient {
	if dialTimeout <= 0 {
		dialTimeout = 5 * time.Second
	}
	c := &WSClient{
		url:         url,
		dialer:      websocket.DefaultDialer,
		dialTimeout: dialTimeout,
	}
	c.setup(logger, c.writeFrame)
	return c
}

// Connect dials the relay and starts the reader goroutine.
func (c *WSClient) Connect(ctx context.Context) error {
	if c.url == "" {
		return ErrNotConfigured
	}
	if c.Connected() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("multiplayer: dial %s: %w", c.url, err)
	}
	conn.SetReadLimit(maxFrameSize)

	c.wmu.Lock()
	c.conn = conn
	c.wmu.Unlock()
	c.setConnected()

	c.logger.Info("connected to relay", "url", c.url)
	go c.readLoop(conn)
	return nil
}

func (c *WSClient) readLoop(conn *websocket.Conn) {
	defer c.disconnected()

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			c.logger.Debug("read loop stopped", "err", err)
			return
		}
		if mt != websocket.BinaryMessage {
			continue
		}
		f, err := DecodeFrame(data)
		if err != nil {
			c.logger.Debug("dropping frame", "err", err)
			continue
		}
		c.dispatch(f)
	}
}

func (c *WSClient) writeFrame(f Frame) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck // surfaced by WriteMessage
	return c.conn.WriteMessage(websocket.BinaryMessage, EncodeFrame(f))
}

// Close leaves any match and closes the connection.
func (c *WSClient) Close() error {
	_ = c.LeaveMatch() //nolint:errcheck // closing anyway

	c.wmu.Lock()
	conn := c.conn
	c.conn = nil
	c.wmu.Unlock()
	if conn == nil {
		return nil
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)) //nolint:errcheck // peer may be gone
	c.disconnected()
	return conn.Close()
}

var _ Network = (*WSClient)(nil)
