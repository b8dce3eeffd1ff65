package multiplayer

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// LocalClient is a Network bound to an in-process Relay. The SSH server
// gives one to every terminal session.
type LocalClient struct {
	clientCore

	relay   *Relay
	id      SessionID
	smu     sync.Mutex
	session *ChannelSession
}

// NewLocalClient creates a client that joins relay as session id.
func NewLocalClient(relay *Relay, id SessionID, logger *log.Logger) *LocalClient {
	c := &LocalClient{relay: relay, id: id}
	c.setup(logger, c.deliver)
	return c
}

// Connect registers the session with the relay.
func (c *LocalClient) Connect(_ context.Context) error {
	if c.relay == nil {
		return ErrNotConfigured
	}

	c.smu.Lock()
	defer c.smu.Unlock()
	if c.session != nil {
		return nil
	}
	c.session = NewChannelSession(c.id, sessionBufSize)
	c.relay.Sessions().Register(c.session)
	c.setConnected()

	go c.pump(c.session)
	return nil
}

func (c *LocalClient) pump(s *ChannelSession) {
	for {
		select {
		case f := <-s.Frames():
			c.dispatch(f)
		case <-s.Done():
			return
		}
	}
}

func (c *LocalClient) deliver(f Frame) error {
	c.smu.Lock()
	connected := c.session != nil
	c.smu.Unlock()
	if !connected {
		return ErrNotConnected
	}
	c.relay.Deliver(c.id, f)
	return nil
}

// Close leaves any match and unregisters the session.
func (c *LocalClient) Close() error {
	_ = c.LeaveMatch() //nolint:errcheck // closing anyway

	c.smu.Lock()
	s := c.session
	c.session = nil
	c.smu.Unlock()
	if s == nil {
		return nil
	}

	c.relay.Send(SessionDisconnectedMsg{SessionID: c.id})
	c.relay.Sessions().Unregister(c.id)
	s.Close()
	c.disconnected()
	return nil
}

var _ Network = (*LocalClient)(nil)
