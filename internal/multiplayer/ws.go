package multiplayer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 5 * time.Second
	maxFrameSize   = 4096
	sessionBufSize = 64
)

// PlayPath is where the relay accepts WebSocket connections.
const PlayPath = "/play"

// Server exposes a Relay over WebSocket.
type Server struct {
	relay    *Relay
	logger   *log.Logger
	upgrader websocket.Upgrader
	srv      *http.Server
}

// NewServer creates a WebSocket front end for relay.
func NewServer(relay *Relay, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		relay:  relay,
		logger: logger.WithPrefix("ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handler returns the HTTP routes of the relay.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(PlayPath, s.handlePlay)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting WebSocket relay", "address", addr, "path", PlayPath)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("multiplayer: serve %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	conn.SetReadLimit(maxFrameSize)

	sess := &wsSession{
		ChannelSession: NewChannelSession(SessionID(uuid.NewString()), sessionBufSize),
		conn:           conn,
	}
	sessions := s.relay.Sessions()
	sessions.Register(sess)
	s.logger.Info("session connected", "session", sess.ID(), "remote", r.RemoteAddr)

	go sess.writePump(s.logger)

	defer func() {
		s.relay.Send(SessionDisconnectedMsg{SessionID: sess.ID()})
		sessions.Unregister(sess.ID())
		sess.Close()
		conn.Close()
		s.logger.Info("session disconnected", "session", sess.ID())
	}()

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.BinaryMessage {
			continue
		}
		f, err := DecodeFrame(data)
		if err != nil {
			s.logger.Debug("dropping frame", "session", sess.ID(), "err", err)
			continue
		}
		s.relay.Deliver(sess.ID(), f)
	}
}

// wsSession is a ChannelSession drained into a WebSocket by one writer
// goroutine. The reader lives in Server.handlePlay.
type wsSession struct {
	*ChannelSession
	conn *websocket.Conn
}

func (s *wsSession) writePump(logger *log.Logger) {
	for {
		select {
		case f := <-s.Frames():
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck // surfaced by WriteMessage
			if err := s.conn.WriteMessage(websocket.BinaryMessage, EncodeFrame(f)); err != nil {
				logger.Debug("write failed", "session", s.ID(), "err", err)
				s.Close()
				return
			}
		case <-s.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)) //nolint:errcheck // peer may be gone
			return
		}
	}
}
