package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/hockey-pong/internal/multiplayer"
	"github.com/vovakirdan/hockey-pong/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagWSAddr      string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH server and WebSocket relay",
	Long: `Serve hockey over SSH and run the relay for online matches.

Each SSH connection gets its own session with the mode menu. SSH players
and 'hockey online' clients share one relay, so they can play each other.
Match results are stored in the server's database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.hockey/host_key

Examples:
  hockey serve                           # SSH on :23234, relay on :8080
  hockey serve --ssh :2222 --ws :9000
  hockey serve --ssh ""                  # relay only
  hockey serve --db ./matches.db

Users can connect with:
  ssh localhost -p 23234
  hockey online --relay ws://localhost:8080/play`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (empty disables SSH)")
	serveCmd.Flags().StringVar(&flagWSAddr, "ws", ":8080", "WebSocket relay address (empty disables the endpoint)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) error {
	if flagSSHAddr == "" && flagWSAddr == "" {
		return errors.New("nothing to serve: both --ssh and --ws are empty")
	}

	logger, closeLog := newLogger(false)
	defer closeLog()

	gameCfg := loadConfig(logger)

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	relayCfg := multiplayer.RelayConfigFrom(gameCfg.Network)
	relayCfg.TickRate = flagFPS
	relay := multiplayer.NewRelay(relayCfg, multiplayer.NewSessionRegistry(), logger)
	if store != nil {
		relay.SetResultSaver(store)
	}
	relay.Start()
	defer relay.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if flagWSAddr != "" {
		ws := multiplayer.NewServer(relay, logger)
		g.Go(func() error {
			return ws.ListenAndServe(ctx, flagWSAddr)
		})
	}

	if flagSSHAddr != "" {
		cfg := tui.DefaultSSHServerConfig()
		cfg.Address = flagSSHAddr
		cfg.HostKeyPath = flagHostKey
		cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
		cfg.TickRate = flagFPS

		server, err := tui.NewSSHServer(cfg, store, relay, logger)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return server.ListenAndServe(ctx)
		})
		logger.Info("connect with", "command", "ssh localhost -p "+portOf(flagSSHAddr))
	}

	logger.Info("press Ctrl+C to stop")
	return g.Wait()
}

// portOf returns the port part of a listen address like ":23234".
func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}
