package main

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/hockey-pong/internal/config"
	"github.com/vovakirdan/hockey-pong/internal/multiplayer"
	"github.com/vovakirdan/hockey-pong/internal/platform/tui"
)

var flagMenuRelay string

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start hockey with a menu",
	Long: `Start hockey in interactive menu mode.

Pick a local mode, an online match or the match history. After a match
you return to the menu. Online play needs a relay URL, from --relay,
HOCKEY_RELAY_URL or the config file.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select
  Tab          - Match history
  Q            - Quit

Examples:
  hockey menu
  hockey menu --fps 30
  hockey menu --relay ws://example.com:8080/play`,
	RunE: runMenu,
}

func init() {
	menuCmd.Flags().StringVar(&flagMenuRelay, "relay", "", "WebSocket relay URL (overrides the config)")
}

func runMenu(_ *cobra.Command, _ []string) error {
	logger, closeLog := newLogger(true)
	defer closeLog()

	gameCfg := loadConfig(logger)

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	player := openAudio(gameCfg.Audio, logger)
	defer player.Close()

	network := newNetwork(flagMenuRelay, gameCfg.Network, logger)
	defer network.Close()

	return tui.RunSession(runtimeConfig(), tui.SessionOptions{
		Store:      store,
		Network:    network,
		Audio:      player,
		Username:   username(),
		Logger:     logger,
		SaveOnline: true,
	})
}

// newNetwork returns a relay client for url, or for the configured relay
// when url is empty. Without any relay it returns Offline.
func newNetwork(url string, cfg config.NetworkConfig, logger *log.Logger) multiplayer.Network {
	if url == "" {
		url = cfg.RelayURL
	}
	if url == "" {
		return multiplayer.Offline{}
	}
	return multiplayer.NewWSClient(url, cfg.DialTimeout, logger)
}
