package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/hockey-pong/internal/multiplayer"
	"github.com/vovakirdan/hockey-pong/internal/platform/tui"
)

var (
	flagRelay string
	flagCode  string
	flagHost  bool
	flagName  string
)

var onlineCmd = &cobra.Command{
	Use:   "online",
	Short: "Play someone over a relay",
	Long: `Connect to a WebSocket relay and play a match against another player.

The host of a match runs the simulation and plays the left stick; the
player who joins steers the right one. Without --code or --host a menu
offers a quick match, a private game or joining by code.

Examples:
  hockey online --relay ws://localhost:8080/play
  hockey online --host                 # open a private game and share its code
  hockey online --code K7QX2M          # join a private game`,
	Args: cobra.NoArgs,
	RunE: runOnline,
}

func init() {
	onlineCmd.Flags().StringVar(&flagRelay, "relay", "", "WebSocket relay URL (default from HOCKEY_RELAY_URL or the config)")
	onlineCmd.Flags().StringVar(&flagCode, "code", "", "Join the private game with this code")
	onlineCmd.Flags().BoolVar(&flagHost, "host", false, "Host a private game")
	onlineCmd.Flags().StringVar(&flagName, "name", "", "Name shown to your opponent")
	onlineCmd.MarkFlagsMutuallyExclusive("code", "host")
}

func runOnline(_ *cobra.Command, _ []string) error {
	logger, closeLog := newLogger(true)
	defer closeLog()

	gameCfg := loadConfig(logger)
	network := newNetwork(flagRelay, gameCfg.Network, logger)
	if _, offline := network.(multiplayer.Offline); offline {
		return errors.New("no relay configured: pass --relay or set HOCKEY_RELAY_URL")
	}
	defer network.Close()

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	player := openAudio(gameCfg.Audio, logger)
	defer player.Close()

	name := flagName
	if name == "" {
		name = username()
	}

	opts := tui.OnlineOptions{
		Network:        network,
		Name:           name,
		Store:          store,
		Audio:          player,
		Logger:         logger,
		BroadcastEvery: gameCfg.Network.BroadcastEvery,
	}
	switch {
	case flagCode != "":
		opts.Join = &multiplayer.MatchOptions{Mode: multiplayer.JoinCode, Code: strings.ToUpper(flagCode)}
	case flagHost:
		opts.Join = &multiplayer.MatchOptions{Mode: multiplayer.JoinHost}
	}

	return tui.RunOnline(runtimeConfig(), opts)
}
