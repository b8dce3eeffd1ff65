package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/hockey-pong/internal/audio"
	"github.com/vovakirdan/hockey-pong/internal/config"
	"github.com/vovakirdan/hockey-pong/internal/platform/tui"
	"github.com/vovakirdan/hockey-pong/internal/registry"
)

var flagPlayers [2]string

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play a local match",
	Long: `Start a local match. The mode is 'hockey' (against the computer,
the default) or 'hockey-2p' (two players on one keyboard).

Controls:
  W/S          - Left stick
  Up/Down      - Right stick (2-player)
  Mouse drag   - Steer the stick on that half of the rink
  Space/P      - Start or pause
  R            - New match
  +/-          - Puck speed
  G            - Stick shape
  Esc/B        - Back (while paused)
  Q/Ctrl+C     - Quit

Examples:
  hockey play
  hockey play hockey-2p
  hockey play --difficulty hard
  hockey play --config ./my-hockey.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPlayers[0], "p1", "", "Name of the left player")
	playCmd.Flags().StringVar(&flagPlayers[1], "p2", "", "Name of the right player")
}

func runPlay(_ *cobra.Command, args []string) error {
	id := "hockey"
	if len(args) == 1 {
		id = args[0]
	}
	if !registry.Exists(id) {
		return fmt.Errorf("unknown mode %q (run 'hockey list' to see the modes)", id)
	}

	logger, closeLog := newLogger(true)
	defer closeLog()

	cfg := runtimeConfig()
	game, err := tui.CreateGame(id, cfg)
	if err != nil {
		return err
	}
	if flagPlayers[0] == "" {
		flagPlayers[0] = username()
	}
	game.SetPlayerNames(flagPlayers[0], flagPlayers[1])

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	player := openAudio(loadConfig(logger).Audio, logger)
	defer player.Close()

	logger.Info("starting local match", "mode", id, "seed", cfg.Seed)
	return tui.Run(tui.NewGameModel(game, cfg, tui.GameOptions{
		Store:  store,
		Audio:  player,
		Logger: logger,
	}))
}

// openAudio opens the sound player, falling back to silence.
func openAudio(cfg config.AudioConfig, logger *log.Logger) audio.Player {
	player, err := audio.Open(cfg, logger)
	if err != nil {
		if errors.Is(err, audio.ErrNoDevice) {
			logger.Info("no audio device, playing silently", "error", err)
		} else {
			logger.Warn("could not open audio", "error", err)
		}
	}
	if player == nil {
		return audio.Silent{}
	}
	return player
}
