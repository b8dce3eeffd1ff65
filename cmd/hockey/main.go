// hockey is a two-paddle hockey pong game for the terminal.
//
// Usage:
//
//	hockey list              - List the game modes
//	hockey play [mode]       - Play a local match (default: hockey)
//	hockey menu              - Pick modes, online play and history from a menu
//	hockey online            - Play over a WebSocket relay
//	hockey serve             - Serve the game over SSH and run the relay
//	hockey scores            - Show match history and standings
//
// Global flags:
//
//	--fps <rate>          - Set tick rate (default: 60)
//	--seed <value>        - Set RNG seed for reproducible matches
//	--db <path>           - Set database path (default: ~/.hockey/matches.db)
//	--config <path>       - Load a custom hockey.yaml
//	--difficulty <preset> - easy, normal or hard
//	--log-level <level>   - debug, info, warn or error
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/hockey-pong/internal/config"
	"github.com/vovakirdan/hockey-pong/internal/core"
	"github.com/vovakirdan/hockey-pong/internal/hockey"
	"github.com/vovakirdan/hockey-pong/internal/storage"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagDifficulty string
	flagLogLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hockey",
	Short: "Hockey Pong - two sticks, one puck, in your terminal",
	Long: `Hockey Pong is a terminal take on table hockey: bounce the puck past
the other stick to score, first to the win score takes the match.

Available commands:
  list     - Show the game modes
  play     - Play a local match
  menu     - Interactive menu
  online   - Play someone over a relay
  serve    - Start the SSH server and WebSocket relay
  scores   - View match history

Examples:
  hockey play
  hockey play hockey-2p --difficulty hard
  hockey online --relay ws://localhost:8080/play --host
  hockey serve --ssh :23234 --ws :8080`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		hockey.SetConfigPath(flagConfig)
		hockey.SetDifficultyPreset(flagDifficulty)
	},
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.hockey/matches.db", "Path to match database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom hockey.yaml")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(onlineCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
}

// newLogger builds the root logger. A full-screen program owns the
// terminal, so it logs to ~/.hockey/hockey.log instead of stderr.
func newLogger(toFile bool) (*log.Logger, func()) {
	var w io.Writer = os.Stderr
	closer := func() {}

	if toFile {
		w = io.Discard
		if home, err := os.UserHomeDir(); err == nil {
			dir := filepath.Join(home, ".hockey")
			if err := os.MkdirAll(dir, 0o755); err == nil {
				f, err := os.OpenFile(filepath.Join(dir, "hockey.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
				if err == nil {
					w = f
					closer = func() { f.Close() } //nolint:errcheck // log file
				}
			}
		}
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "hockey",
	})
	if level, err := log.ParseLevel(flagLogLevel); err == nil {
		logger.SetLevel(level)
	}
	return logger, closer
}

// runtimeConfig sizes the screen from the terminal.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     seed,
	}
}

// loadConfig reads the game configuration the same way a game does, for
// the audio and network sections.
func loadConfig(logger *log.Logger) config.HockeyConfig {
	cfg, err := config.LoadHockey(flagConfig)
	if err != nil {
		logger.Warn("could not load config, using defaults", "error", err)
		return config.DefaultHockeyConfig()
	}
	return cfg
}

// openStore opens the match database. Games still run without it.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open match database", "path", flagDBPath, "error", err)
		return nil
	}
	return store
}

func username() string {
	for _, key := range []string{"USER", "USERNAME"} {
		if name := os.Getenv(key); name != "" {
			return name
		}
	}
	return "Player 1"
}
