package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/hockey-pong/internal/hockey"
	"github.com/vovakirdan/hockey-pong/internal/storage"
)

var (
	flagScoresLimit  int
	flagScoresOnline bool
	flagScoresPlayer string
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show match history and standings",
	Long: `Display recent matches, per-mode totals and the win standings.

Examples:
  hockey scores
  hockey scores --limit 25
  hockey scores --online
  hockey scores --player alice`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of matches to show")
	scoresCmd.Flags().BoolVar(&flagScoresOnline, "online", false, "Show online matches instead of local ones")
	scoresCmd.Flags().StringVar(&flagScoresPlayer, "player", "", "Show the online matches of one player")
}

func runScores(_ *cobra.Command, _ []string) error {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening match database: %w", err)
	}
	defer store.Close()

	if flagScoresOnline || flagScoresPlayer != "" {
		return printOnline(store)
	}

	matches, err := store.RecentMatches(flagScoresLimit)
	if err != nil {
		return fmt.Errorf("retrieving matches: %w", err)
	}

	fmt.Println("Recent matches")
	fmt.Println()
	if len(matches) == 0 {
		fmt.Println("No matches recorded yet.")
		fmt.Println()
		fmt.Println("Play 'hockey play' to record the first one!")
		return nil
	}

	fmt.Printf("  %-16s  %-9s  %-24s  %-5s  %s\n", "Date", "Mode", "Players", "Score", "Winner")
	fmt.Printf("  %-16s  %-9s  %-24s  %-5s  %s\n", "----", "----", "-------", "-----", "------")
	for _, m := range matches {
		fmt.Printf("  %-16s  %-9s  %-24s  %-5s  %s\n",
			m.CreatedAt.Format("2006-01-02 15:04"),
			m.Mode,
			m.Player1+" vs "+m.Player2,
			fmt.Sprintf("%d-%d", m.Score1, m.Score2),
			m.WinnerName(),
		)
	}

	fmt.Println()
	for _, mode := range []hockey.Mode{hockey.ModeSinglePlayer, hockey.ModeTwoPlayer} {
		st, err := store.Stats(mode.String())
		if err != nil || st.Matches == 0 {
			continue
		}
		fmt.Printf("%s: %d matches, left %d / right %d, %d goals\n",
			st.Mode, st.Matches, st.Player1Wins, st.Player2Wins, st.Goals)
	}

	standings, err := store.Leaderboard(flagScoresLimit)
	if err != nil || len(standings) == 0 {
		return nil
	}
	fmt.Println()
	fmt.Println("Standings")
	fmt.Println()
	fmt.Printf("  %-4s  %-20s  %-4s  %s\n", "Rank", "Player", "Won", "Lost")
	fmt.Printf("  %-4s  %-20s  %-4s  %s\n", "----", "------", "---", "----")
	for i, p := range standings {
		fmt.Printf("  %-4d  %-20s  %-4d  %d\n", i+1, p.Name, p.Wins, p.Losses)
	}
	return nil
}

func printOnline(store *storage.Store) error {
	var (
		results []storage.OnlineMatchResult
		err     error
	)
	if flagScoresPlayer != "" {
		results, err = store.PlayerMatchHistory(flagScoresPlayer, flagScoresLimit)
	} else {
		results, err = store.RecentOnlineMatches(flagScoresLimit)
	}
	if err != nil {
		return fmt.Errorf("retrieving online matches: %w", err)
	}

	fmt.Println("Online matches")
	fmt.Println()
	if len(results) == 0 {
		fmt.Println("No online matches recorded yet.")
		return nil
	}

	fmt.Printf("  %-16s  %-24s  %-5s  %-8s  %s\n", "Date", "Players", "Score", "Duration", "Ended")
	fmt.Printf("  %-16s  %-24s  %-5s  %-8s  %s\n", "----", "-------", "-----", "--------", "-----")
	for _, r := range results {
		fmt.Printf("  %-16s  %-24s  %-5s  %-8s  %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Player1Name+" vs "+r.Player2Name,
			fmt.Sprintf("%d-%d", r.Score1, r.Score2),
			fmt.Sprintf("%dm%02ds", r.Duration/60, r.Duration%60),
			r.EndReason,
		)
	}
	return nil
}
