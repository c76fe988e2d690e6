package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/logicalx/logicalx/internal/app/engagement"
)

func init() {
	leaderboardCmd.Flags().IntVarP(&leaderboardLimit, "limit", "n", 10, "Number of players to show")
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(plansCmd)
}

var leaderboardLimit int

var leaderboardCmd = &cobra.Command{
	Use:     "leaderboard",
	Aliases: []string{"top"},
	Short:   "Show the top players",
	RunE:    runLeaderboard,
}

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List subscription plans",
	RunE:  runPlans,
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	if leaderboardLimit < 1 {
		return fmt.Errorf("--limit must be positive")
	}

	d, err := openDaemon(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	entries, err := d.Board.Top(cmd.Context(), leaderboardLimit)
	if err != nil {
		return err
	}
	me := d.Session.Snapshot()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tPLAYER\tXP\t")
	for _, e := range entries {
		name := e.Name
		if me.Authenticated && e.Name == me.Stats.Name {
			name = accentStyle.Render(name + " (you)")
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", e.Rank, name, e.XP, e.Badge)
	}
	return w.Flush()
}

func runPlans(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, p := range engagement.Plans() {
		title := fmt.Sprintf("%s  %s %s", p.Title, p.Price, p.Period)
		if p.Highlight {
			title = accentStyle.Render(title + "  ★ most popular")
		} else {
			title = titleStyle.Render(title)
		}
		fmt.Fprintln(out, title)
		fmt.Fprintf(out, "  %s  %s\n", dimStyle.Render(string(p.ID)), p.Description)
		fmt.Fprintf(out, "  - %s\n\n", strings.Join(p.Features, "\n  - "))
	}
	return nil
}
