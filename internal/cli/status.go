package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/logicalx/logicalx/internal/app/engagement"
	"github.com/logicalx/logicalx/internal/domain"
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(tasksCmd)
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"profile"},
	Short:   "Show level, XP, streak and badges",
	RunE:    runStatus,
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List today's daily tasks",
	RunE:  runTasks,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := openDaemon(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	printStatus(cmd.OutOrStdout(), d.Session.Snapshot())
	return nil
}

func printStatus(out io.Writer, st engagement.State) {
	s := st.Stats
	who := s.Name
	if !st.Authenticated {
		who += dimStyle.Render(" (signed out)")
	}
	fmt.Fprintln(out, titleStyle.Render(who))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Plan\t%s\n", s.Plan())
	fmt.Fprintf(w, "Level\t%d\n", s.Level)
	fmt.Fprintf(w, "XP\t%d\n", s.XP)
	fmt.Fprintf(w, "Progress\t%s\n", levelLine(s.Level, st.ProgressPct, st.XPToNext, s.Level >= domain.MaxLevel))
	fmt.Fprintf(w, "Streak\t%d day(s)\n", s.Streak)
	fmt.Fprintf(w, "Solved\t%d (%.0f%% correct)\n", s.SolvedCount, s.Accuracy())
	w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, titleStyle.Render("Badges"))
	for _, b := range engagement.Badges() {
		mark := dimStyle.Render("  locked")
		if s.HasBadge(b.ID) {
			mark = goodStyle.Render("  earned")
		}
		fmt.Fprintf(out, "  %s %-14s %s%s\n", b.Icon, b.Name, b.Description, mark)
	}
}

func runTasks(cmd *cobra.Command, args []string) error {
	d, err := openDaemon(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	st := d.Session.Snapshot()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("Daily tasks for "+st.Today))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDIFFICULTY\tREWARD\tSTATUS")
	for _, t := range st.Tasks {
		status := "open"
		switch {
		case t.Completed:
			status = "done"
		case engagement.CheckAccess(st.Stats.Plan(), t.Difficulty) != nil:
			status = "pro only"
		}
		fmt.Fprintf(w, "%s\t%s\t%d XP\t%s\n", t.ID, t.Difficulty, t.Difficulty.XPReward(), status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if domain.AllCompleted(st.Tasks) {
		fmt.Fprintln(out, goodStyle.Render(fmt.Sprintf("All done for today. Streak: %d", st.Stats.Streak)))
	}
	return nil
}
