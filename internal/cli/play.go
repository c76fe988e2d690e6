package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/logicalx/logicalx/internal/app/engagement"
)

func init() {
	playCmd.Flags().IntVar(&playAnswer, "answer", 0, "Answer number (1-based); prompts when unset")
	rootCmd.AddCommand(playCmd)
}

var playAnswer int

var playCmd = &cobra.Command{
	Use:   "play [TASK_ID]",
	Short: "Play a daily task, or a practice puzzle when no task is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	d, err := openDaemon(cmd.Context())
	if err != nil {
		return err
	}
	defer d.Close()

	out := cmd.OutOrStdout()
	status := statusLine{w: cmd.ErrOrStderr()}
	status.working("generating puzzle...")

	var pv engagement.PuzzleView
	if len(args) == 1 {
		pv, err = d.Session.StartTask(cmd.Context(), args[0])
	} else {
		pv, err = d.Session.PlayNow(cmd.Context())
	}
	status.done()
	if err != nil {
		return err
	}

	printPuzzle(out, pv)

	choice := playAnswer
	if choice == 0 {
		choice, err = promptChoice(cmd.InOrStdin(), out, len(pv.Options))
		if err != nil {
			abandonPuzzle(d.Session)
			return err
		}
	}

	outcome, err := d.Session.Submit(choice - 1)
	if err != nil {
		abandonPuzzle(d.Session)
		return err
	}

	st := d.Session.Snapshot()
	printOutcome(out, outcome, st)
	for _, n := range d.Session.TakeNotices() {
		fmt.Fprintf(out, "%s %s\n", accentStyle.Render(n.Title), n.Body)
	}
	return d.Session.Acknowledge()
}

// abandonPuzzle drops the active puzzle after a failed answer so the
// original error reaches the user.
func abandonPuzzle(s *engagement.Session) {
	if err := s.Abandon(); err != nil {
		logger.Debug("abandon puzzle", zap.Error(err))
	}
}

func printPuzzle(out io.Writer, pv engagement.PuzzleView) {
	header := fmt.Sprintf("%s · %s · %d XP", pv.Difficulty, pv.Type, pv.XPReward)
	fmt.Fprintln(out, titleStyle.Render(header))
	fmt.Fprintln(out, pv.Question)
	if pv.CodeSnippet != "" {
		fmt.Fprintln(out, codeStyle.Render(pv.CodeSnippet))
	}
	for i, opt := range pv.Options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
	}
}

// promptChoice reads a 1-based option number from in.
func promptChoice(in io.Reader, out io.Writer, n int) (int, error) {
	scanner := newLineScanner(in)
	for {
		fmt.Fprintf(out, "Your answer [1-%d]: ", n)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("no answer given")
		}
		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err == nil && choice >= 1 && choice <= n {
			return choice, nil
		}
		fmt.Fprintln(out, dimStyle.Render("Please enter a number between 1 and "+strconv.Itoa(n)+"."))
	}
}

func printOutcome(out io.Writer, o engagement.Outcome, st engagement.State) {
	fmt.Fprintln(out)
	if o.Success {
		fmt.Fprintln(out, goodStyle.Render(fmt.Sprintf("Correct! +%d XP", o.XPGained)))
	} else {
		fmt.Fprintln(out, badStyle.Render("Incorrect."))
	}

	if st.Puzzle != nil && st.Puzzle.CorrectAnswerIndex != nil {
		idx := *st.Puzzle.CorrectAnswerIndex
		fmt.Fprintf(out, "Answer: %d) %s\n", idx+1, st.Puzzle.Options[idx])
		fmt.Fprintln(out, dimStyle.Render(st.Puzzle.Explanation))
	}
	if o.TaskCompleted {
		fmt.Fprintln(out, "Daily task completed.")
	}
	fmt.Fprintf(out, "Level %d %s\n", st.Stats.Level, renderBar(st.ProgressPct))
}
