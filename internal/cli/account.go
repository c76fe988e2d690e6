package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logicalx/logicalx/internal/domain"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(subscribeCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with the demo account",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Session.Login(); err != nil {
			return err
		}
		st := d.Session.Snapshot()
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", st.Stats.Name, st.Stats.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out; progress is kept",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDaemon(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Session.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var subscribeCmd = &cobra.Command{
	Use:       "subscribe PLAN",
	Short:     "Switch plan (free, pro_monthly, pro_yearly)",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(domain.PlanFree), string(domain.PlanProMonthly), string(domain.PlanProYearly)},
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := domain.ParsePlan(args[0])
		if err != nil {
			return err
		}

		d, err := openDaemon(cmd.Context())
		if err != nil {
			return err
		}
		defer d.Close()

		celebrate, err := d.Session.Subscribe(plan)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if celebrate {
			fmt.Fprintln(out, goodStyle.Render("Welcome to Pro! All levels unlocked and a 1.5x XP boost."))
			return nil
		}
		fmt.Fprintf(out, "Plan set to %s.\n", plan)
		return nil
	},
}
