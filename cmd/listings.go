package cmd

import (
	"errors"
	"fmt"

	"github.com/smart-review/smart-review-cli/internal/ui"
	"github.com/spf13/cobra"
)

var (
	semesterID     int
	sessionsPeriod int
)

var periodsCmd = &cobra.Command{
	Use:   "periods",
	Short: "List review periods",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := commonSetUp(cmd)
		if err != nil {
			return err
		}
		nav, err := a.enter("/admin/review-periods")
		if err != nil {
			return err
		}
		defer nav.Close()

		periods, err := a.svc.Periods.List(a.ctx, semesterID)
		if err != nil {
			return explain(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Periods(periods))
		return nil
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List the scheduled review sessions of a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		if sessionsPeriod <= 0 {
			return errors.New("--period is required")
		}
		a, err := commonSetUp(cmd)
		if err != nil {
			return err
		}
		nav, err := a.enter("/admin/review-sessions")
		if err != nil {
			return err
		}
		defer nav.Close()

		sessions, err := a.svc.Sessions.Scheduled(a.ctx, sessionsPeriod)
		if err != nil {
			return explain(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Sessions(sessions))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(periodsCmd, sessionsCmd)

	periodsCmd.Flags().IntVar(&semesterID, "semester", 0, "only periods of this semester")
	sessionsCmd.Flags().IntVar(&sessionsPeriod, "period", 0, "review period id")
}
