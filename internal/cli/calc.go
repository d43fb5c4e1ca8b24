package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/honorhabits/honor/internal/app/schedule"
	"github.com/honorhabits/honor/internal/daemon"
)

func init() {
	calcCmd.Flags().StringVar(&calcUser, "user", "", "Recalculate only this user's current period")
	rootCmd.AddCommand(calcCmd)
}

var calcUser string

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Manually recompute honor scores",
	Long: `Recompute honor scores synchronously.

With --user, recomputes that user's current period and prints the record.
Without it, runs the full-user-base batch for the period that just closed.`,
	RunE: runCalc,
}

func runCalc(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	score, summary, err := d.Scheduler.ManualCalculation(cmd.Context(), calcUser)
	if err != nil {
		return err
	}

	if summary != nil {
		fmt.Println("Batch", schedule.SummaryString(*summary))
		return nil
	}

	fmt.Printf("Period %s: honor score %d (raw %d, bonus %d, consistency %d%%)\n",
		score.Period.Ref(), score.HonorScore, score.RawScore, score.StreakBonus, score.ConsistencyRate)
	if score.Improvement != 0 {
		fmt.Printf("  %+d vs previous period (%d)\n", score.Improvement, score.PreviousScore)
	}
	return nil
}
