package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/honorhabits/honor/internal/daemon"
)

func init() {
	scoreCmd.Flags().StringVar(&scoreUser, "user", "", "User ID (required)")
	scoreCmd.Flags().IntVar(&scoreLimit, "limit", 6, "How many periods to show")
	_ = scoreCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(scoreCmd)
}

var (
	scoreUser  string
	scoreLimit int
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Show a user's stored period scores",
	RunE:  runScore,
}

func runScore(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	scores, err := d.Scoring.History(scoreUser, scoreLimit)
	if err != nil {
		return err
	}
	if len(scores) == 0 {
		fmt.Println("No scores recorded yet. Run 'honor calc --user", scoreUser+"' first.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PERIOD\tHONOR\tRAW\tBONUS\tDONE\tMISSED\tCONSISTENCY\tTREND")
	for _, s := range scores {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d%%\t%+d\n",
			s.Period.Ref(), s.HonorScore, s.RawScore, s.StreakBonus,
			s.CompletedDays, s.MissedDays, s.ConsistencyRate, s.Improvement)
	}
	return w.Flush()
}
