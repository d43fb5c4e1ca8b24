package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/honorhabits/honor/internal/app/period"
)

func init() {
	rootCmd.AddCommand(periodCmd)
}

var periodCmd = &cobra.Command{
	Use:   "period",
	Short: "Show the current half-month scoring period",
	RunE:  runPeriod,
}

func runPeriod(cmd *cobra.Command, args []string) error {
	now := time.Now()
	p := period.Current(now)
	prev := period.Previous(p)

	fmt.Printf("Current:  %s (%s — %s, %d days)\n",
		p.Ref(), p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"), p.Days())
	fmt.Printf("Previous: %s (%s — %s)\n",
		prev.Ref(), prev.Start.Format("2006-01-02"), prev.End.Format("2006-01-02"))
	return nil
}
