package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/honorhabits/honor/internal/app/scoring"
	"github.com/honorhabits/honor/internal/daemon"
)

func init() {
	logCmd.Flags().StringVar(&logUser, "user", "", "User ID (required)")
	logCmd.Flags().StringVar(&logHabit, "habit", "", "Habit ID (required)")
	logCmd.Flags().BoolVar(&logMissed, "missed", false, "Record an explicit miss instead of a completion")
	logCmd.Flags().IntVar(&logWeight, "weight", 1, "Importance weight (1-5)")
	logCmd.Flags().StringVar(&logNote, "note", "", "Optional free-text note")
	logCmd.Flags().StringVar(&logDay, "day", "", "Day to log (YYYY-MM-DD, default today)")
	_ = logCmd.MarkFlagRequired("user")
	_ = logCmd.MarkFlagRequired("habit")
	rootCmd.AddCommand(logCmd)
}

var (
	logUser   string
	logHabit  string
	logMissed bool
	logWeight int
	logNote   string
	logDay    string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record a habit completion (or miss) for a day",
	RunE:  runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	in := scoring.LogInput{
		UserID:    logUser,
		HabitID:   logHabit,
		Completed: !logMissed,
		Weight:    logWeight,
		Note:      logNote,
	}
	if logDay != "" {
		day, err := time.Parse("2006-01-02", logDay)
		if err != nil {
			return fmt.Errorf("parse --day: %w", err)
		}
		in.Day = day
	}

	logged, err := d.Scoring.LogHabitCompletion(cmd.Context(), in)
	if err != nil {
		return err
	}

	state := "completed"
	if !logged.Completed {
		state = "missed"
	}
	fmt.Printf("%s %s on %s (%+d points, streak %d)\n",
		logged.HabitID, state, logged.Day.Format("2006-01-02"), logged.Points, logged.Streak)
	return nil
}
