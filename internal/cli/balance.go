package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/honorhabits/honor/internal/daemon"
)

func init() {
	balanceCmd.Flags().StringVar(&balanceUser, "user", "", "User ID (required)")
	balanceCmd.Flags().IntVar(&balanceLimit, "limit", 15, "How many ledger entries to show")
	_ = balanceCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(balanceCmd)
}

var (
	balanceUser  string
	balanceLimit int
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show a user's point balance and recent ledger entries",
	RunE:  runBalance,
}

func runBalance(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	balance, err := d.Points.Balance(balanceUser)
	if err != nil {
		return err
	}
	fmt.Printf("Balance: %d points\n\n", balance)

	entries, err := d.Points.History(balanceUser, balanceLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tKIND\tAMOUNT\tREFERENCE\tBALANCE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%+d\t%s\t%d\n",
			e.Timestamp.Format("2006-01-02 15:04"), e.Kind, e.Amount, e.Reference, e.Balance)
	}
	return w.Flush()
}
