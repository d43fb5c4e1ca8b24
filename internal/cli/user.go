package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/honorhabits/honor/internal/daemon"
	"github.com/honorhabits/honor/internal/domain"
)

func init() {
	userAddCmd.Flags().StringVar(&userName, "name", "", "Display name")
	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(userCmd)
}

var userName string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users known to the engine",
}

var userAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Register a user with a zero point balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserAdd,
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	user := domain.User{ID: args[0], Name: userName, CreatedAt: time.Now()}
	if err := d.DB.CreateUser(user); err != nil {
		return err
	}
	fmt.Printf("Registered %s\n", user.ID)
	return nil
}
