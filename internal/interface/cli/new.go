package cli

import (
	"fmt"

	"github.com/neilberkman/ragchat/internal/core/session"
	"github.com/spf13/cobra"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Print a new session id",
	Long: `Print a new random session id for use with open and ask.

Ids are six digits and are not registered with the backend.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), session.NewSessionID(nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}
