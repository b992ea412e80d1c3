package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jasonlovesdoggo/put/cmd/put/cmdutil"
)

var removeForce bool

var removeCmd = &cobra.Command{
	Use:   "remove <uid>",
	Short: "Remove a stored file",
	Long: `Remove a stored file from the server.

This action is irreversible. You will be prompted for confirmation
unless --force is specified.

Examples:
  # Remove a file with confirmation
  put remove 1f8e9c2a4b6d5e3f

  # Remove a file without confirmation
  put remove 1f8e9c2a4b6d5e3f --force`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Skip confirmation prompt")
}

func runRemove(cmd *cobra.Command, args []string) error {
	uid := args[0]

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	return cmdutil.RunDeleteWithConfirmation("file", uid, removeForce, func() error {
		if err := client.DeleteFile(uid); err != nil {
			return fmt.Errorf("failed to remove file: %w", err)
		}
		return nil
	})
}
