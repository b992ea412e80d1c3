package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jasonlovesdoggo/put/cmd/put/cmdutil"
)

var renameCmd = &cobra.Command{
	Use:   "rename <uid> <name>",
	Short: "Rename a stored file",
	Long: `Rename a stored file on the server.

Only the stored name changes; the uid and the file contents stay the
same.

Examples:
  # Rename a file
  put rename 1f8e9c2a4b6d5e3f quarterly-report.pdf`,
	Args: cobra.ExactArgs(2),
	RunE: runRename,
}

func runRename(cmd *cobra.Command, args []string) error {
	uid, name := args[0], args[1]

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	file, err := client.RenameFile(uid, name)
	if err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, file,
		fmt.Sprintf("Renamed %s to '%s'", file.UID, file.Name))
}
