package instance

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jasonlovesdoggo/put/cmd/put/cmdutil"
	instancestore "github.com/jasonlovesdoggo/put/internal/cli/instance"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the configured instance",
	Long: `Forget the configured server instance and its token.

Examples:
  # Forget the configured instance
  put instance clear`,
	RunE: runClear,
}

func runClear(cmd *cobra.Command, args []string) error {
	store, err := instancestore.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open instance store: %w", err)
	}

	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear instance: %w", err)
	}

	cmdutil.PrintSuccess("Instance cleared")
	return nil
}
