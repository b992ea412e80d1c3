package instance

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jasonlovesdoggo/put/cmd/put/cmdutil"
	instancestore "github.com/jasonlovesdoggo/put/internal/cli/instance"
)

var setToken string

var setCmd = &cobra.Command{
	Use:   "set <url>",
	Short: "Set the server instance",
	Long: `Set the server instance this client talks to.

The URL is verified before saving: the client asks the server to
identify itself and refuses URLs that do not answer as a put server.

Examples:
  # Point the client at a server
  put instance set https://files.example.com

  # Point at a server that requires a token
  put instance set https://files.example.com --token s3cret`,
	Args: cobra.ExactArgs(1),
	RunE: runSet,
}

func init() {
	setCmd.Flags().StringVar(&setToken, "token", "", "Bearer token for the server")
}

func runSet(cmd *cobra.Command, args []string) error {
	url := strings.TrimRight(args[0], "/")

	sig, err := instancestore.Verify(url)
	if err != nil {
		return err
	}

	store, err := instancestore.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open instance store: %w", err)
	}

	inst := &instancestore.Instance{
		URL:     url,
		Token:   setToken,
		Version: sig.Version,
	}
	if err := store.Set(inst); err != nil {
		return fmt.Errorf("failed to save instance: %w", err)
	}

	return cmdutil.PrintResourceWithSuccess(os.Stdout, instanceView(inst),
		fmt.Sprintf("Instance set to %s (server version %s)", url, sig.Version))
}
