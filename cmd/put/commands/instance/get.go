package instance

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jasonlovesdoggo/put/cmd/put/cmdutil"
	instancestore "github.com/jasonlovesdoggo/put/internal/cli/instance"
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the configured instance",
	Long: `Show the server instance this client is configured to talk to.

Examples:
  # Show the configured instance
  put instance get

  # Show as JSON
  put instance get -o json`,
	RunE: runGet,
}

// instanceRow is the display shape of a configured instance. The token
// itself never leaves the store; only whether one is set.
type instanceRow struct {
	URL      string `json:"url"`
	Version  string `json:"version,omitempty"`
	HasToken bool   `json:"has_token"`
}

func instanceView(inst *instancestore.Instance) instanceRow {
	return instanceRow{
		URL:      inst.URL,
		Version:  inst.Version,
		HasToken: inst.Token != "",
	}
}

// Headers implements TableRenderer.
func (r instanceRow) Headers() []string {
	return []string{"URL", "VERSION", "TOKEN"}
}

// Rows implements TableRenderer.
func (r instanceRow) Rows() [][]string {
	return [][]string{{
		r.URL,
		cmdutil.EmptyOr(r.Version, "-"),
		cmdutil.BoolToYesNo(r.HasToken),
	}}
}

func runGet(cmd *cobra.Command, args []string) error {
	store, err := instancestore.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open instance store: %w", err)
	}

	inst, err := store.Current()
	if err != nil {
		return err
	}

	row := instanceView(inst)
	return cmdutil.PrintResource(os.Stdout, row, row)
}
