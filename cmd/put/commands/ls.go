package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jasonlovesdoggo/put/cmd/put/cmdutil"
	"github.com/jasonlovesdoggo/put/internal/bytesize"
	"github.com/jasonlovesdoggo/put/internal/cli/timeutil"
	"github.com/jasonlovesdoggo/put/pkg/apiclient"
)

var lsOpts apiclient.ListOptions

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored files",
	Long: `List files stored on the server.

The server returns at most --limit files per page; use --offset to
page through larger listings.

Examples:
  # List the first page of files
  put ls

  # List files whose name starts with "report"
  put ls --prefix report

  # List the largest files first
  put ls --sort-by size --sort-order desc

  # List as JSON
  put ls -o json`,
	RunE: runLs,
}

func init() {
	lsCmd.Flags().StringVar(&lsOpts.Prefix, "prefix", "", "Only list files whose name starts with this prefix")
	lsCmd.Flags().IntVar(&lsOpts.Limit, "limit", 10, "Maximum number of files to return")
	lsCmd.Flags().IntVar(&lsOpts.Offset, "offset", 0, "Number of files to skip")
	lsCmd.Flags().StringVar(&lsOpts.SortBy, "sort-by", "", "Sort field (name|size|created_at)")
	lsCmd.Flags().StringVar(&lsOpts.SortOrder, "sort-order", "", "Sort direction (asc|desc)")
}

// FileList renders stored files for table display.
type FileList []apiclient.File

// Headers implements TableRenderer.
func (fl FileList) Headers() []string {
	return []string{"UID", "NAME", "SIZE", "CREATED", "EXPIRES"}
}

// Rows implements TableRenderer.
func (fl FileList) Rows() [][]string {
	rows := make([][]string, 0, len(fl))
	for _, f := range fl {
		rows = append(rows, []string{
			f.UID,
			f.Name,
			bytesize.ByteSize(f.Size).String(),
			timeutil.FormatUnix(f.CreatedAt),
			timeutil.FormatExpiry(f.Expires),
		})
	}
	return rows
}

func runLs(cmd *cobra.Command, args []string) error {
	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	files, err := client.ListFiles(lsOpts)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, files, len(files) == 0, "No files found.", FileList(files))
}
