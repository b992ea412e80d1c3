package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jasonlovesdoggo/put/cmd/put/cmdutil"
	"github.com/jasonlovesdoggo/put/pkg/apiclient"
)

var (
	searchOpts          apiclient.SearchOptions
	searchCreatedAfter  string
	searchCreatedBefore string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored files",
	Long: `Search files stored on the server.

The query matches against file names. Additional filters narrow the
result by MIME type, owner, or creation time. Times accept RFC3339
("2026-01-02T15:04:05Z") or plain dates ("2026-01-02").

Examples:
  # Search by name
  put search report

  # Only PDFs
  put search report --file-type application/pdf

  # Files uploaded by alice this year
  put search --owner alice --created-after 2026-01-01

  # Search as JSON
  put search report -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchOpts.FileType, "file-type", "", "Only match files with this MIME type")
	searchCmd.Flags().StringVar(&searchOpts.Owner, "owner", "", "Only match files owned by this user")
	searchCmd.Flags().StringVar(&searchCreatedAfter, "created-after", "", "Only match files created after this time")
	searchCmd.Flags().StringVar(&searchCreatedBefore, "created-before", "", "Only match files created before this time")
	searchCmd.Flags().IntVar(&searchOpts.Limit, "limit", 10, "Maximum number of files to return")
	searchCmd.Flags().IntVar(&searchOpts.Offset, "offset", 0, "Number of files to skip")
	searchCmd.Flags().StringVar(&searchOpts.SortBy, "sort-by", "", "Sort field (name|size|created_at)")
	searchCmd.Flags().StringVar(&searchOpts.SortOrder, "sort-order", "", "Sort direction (asc|desc)")
}

// parseTimeFlag parses a user-supplied time in RFC3339 or date-only form.
func parseTimeFlag(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return &ts, nil
		}
	}
	return nil, fmt.Errorf("invalid time %q (use RFC3339 or YYYY-MM-DD)", value)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		searchOpts.Query = args[0]
	}

	var err error
	if searchOpts.CreatedAfter, err = parseTimeFlag(searchCreatedAfter); err != nil {
		return err
	}
	if searchOpts.CreatedBefore, err = parseTimeFlag(searchCreatedBefore); err != nil {
		return err
	}

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	files, err := client.SearchFiles(searchOpts)
	if err != nil {
		return fmt.Errorf("failed to search files: %w", err)
	}

	return cmdutil.PrintOutput(os.Stdout, files, len(files) == 0, "No files found.", FileList(files))
}
