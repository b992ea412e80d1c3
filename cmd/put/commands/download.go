package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jasonlovesdoggo/put/cmd/put/cmdutil"
	"github.com/jasonlovesdoggo/put/internal/bytesize"
)

var downloadCmd = &cobra.Command{
	Use:   "download <uid> [dest]",
	Short: "Download a stored file",
	Long: `Download a stored file from the server.

Without a destination the file is written to the current directory
under its stored name. A destination that names an existing directory
keeps the stored name inside it.

Examples:
  # Download to the current directory
  put download 1f8e9c2a4b6d5e3f

  # Download to a specific path
  put download 1f8e9c2a4b6d5e3f /tmp/report.pdf

  # Download into a directory
  put download 1f8e9c2a4b6d5e3f ~/Downloads/`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

// downloadResult is the JSON shape of a completed download.
type downloadResult struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Path string `json:"path"`
}

func runDownload(cmd *cobra.Command, args []string) error {
	uid := args[0]

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	// Resolve the stored name before transferring any bytes
	file, err := client.GetFile(uid)
	if err != nil {
		return fmt.Errorf("failed to look up file: %w", err)
	}

	dest := file.Name
	if len(args) == 2 {
		dest = args[1]
		if info, err := os.Stat(dest); err == nil && info.IsDir() {
			dest = filepath.Join(dest, file.Name)
		}
	}

	body, err := client.DownloadFile(uid)
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}
	defer func() { _ = body.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	written, err := io.Copy(out, body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	result := downloadResult{UID: file.UID, Name: file.Name, Size: written, Path: dest}
	return cmdutil.PrintResourceWithSuccess(os.Stdout, result,
		fmt.Sprintf("Downloaded '%s' to %s (%s)", file.Name, dest, bytesize.ByteSize(written)))
}
