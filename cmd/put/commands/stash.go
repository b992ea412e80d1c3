package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jasonlovesdoggo/put/cmd/put/cmdutil"
	"github.com/jasonlovesdoggo/put/internal/bytesize"
	"github.com/jasonlovesdoggo/put/pkg/apiclient"
)

var (
	stashName      string
	stashMimeType  string
	stashMeta      []string
	stashChunkSize string
)

var stashCmd = &cobra.Command{
	Use:   "stash <path>",
	Short: "Upload a file to the server",
	Long: `Upload a file to the server over the resumable upload protocol.

The file is sent in chunks; an interrupted transfer holds its place on
the server until the upload expires. The stored name defaults to the
file's base name and its MIME type is guessed from the extension; both
can be overridden.

Examples:
  # Upload a file
  put stash report.pdf

  # Upload under a different name
  put stash /tmp/out.bin --name build-artifact.bin

  # Attach extra metadata
  put stash report.pdf --meta owner=alice --meta category=reports

  # Upload in 16MiB chunks
  put stash backup.tar --chunk-size 16MiB`,
	Args: cobra.ExactArgs(1),
	RunE: runStash,
}

func init() {
	stashCmd.Flags().StringVar(&stashName, "name", "", "Store the file under this name")
	stashCmd.Flags().StringVar(&stashMimeType, "mime-type", "", "MIME type of the file (default: guessed from extension)")
	stashCmd.Flags().StringArrayVar(&stashMeta, "meta", nil, "Additional metadata as key=value (repeatable)")
	stashCmd.Flags().StringVar(&stashChunkSize, "chunk-size", "4MiB", "Upload chunk size")
}

// stashResult is the JSON shape of a completed upload.
type stashResult struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func runStash(cmd *cobra.Command, args []string) error {
	path := args[0]

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	chunkSize, err := bytesize.Parse(stashChunkSize)
	if err != nil {
		return fmt.Errorf("invalid chunk size: %w", err)
	}

	metadata := make(map[string]string)
	for _, pair := range stashMeta {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid metadata %q (use key=value)", pair)
		}
		metadata[key] = value
	}
	if stashName != "" {
		metadata["filename"] = stashName
	}
	if stashMimeType != "" {
		metadata["mime_type"] = stashMimeType
	}

	client, err := cmdutil.GetClient()
	if err != nil {
		return err
	}

	opts := apiclient.UploadOptions{
		Metadata:  metadata,
		ChunkSize: chunkSize.Int64(),
	}
	if cmdutil.IsTableOutput() {
		opts.OnProgress = func(sent, total int64) {
			fmt.Fprintf(os.Stderr, "\r%s / %s", bytesize.ByteSize(sent), bytesize.ByteSize(total))
		}
	}

	uid, err := client.UploadFile(path, opts)
	if opts.OnProgress != nil {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return fmt.Errorf("failed to stash %s: %w", path, err)
	}

	name := metadata["filename"]
	if name == "" {
		name = filepath.Base(path)
	}

	result := stashResult{UID: uid, Name: name, Size: info.Size()}
	return cmdutil.PrintResourceWithSuccess(os.Stdout, result,
		fmt.Sprintf("Stashed '%s' as %s (%s)", name, uid, bytesize.ByteSize(info.Size())))
}
