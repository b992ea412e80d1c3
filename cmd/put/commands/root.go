// Package commands implements the CLI commands for the put client.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/jasonlovesdoggo/put/cmd/put/cmdutil"
	instancecmd "github.com/jasonlovesdoggo/put/cmd/put/commands/instance"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "put",
	Short: "put - Upload server client",
	Long: `put is the command-line client for a put upload server.

Use it to stash files on the server over the resumable upload protocol,
and to list, search, download, rename and remove stored files through
the management API.

Use "put [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Sync flags to cmdutil.Flags for subcommands
		cmdutil.Flags.ServerURL, _ = cmd.Flags().GetString("server")
		cmdutil.Flags.Token, _ = cmd.Flags().GetString("token")
		cmdutil.Flags.Output, _ = cmd.Flags().GetString("output")
		cmdutil.Flags.NoColor, _ = cmd.Flags().GetBool("no-color")
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().String("server", "", "Server URL (overrides stored instance)")
	rootCmd.PersistentFlags().String("token", "", "Bearer token (overrides stored instance)")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format (table|json)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(stashCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(instancecmd.Cmd)
	rootCmd.AddCommand(completionCmd)

	// Hide the default completion command (we provide our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
