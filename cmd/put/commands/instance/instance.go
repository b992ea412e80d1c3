// Package instance implements instance management commands for put.
package instance

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for instance management.
var Cmd = &cobra.Command{
	Use:   "instance",
	Short: "Instance management",
	Long: `Manage which put server this client talks to.

The configured instance is stored in ~/.put/config.json. Setting an
instance verifies the URL actually points at a put server before
saving it.

Examples:
  # Point the client at a server
  put instance set https://files.example.com

  # Point at a server that requires a token
  put instance set https://files.example.com --token s3cret

  # Show the configured instance
  put instance get

  # Forget the configured instance
  put instance clear`,
}

func init() {
	Cmd.AddCommand(setCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(clearCmd)
}
