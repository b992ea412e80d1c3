package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jasonlovesdoggo/put/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Initialize a sample put configuration file.

By default, the configuration file is created at $XDG_CONFIG_HOME/put/config.toml.
Use --config to specify a custom path.

Examples:
  # Initialize with default location
  putd init

  # Initialize with custom path
  putd init --config /etc/put/config.toml

  # Force overwrite existing config
  putd init --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	var configPath string
	var err error

	if configFile != "" {
		// Use custom path
		err = config.InitConfigToPath(configFile, initForce)
		configPath = configFile
	} else {
		// Use default path
		configPath, err = config.InitConfig(initForce)
	}

	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the configuration file to customize your setup")
	fmt.Println("  2. Start the server with: putd start")
	fmt.Printf("  3. Or specify custom config: putd start --config %s\n", configPath)
	fmt.Println("\nSecurity note:")
	fmt.Println("  The server accepts unauthenticated requests by default.")
	fmt.Println("  To require a bearer token, set api.auth_token in the config file")
	fmt.Println("  or use an environment variable:")
	fmt.Println("    export PUT_API_AUTH_TOKEN=$(openssl rand -hex 32)")

	return nil
}
