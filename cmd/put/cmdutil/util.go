// Package cmdutil provides shared utilities for put commands.
package cmdutil

import (
	"fmt"
	"io"
	"os"

	"github.com/jasonlovesdoggo/put/internal/cli/instance"
	"github.com/jasonlovesdoggo/put/internal/cli/output"
	"github.com/jasonlovesdoggo/put/internal/cli/prompt"
	"github.com/jasonlovesdoggo/put/pkg/apiclient"
)

// Flags stores global flag values accessible by subcommands.
var Flags = &GlobalFlags{}

// GlobalFlags holds the global flag values.
type GlobalFlags struct {
	ServerURL string
	Token     string
	Output    string
	NoColor   bool
}

// GetClient returns an API client for the configured server.
// It uses the --server and --token flags if provided, otherwise falls
// back to the stored instance.
func GetClient() (*apiclient.Client, error) {
	// Check for explicit flags first
	if Flags.ServerURL != "" {
		client := apiclient.New(Flags.ServerURL)
		if Flags.Token != "" {
			client.SetToken(Flags.Token)
		}
		return client, nil
	}

	store, err := instance.NewStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open instance store: %w", err)
	}

	inst, err := store.Current()
	if err != nil {
		return nil, err
	}

	tok := inst.Token
	if Flags.Token != "" {
		tok = Flags.Token
	}

	client := apiclient.New(inst.URL)
	if tok != "" {
		client.SetToken(tok)
	}
	return client, nil
}

// GetOutputFormat returns the output format string.
func GetOutputFormat() string {
	return Flags.Output
}

// GetOutputFormatParsed returns the parsed output format.
func GetOutputFormatParsed() (output.Format, error) {
	return output.ParseFormat(Flags.Output)
}

// IsColorDisabled returns whether color output is disabled.
func IsColorDisabled() bool {
	return Flags.NoColor
}

// IsTableOutput reports whether the current output format is table.
// Commands use it to keep progress and status chatter out of
// machine-readable output.
func IsTableOutput() bool {
	format, err := GetOutputFormatParsed()
	return err == nil && format == output.FormatTable
}

// PrintOutput prints data in the specified format (JSON or table).
// For table format, it displays emptyMsg if data is empty, otherwise
// uses the tableRenderer.
func PrintOutput(w io.Writer, data any, isEmpty bool, emptyMsg string, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	default:
		if isEmpty {
			_, _ = fmt.Fprintln(w, emptyMsg)
			return nil
		}
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintSuccess prints a success message if the output format is table.
func PrintSuccess(msg string) {
	format, err := GetOutputFormatParsed()
	if err != nil || format != output.FormatTable {
		return
	}
	output.Success(os.Stdout, !IsColorDisabled(), msg)
}

// PrintResource prints a resource in the specified format.
// For table format, it uses the provided tableRenderer. For JSON, it
// outputs the resource.
func PrintResource(w io.Writer, data any, tableRenderer output.TableRenderer) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	default:
		return output.PrintTable(w, tableRenderer)
	}
}

// PrintResourceWithSuccess prints a resource in the specified format.
// For table format, it displays a success message. For JSON, it outputs
// the resource. This is useful for create, update, and similar
// operations.
func PrintResourceWithSuccess(w io.Writer, data any, successMsg string) error {
	format, err := GetOutputFormatParsed()
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(w, data)
	default:
		PrintSuccess(successMsg)
		return nil
	}
}

// RunDeleteWithConfirmation prompts for confirmation (unless force is true) and runs deleteFn.
func RunDeleteWithConfirmation(resourceType, name string, force bool, deleteFn func() error) error {
	confirmed, err := prompt.ConfirmWithForce(fmt.Sprintf("Delete %s '%s'?", resourceType, name), force)
	if err != nil {
		if prompt.IsAborted(err) {
			fmt.Println("\nAborted.")
			return nil
		}
		return err
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	if err := deleteFn(); err != nil {
		return err
	}

	PrintSuccess(fmt.Sprintf("%s '%s' deleted successfully", resourceType, name))
	return nil
}

// BoolToYesNo converts a boolean to "yes" or "no" string.
func BoolToYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// EmptyOr returns the value if not empty, otherwise returns the fallback.
// Useful for table display where empty fields should show "-".
func EmptyOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
