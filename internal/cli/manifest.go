package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	engram "github.com/engramdb/engram"
)

// NewManifestCommand creates the manifest command.
func NewManifestCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest <archive>",
		Short: "Print the archive manifest",
		Long: `Print the archive's manifest as JSON.

Example:
  engram manifest ./app.eng`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifest(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runManifest(opts *RootOptions, archivePath string, cmd *cobra.Command) error {
	a, err := engram.Open(archivePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open archive", err)
	}
	defer a.Close()

	manifest, err := a.Manifest()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read manifest", err)
	}

	if opts.Format == "json" {
		// The manifest is already JSON text; embed it unescaped.
		return json.NewEncoder(cmd.OutOrStdout()).Encode(CLIResponse{
			Status: "ok",
			Data:   json.RawMessage(manifest),
		})
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), manifest)
	return err
}
