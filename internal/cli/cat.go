package cli

import (
	"github.com/spf13/cobra"

	engram "github.com/engramdb/engram"
)

// NewCatCommand creates the cat command.
func NewCatCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat <archive> <entry>",
		Short: "Print entry content",
		Long: `Print the raw content of one archive entry to stdout.

Output is the entry's bytes regardless of --format.

Example:
  engram cat ./app.eng data/a.txt`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCat(args[0], args[1], cmd)
		},
	}
	return cmd
}

func runCat(archivePath, entryPath string, cmd *cobra.Command) error {
	a, err := engram.Open(archivePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open archive", err)
	}
	defer a.Close()

	data, err := a.ReadFile(entryPath)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read entry", err)
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
