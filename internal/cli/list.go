package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	engram "github.com/engramdb/engram"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Prefix string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <archive>",
		Short: "List archive entries",
		Long: `List the entry paths of an archive in index order.

Example:
  engram list ./app.eng
  engram list ./app.eng --prefix data/`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Prefix, "prefix", "", "only list entries under this prefix")

	return cmd
}

func runList(opts *ListOptions, archivePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	a, err := engram.Open(archivePath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open archive", err)
	}
	defer a.Close()

	var paths []string
	if opts.Prefix != "" {
		paths, err = a.ListPrefix(opts.Prefix)
	} else {
		paths, err = a.ListFiles()
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list entries", err)
	}

	if opts.Format == "json" {
		return formatter.Success(paths)
	}
	if len(paths) == 0 {
		return formatter.Success("(empty)")
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(paths, "\n"))
	return err
}
