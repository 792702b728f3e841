package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	engram "github.com/engramdb/engram"
)

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <archive> <entry>",
		Short: "Show entry metadata",
		Long: `Show the stored metadata of one archive entry.

Example:
  engram info ./app.eng data/a.txt`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runInfo(opts *RootOptions, archivePath, entryPath string, cmd *cobra.Command) error {
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

	meta, err := a.Metadata(entryPath)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read metadata", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"path":             meta.Path,
			"uncompressedSize": meta.UncompressedSize,
			"compressedSize":   meta.CompressedSize,
			"compression":      meta.Compression,
			"modifiedTime":     meta.ModifiedTime,
			"crc32":            meta.CRC32,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "path:              %s\n", meta.Path)
	fmt.Fprintf(out, "uncompressed size: %d\n", meta.UncompressedSize)
	fmt.Fprintf(out, "compressed size:   %d\n", meta.CompressedSize)
	fmt.Fprintf(out, "compression:       %s\n", meta.Compression)
	fmt.Fprintf(out, "modified time:     %d\n", meta.ModifiedTime)
	fmt.Fprintf(out, "crc32:             %08x\n", meta.CRC32)
	return nil
}
