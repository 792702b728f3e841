package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <archive> <db-entry> <sql> [params]",
		Short: "Run a statement against an embedded database",
		Long: `Run a non-query statement against a database entry and print the
number of affected rows. The database is materialized from the
archive, so changes do not alter the archive itself.

Example:
  engram exec ./app.eng scratch.db "CREATE TABLE t (x INTEGER)"
  engram exec ./app.eng scratch.db "INSERT INTO t VALUES (?)" "[5]"`,
		Args:          cobra.RangeArgs(3, 4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := ""
			if len(args) == 4 {
				params = args[3]
			}
			return runExec(rootOpts, args[0], args[1], args[2], params, cmd)
		},
	}
	return cmd
}

func runExec(opts *RootOptions, archivePath, dbPath, sqlText, params string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	db, err := openDatabase(archivePath, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	affected, err := db.Execute(sqlText, params)
	if err != nil {
		return WrapExitError(ExitFailure, "execute failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{"affected": affected})
	}
	return formatter.Success(fmt.Sprintf("affected: %d", affected))
}
