package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	engram "github.com/engramdb/engram"
)

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <archive> <db-entry> <sql> [params]",
		Short: "Run a query against an embedded database",
		Long: `Run a SELECT against a database entry and print the rows as a JSON
array. params is an optional JSON array of positional parameters.

Example:
  engram query ./app.eng db/main.db "SELECT * FROM users"
  engram query ./app.eng db/main.db "SELECT * FROM users WHERE id = ?" "[3]"`,
		Args:          cobra.RangeArgs(3, 4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := ""
			if len(args) == 4 {
				params = args[3]
			}
			return runQuery(rootOpts, args[0], args[1], args[2], params, cmd)
		},
	}
	return cmd
}

func runQuery(opts *RootOptions, archivePath, dbPath, sqlText, params string, cmd *cobra.Command) error {
	db, err := openDatabase(archivePath, dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	rows, err := db.Query(sqlText, params)
	if err != nil {
		return WrapExitError(ExitFailure, "query failed", err)
	}

	if opts.Format == "json" {
		// Rows are already JSON text; embed them unescaped.
		return json.NewEncoder(cmd.OutOrStdout()).Encode(CLIResponse{
			Status: "ok",
			Data:   json.RawMessage(rows),
		})
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), rows)
	return err
}

// openDatabase opens a database entry, translating failures into exit
// codes shared by query and exec.
func openDatabase(archivePath, dbPath string) (*engram.Database, error) {
	a, err := engram.Open(archivePath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open archive", err)
	}
	defer a.Close()

	db, err := a.OpenDatabase(dbPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return db, nil
}
