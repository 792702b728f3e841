package engram

import (
	"github.com/engramdb/engram/internal/boundary"
	"github.com/engramdb/engram/internal/sqlexec"
	"github.com/engramdb/engram/internal/vfs"
)

// Database is an open connection to a database entry. It is safe for
// concurrent use; statements run one at a time.
type Database struct {
	res *boundary.Resource[*vfs.Conn]
}

// Query runs sqlText with JSON positional params and returns the
// result set as JSON array text. Pass "" for no parameters; it behaves
// identically to "[]".
func (d *Database) Query(sqlText, paramsJSON string) (string, error) {
	var out string
	err := guarded(func() error {
		params, err := sqlexec.ParseParams(paramsJSON)
		if err != nil {
			return err
		}
		return d.res.With(func(c *vfs.Conn) error {
			out, err = sqlexec.Query(c.DB, sqlText, params)
			return err
		})
	})
	return out, err
}

// Execute runs a non-query statement with JSON positional params and
// returns the number of affected rows.
func (d *Database) Execute(sqlText, paramsJSON string) (int64, error) {
	var affected int64
	err := guarded(func() error {
		params, err := sqlexec.ParseParams(paramsJSON)
		if err != nil {
			return err
		}
		return d.res.With(func(c *vfs.Conn) error {
			affected, err = sqlexec.Execute(c.DB, sqlText, params)
			return err
		})
	})
	return affected, err
}

// Close closes the connection and removes its materialized scope.
// Closing twice returns ErrClosed.
func (d *Database) Close() error {
	return guarded(func() error {
		return d.res.Release()
	})
}
