package ffi

import (
	"errors"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/engramdb/engram/internal/boundary"
	"github.com/engramdb/engram/internal/sqlexec"
	"github.com/engramdb/engram/internal/vfs"
)

// OpenDatabase opens the database entry at dbPath within the archive's
// scope and writes its handle through outHandle. The connection does
// not depend on the archive handle staying open afterwards.
func OpenDatabase(h ArchiveHandle, dbPath string, outHandle *DatabaseHandle, slot *ErrorSlot) Status {
	return run(slot, func() error {
		if outHandle == nil {
			return errors.New("out handle pointer cannot be nil")
		}
		if !utf8.ValidString(dbPath) {
			return errors.New("db path is not valid UTF-8")
		}
		st, err := lookupArchive(h)
		if err != nil {
			return err
		}

		conn, err := vfs.OpenDatabase(st.path, dbPath)
		if err != nil {
			return err
		}

		dst := &databaseState{
			res: boundary.NewResource(conn, func(c *vfs.Conn) error { return c.Close() }),
		}
		*outHandle = insertDatabase(dst)
		Logger().Debug("database opened", zap.String("path", dbPath))
		return nil
	})
}

// CloseDatabase destroys the handle and closes the connection. Closing
// the zero handle is a no-op; closing a handle twice is undefined.
func CloseDatabase(h DatabaseHandle) {
	if h == 0 {
		return
	}
	st := removeDatabase(h)
	if st == nil {
		return
	}
	if err := st.res.Release(); err != nil {
		Logger().Debug("database close", zap.Error(err))
	}
}

// Query runs sqlText with JSON positional params and writes the result
// set as JSON array text through outJSON. An empty params string means
// no parameters. The message transfers to the caller.
func Query(h DatabaseHandle, sqlText, paramsJSON string, outJSON **Message, slot *ErrorSlot) Status {
	return run(slot, func() error {
		if outJSON == nil {
			return errors.New("out json pointer cannot be nil")
		}
		if !utf8.ValidString(sqlText) || !utf8.ValidString(paramsJSON) {
			return errors.New("sql text is not valid UTF-8")
		}
		params, err := sqlexec.ParseParams(paramsJSON)
		if err != nil {
			return err
		}
		st, err := lookupDatabase(h)
		if err != nil {
			return err
		}
		return st.res.With(func(c *vfs.Conn) error {
			text, err := sqlexec.Query(c.DB, sqlText, params)
			if err != nil {
				return err
			}
			*outJSON = newMessage(text)
			return nil
		})
	})
}

// Execute runs a non-query statement with JSON positional params and
// writes the number of affected rows through outAffected.
func Execute(h DatabaseHandle, sqlText, paramsJSON string, outAffected *int64, slot *ErrorSlot) Status {
	return run(slot, func() error {
		if outAffected == nil {
			return errors.New("out affected pointer cannot be nil")
		}
		if !utf8.ValidString(sqlText) || !utf8.ValidString(paramsJSON) {
			return errors.New("sql text is not valid UTF-8")
		}
		params, err := sqlexec.ParseParams(paramsJSON)
		if err != nil {
			return err
		}
		st, err := lookupDatabase(h)
		if err != nil {
			return err
		}
		return st.res.With(func(c *vfs.Conn) error {
			affected, err := sqlexec.Execute(c.DB, sqlText, params)
			if err != nil {
				return err
			}
			*outAffected = affected
			return nil
		})
	})
}
