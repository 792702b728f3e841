// Package sqlexec runs SQL against an embedded database connection and
// maps rows to JSON through the value codec.
package sqlexec

import (
	"bytes"
	"database/sql"
	"fmt"

	"github.com/engramdb/engram/internal/value"
)

// ParseParams decodes an optional positional-parameter document. The
// empty string means no parameters and behaves identically to "[]".
func ParseParams(paramsJSON string) ([]value.Value, error) {
	if paramsJSON == "" {
		return nil, nil
	}
	params, err := value.ParseArray([]byte(paramsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse params: %w", err)
	}
	return params, nil
}

// Query prepares and executes sqlText with positional params and
// returns the result set as JSON array text. Each row becomes an
// object whose keys are the statement's column names in declaration
// order; a repeated column name keeps its first position and its last
// value.
func Query(db *sql.DB, sqlText string, params []value.Value) (string, error) {
	args, err := bindArgs(params)
	if err != nil {
		return "", err
	}

	stmt, err := db.Prepare(sqlText)
	if err != nil {
		return "", fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.Query(args...)
	if err != nil {
		return "", fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("read column names: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	first := true

	scan := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range scan {
		ptrs[i] = &scan[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return "", fmt.Errorf("scan row: %w", err)
		}

		row := newRowObject(cols)
		for i, name := range cols {
			row.set(name, value.DecodeSQL(scan[i]))
		}

		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := row.appendJSON(&buf); err != nil {
			return "", fmt.Errorf("serialize row: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("query failed: %w", err)
	}

	buf.WriteByte(']')
	return buf.String(), nil
}

// Execute runs a non-query statement with positional params and
// returns the number of affected rows.
func Execute(db *sql.DB, sqlText string, params []value.Value) (int64, error) {
	args, err := bindArgs(params)
	if err != nil {
		return 0, err
	}

	res, err := db.Exec(sqlText, args...)
	if err != nil {
		return 0, fmt.Errorf("execute failed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read affected rows: %w", err)
	}
	return affected, nil
}

func bindArgs(params []value.Value) ([]any, error) {
	args := make([]any, len(params))
	for i, p := range params {
		enc, err := value.EncodeSQL(p)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		args[i] = enc
	}
	return args, nil
}

// rowObject preserves column declaration order while giving duplicate
// column names map semantics (last value wins).
type rowObject struct {
	keys []string
	vals map[string]value.Value
}

func newRowObject(cols []string) *rowObject {
	return &rowObject{vals: make(map[string]value.Value, len(cols))}
}

func (r *rowObject) set(key string, v value.Value) {
	if _, seen := r.vals[key]; !seen {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = v
}

func (r *rowObject) appendJSON(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := value.Marshal(value.String(k))
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := value.Marshal(r.vals[k])
		if err != nil {
			return err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return nil
}
