package sqlexec

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engramdb/engram/internal/value"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestExecuteAndQuery(t *testing.T) {
	db := openTestDB(t)

	affected, err := Execute(db, "CREATE TABLE t(x INTEGER)", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	params, err := ParseParams("[5]")
	require.NoError(t, err)
	affected, err = Execute(db, "INSERT INTO t VALUES (?)", params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	out, err := Query(db, "SELECT x FROM t", nil)
	require.NoError(t, err)
	assert.Equal(t, `[{"x":5}]`, out)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "query_rows", []byte(out))
}

func TestParseParamsAbsentEqualsEmpty(t *testing.T) {
	db := openTestDB(t)
	_, err := Execute(db, "CREATE TABLE t(x INTEGER)", nil)
	require.NoError(t, err)

	absent, err := ParseParams("")
	require.NoError(t, err)
	empty, err := ParseParams("[]")
	require.NoError(t, err)

	a, err := Query(db, "SELECT x FROM t", absent)
	require.NoError(t, err)
	b, err := Query(db, "SELECT x FROM t", empty)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, "[]", a)
}

func TestParseParamsMalformed(t *testing.T) {
	_, err := ParseParams(`{"not":"an array"}`)
	assert.ErrorContains(t, err, "failed to parse params")

	_, err = ParseParams(`[1,`)
	assert.ErrorContains(t, err, "failed to parse params")
}

func TestQueryParameterTypes(t *testing.T) {
	db := openTestDB(t)
	_, err := Execute(db, "CREATE TABLE v(a, b, c, d, e)", nil)
	require.NoError(t, err)

	params, err := ParseParams(`[null, true, 42, 2.5, {"k":[1,2]}]`)
	require.NoError(t, err)
	_, err = Execute(db, "INSERT INTO v VALUES (?,?,?,?,?)", params)
	require.NoError(t, err)

	out, err := Query(db, "SELECT a, b, c, d, e FROM v", nil)
	require.NoError(t, err)
	assert.Equal(t, `[{"a":null,"b":1,"c":42,"d":2.5,"e":"{\"k\":[1,2]}"}]`, out)
}

func TestQueryBlobDecodesToByteArray(t *testing.T) {
	db := openTestDB(t)
	_, err := Execute(db, "CREATE TABLE b(data BLOB)", nil)
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO b VALUES (?)", []byte{1, 2, 255})
	require.NoError(t, err)

	out, err := Query(db, "SELECT data FROM b", nil)
	require.NoError(t, err)
	assert.Equal(t, `[{"data":[1,2,255]}]`, out)
}

func TestQueryDuplicateColumnLastValueWins(t *testing.T) {
	db := openTestDB(t)

	out, err := Query(db, "SELECT 1 AS x, 2 AS x", nil)
	require.NoError(t, err)
	assert.Equal(t, `[{"x":2}]`, out)
}

func TestQueryPrepareFailure(t *testing.T) {
	db := openTestDB(t)

	_, err := Query(db, "SELEKT nonsense", nil)
	assert.ErrorContains(t, err, "failed to prepare statement")
}

func TestExecuteFailure(t *testing.T) {
	db := openTestDB(t)

	_, err := Execute(db, "INSERT INTO missing VALUES (1)", nil)
	assert.ErrorContains(t, err, "execute failed")
}

func TestQueryColumnOrderPreserved(t *testing.T) {
	db := openTestDB(t)

	out, err := Query(db, "SELECT 1 AS zebra, 2 AS apple", nil)
	require.NoError(t, err)
	// Declaration order, not sorted.
	assert.Equal(t, `[{"zebra":1,"apple":2}]`, out)
}

func TestBindArgsEncodesBoolean(t *testing.T) {
	args, err := bindArgs([]value.Value{value.Bool(true), value.Null{}})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), nil}, args)
}
