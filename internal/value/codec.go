package value

import (
	"fmt"
	"strings"
	"time"
)

// EncodeSQL maps a Value onto the SQLite storage type system. The
// mapping is total over the JSON value space:
//
//	null          -> NULL
//	boolean       -> INTEGER 0/1
//	integral num  -> INTEGER
//	other num     -> REAL
//	string        -> TEXT
//	array/object  -> TEXT (canonical JSON)
func EncodeSQL(v Value) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("nil Value: use Null{}")
	case Null:
		return nil, nil
	case Bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case Int:
		return int64(val), nil
	case Float:
		return float64(val), nil
	case String:
		return string(val), nil
	case Array, Object:
		text, err := MarshalCanonical(val)
		if err != nil {
			return nil, fmt.Errorf("serialize structured parameter: %w", err)
		}
		return string(text), nil
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// DecodeSQL maps a column scanned from database/sql back to a Value:
// NULL to null, INTEGER to number, REAL to number, TEXT to string
// (invalid byte sequences replaced, never rejected), BLOB to an array
// of byte values. The sqlite3 driver may also surface bool and
// time.Time for typed columns; those fold into the nearest storage
// class.
func DecodeSQL(col any) Value {
	switch v := col.(type) {
	case nil:
		return Null{}
	case int64:
		return Int(v)
	case float64:
		return Float(v)
	case bool:
		if v {
			return Int(1)
		}
		return Int(0)
	case string:
		return String(strings.ToValidUTF8(v, "�"))
	case []byte:
		arr := make(Array, len(v))
		for i, b := range v {
			arr[i] = Int(int64(b))
		}
		return arr
	case time.Time:
		return String(v.Format(time.RFC3339Nano))
	default:
		return String(strings.ToValidUTF8(fmt.Sprintf("%v", v), "�"))
	}
}
