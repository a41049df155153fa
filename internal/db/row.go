package db

import (
	"fmt"
	"strconv"
	"time"
)

// Row maps column names to the values the driver scanned.
type Row map[string]any

func (r Row) Int64(col string) (int64, error) {
	switch v := r[col].(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	case nil:
		return 0, fmt.Errorf("column %q is null", col)
	default:
		return 0, fmt.Errorf("column %q: unexpected type %T", col, v)
	}
}

func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (r Row) Time(col string) (time.Time, error) {
	switch v := r[col].(type) {
	case time.Time:
		return v, nil
	case []byte:
		return time.Parse(time.RFC3339Nano, string(v))
	case string:
		return time.Parse(time.RFC3339Nano, v)
	case nil:
		return time.Time{}, fmt.Errorf("column %q is null", col)
	default:
		return time.Time{}, fmt.Errorf("column %q: unexpected type %T", col, v)
	}
}

// NullTime is Time that yields nil for SQL NULL.
func (r Row) NullTime(col string) (*time.Time, error) {
	if r[col] == nil {
		return nil, nil
	}
	t, err := r.Time(col)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
