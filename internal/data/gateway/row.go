package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"gorm.io/datatypes"

	"github.com/yungbote/accountsync/internal/domain/accounts"
)

type rowState int

const (
	rowLoaded rowState = iota
	rowNew
	rowInserted
)

// Row is one store record addressed by column name.
// Rows from GetRowOrNew and NewRow are tracked and written back on Save;
// rows from GetView are read-only snapshots.
type Row struct {
	table  string
	values map[string]any
	dirty  map[string]struct{}
	state  rowState
}

// NewRowFromValues builds a detached, loaded row. Useful for fakes and tests.
func NewRowFromValues(table string, values map[string]any) *Row {
	r := &Row{table: table, values: make(map[string]any, len(values)), dirty: map[string]struct{}{}}
	for k, v := range values {
		r.values[strings.ToLower(k)] = normalize(v)
	}
	return r
}

func (r *Row) Table() string { return r.table }

func (r *Row) Has(col string) bool {
	_, ok := r.values[strings.ToLower(col)]
	return ok
}

func (r *Row) Get(col string) any {
	return r.values[strings.ToLower(col)]
}

// Set stages a column value. Nil pointers are stored as NULL.
func (r *Row) Set(col string, v any) {
	col = strings.ToLower(col)
	r.values[col] = normalize(v)
	r.dirty[col] = struct{}{}
}

// ID returns the surrogate key, following the <table>_id convention.
func (r *Row) ID() (int64, error) {
	if r.table == "" {
		return 0, fmt.Errorf("row has no table")
	}
	return r.Int64(accounts.PrimaryKey(r.table))
}

func (r *Row) String(col string) (string, error) {
	switch v := r.Get(col).(type) {
	case nil:
		return "", nil
	case []byte:
		return string(v), nil
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return "", fmt.Errorf("column %s: %w", col, err)
		}
		return s, nil
	}
}

func (r *Row) Int64(col string) (int64, error) {
	v := r.Get(col)
	if v == nil {
		return 0, fmt.Errorf("column %s is null", col)
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", col, err)
	}
	return n, nil
}

func (r *Row) OptionalInt(col string) (*int, error) {
	v := r.Get(col)
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", col, err)
	}
	return &n, nil
}

func (r *Row) OptionalDecimal(col string) (*decimal.Decimal, error) {
	var (
		d   decimal.Decimal
		err error
	)
	switch v := r.Get(col).(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		d = v
	case float64:
		d = decimal.NewFromFloat(v)
	case float32:
		d = decimal.NewFromFloat32(v)
	case int64:
		d = decimal.NewFromInt(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case []byte:
		d, err = decimal.NewFromString(string(v))
	default:
		var s string
		s, err = cast.ToStringE(v)
		if err == nil {
			d, err = decimal.NewFromString(s)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", col, err)
	}
	return &d, nil
}

func (r *Row) OptionalTime(col string) (*time.Time, error) {
	v := r.Get(col)
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", col, err)
	}
	return &t, nil
}

// JSON returns the column as raw JSON; nil when the column is null or empty.
func (r *Row) JSON(col string) ([]byte, error) {
	var raw []byte
	switch v := r.Get(col).(type) {
	case nil:
		return nil, nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case json.RawMessage:
		raw = v
	case datatypes.JSON:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		raw = b
	}
	if len(raw) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("column %s: invalid json", col)
	}
	return raw, nil
}

func (r *Row) dirtyValues() map[string]any {
	out := make(map[string]any, len(r.dirty))
	for col := range r.dirty {
		out[col] = r.values[col]
	}
	return out
}

func (r *Row) clearDirty() {
	r.dirty = map[string]struct{}{}
}

// normalize unwraps the pointer and nullable forms produced by callers and by gorm's map
// scans, so getters only ever see plain values or nil.
func normalize(v any) any {
	switch t := v.(type) {
	case *any:
		// map scans hand back columns without a concrete Go type (json, numeric) boxed this way.
		if t == nil {
			return nil
		}
		return normalize(*t)
	case *decimal.Decimal:
		if t == nil {
			return nil
		}
		return *t
	case decimal.NullDecimal:
		if !t.Valid {
			return nil
		}
		return t.Decimal
	case *time.Time:
		if t == nil {
			return nil
		}
		return *t
	case *int:
		if t == nil {
			return nil
		}
		return *t
	case *int64:
		if t == nil {
			return nil
		}
		return *t
	case *string:
		if t == nil {
			return nil
		}
		return *t
	default:
		return v
	}
}
