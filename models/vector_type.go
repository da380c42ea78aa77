package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/lib/pq"
)

// Vector is a fixed-dimensional real vector backed by a native Postgres
// real[] column. lib/pq has no float32 array codec, so values are
// round-tripped through its float64 array codec and narrowed on Scan.
type Vector []float32

// Value implements driver.Valuer.
func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	f64 := make([]float64, len(v))
	for i, x := range v {
		f64[i] = float64(x)
	}
	return pq.Array(f64).Value()
}

// Scan implements sql.Scanner.
func (v *Vector) Scan(src any) error {
	if src == nil {
		*v = nil
		return nil
	}
	var f64 pq.Float64Array
	if err := f64.Scan(src); err != nil {
		return fmt.Errorf("scanning vector column: %w", err)
	}
	out := make(Vector, len(f64))
	for i, x := range f64 {
		out[i] = float32(x)
	}
	*v = out
	return nil
}

// GormDataType tells GORM's migrator to declare this column as a native
// Postgres real array rather than a serialized blob.
func (Vector) GormDataType() string {
	return "real[]"
}
