package dataset

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"tabscope/domain/core"
)

// LogicalType is the inferred type tag every downstream component
// dispatches on. It is assigned once by the schema prober and never
// re-derived from raw values afterward.
type LogicalType string

const (
	TypeInteger     LogicalType = "integer"
	TypeFloat       LogicalType = "float"
	TypeBoolean     LogicalType = "boolean"
	TypeCategorical LogicalType = "categorical"
	TypeDatetime    LogicalType = "datetime"
	TypeUnknown     LogicalType = "unknown"
)

// IsNumeric reports whether the type supports numeric statistics
func (t LogicalType) IsNumeric() bool {
	return t == TypeInteger || t == TypeFloat
}

// Value represents a single typed cell with deterministic coercion
type Value struct {
	Type         ValueType  `json:"type"`
	StringVal    *string    `json:"string_val,omitempty"`
	NumericVal   *float64   `json:"numeric_val,omitempty"`
	BooleanVal   *bool      `json:"boolean_val,omitempty"`
	TimestampVal *time.Time `json:"timestamp_val,omitempty"`
	IsMissing    bool       `json:"is_missing"`
}

// ValueType defines the storage type for values
type ValueType string

const (
	ValueTypeString    ValueType = "string"
	ValueTypeNumeric   ValueType = "numeric"
	ValueTypeBoolean   ValueType = "boolean"
	ValueTypeTimestamp ValueType = "timestamp"
	ValueTypeMissing   ValueType = "missing"
)

// NewStringValue creates a string value
func NewStringValue(s string) Value {
	if s == "" {
		return Value{Type: ValueTypeMissing, IsMissing: true}
	}
	return Value{Type: ValueTypeString, StringVal: &s}
}

// NewNumericValue creates a numeric value
func NewNumericValue(n float64) Value {
	return Value{Type: ValueTypeNumeric, NumericVal: &n}
}

// NewBooleanValue creates a boolean value
func NewBooleanValue(b bool) Value {
	return Value{Type: ValueTypeBoolean, BooleanVal: &b}
}

// NewTimestampValue creates a timestamp value
func NewTimestampValue(t time.Time) Value {
	return Value{Type: ValueTypeTimestamp, TimestampVal: &t}
}

// NewMissingValue creates a missing value
func NewMissingValue() Value {
	return Value{Type: ValueTypeMissing, IsMissing: true}
}

// String returns the string representation of the value
func (v Value) String() string {
	switch v.Type {
	case ValueTypeString:
		if v.StringVal != nil {
			return *v.StringVal
		}
	case ValueTypeNumeric:
		if v.NumericVal != nil {
			return fmt.Sprintf("%g", *v.NumericVal)
		}
	case ValueTypeBoolean:
		if v.BooleanVal != nil {
			return fmt.Sprintf("%t", *v.BooleanVal)
		}
	case ValueTypeTimestamp:
		if v.TimestampVal != nil {
			return v.TimestampVal.Format(time.RFC3339)
		}
	case ValueTypeMissing:
		return "<missing>"
	}
	return "<invalid>"
}

// Column holds one named sequence of raw values. Raw entries are strings
// as delivered by the loading collaborator; empty-string entries and
// recognized null sentinels are treated as missing by the prober.
type Column struct {
	Name   core.ColumnKey `json:"name"`
	Values []Value        `json:"values"`
}

// Len returns the number of entries including missing ones
func (c *Column) Len() int {
	return len(c.Values)
}

// NullCount returns the number of missing entries
func (c *Column) NullCount() int {
	nulls := 0
	for i := range c.Values {
		if c.Values[i].IsMissing {
			nulls++
		}
	}
	return nulls
}

// NullIndexes returns the row indices of missing entries in ascending order
func (c *Column) NullIndexes() []int {
	var idx []int
	for i := range c.Values {
		if c.Values[i].IsMissing {
			idx = append(idx, i)
		}
	}
	return idx
}

// SchemaEntry is the prober's verdict for one column. Produced once per
// analysis run and never mutated afterward.
type SchemaEntry struct {
	Name          core.ColumnKey `json:"name"`
	Type          LogicalType    `json:"type"`
	Nullable      bool           `json:"nullable"`
	DistinctCount int            `json:"distinct_count"`
	NullCount     int            `json:"null_count"`
}

// Dataset is an ordered sequence of equal-length named columns.
// It is immutable for the duration of an analysis run.
type Dataset struct {
	Name    string    `json:"name"`
	Columns []*Column `json:"columns"`
	rows    int
	byName  map[core.ColumnKey]*Column
}

// New builds a Dataset and validates the uniform-length invariant.
// A violation is a boundary fault: the loading collaborator promised
// validated input, so it is reported as a dataset access error.
func New(name string, columns []*Column) (*Dataset, error) {
	ds := &Dataset{
		Name:    name,
		Columns: columns,
		byName:  make(map[core.ColumnKey]*Column, len(columns)),
	}
	for i, col := range columns {
		if col == nil {
			return nil, core.NewDatasetAccessError(fmt.Sprintf("column %d is nil", i), nil)
		}
		if _, dup := ds.byName[col.Name]; dup {
			return nil, core.NewDatasetAccessError(fmt.Sprintf("duplicate column name %q", col.Name), nil)
		}
		if i == 0 {
			ds.rows = col.Len()
		} else if col.Len() != ds.rows {
			return nil, core.NewDatasetAccessError(
				fmt.Sprintf("column %q has %d rows, expected %d", col.Name, col.Len(), ds.rows), nil)
		}
		ds.byName[col.Name] = col
	}
	return ds, nil
}

// Rows returns the row count shared by every column
func (d *Dataset) Rows() int {
	return d.rows
}

// ColumnCount returns the number of columns
func (d *Dataset) ColumnCount() int {
	return len(d.Columns)
}

// Column returns the named column, or nil when absent
func (d *Dataset) Column(name core.ColumnKey) *Column {
	return d.byName[name]
}

// ColumnNames returns names in dataset order
func (d *Dataset) ColumnNames() []core.ColumnKey {
	names := make([]core.ColumnKey, len(d.Columns))
	for i, col := range d.Columns {
		names[i] = col.Name
	}
	return names
}

// ContentHash computes a stable hash over every cell of every column.
// Column order does not affect the hash; row order does.
func (d *Dataset) ContentHash() core.ContentHash {
	segments := make(map[string][]byte, len(d.Columns))
	for _, col := range d.Columns {
		buf := make([]byte, 0, len(col.Values)*8)
		for i := range col.Values {
			v := &col.Values[i]
			switch {
			case v.IsMissing:
				buf = append(buf, 0x00)
			case v.NumericVal != nil:
				var b [8]byte
				binary.LittleEndian.PutUint64(b[:], math.Float64bits(*v.NumericVal))
				buf = append(buf, 0x01)
				buf = append(buf, b[:]...)
			default:
				buf = append(buf, 0x02)
				buf = append(buf, []byte(v.String())...)
			}
			buf = append(buf, 0x1e)
		}
		segments[col.Name.String()] = buf
	}
	return core.ContentHash(core.ComputeKeyedHash(segments))
}
