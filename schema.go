package dechib

import (
	"fmt"
	"slices"
	"strings"
)

// ForeignKey names the (table, column) a column references. The target
// column must be a primary key of the target table.
type ForeignKey struct {
	Table  string `msgpack:"t"`
	Column string `msgpack:"c"`
}

// DefaultExpr is a column default. Only literal constants are evaluated;
// a non-literal expression is carried verbatim in Raw and rejected at
// insert time with ErrUnsupportedDefault.
type DefaultExpr struct {
	Literal *Value `msgpack:"v"`
	Raw     string `msgpack:"r"`
}

// ColumnDescriptor is the persisted per-column schema.
type ColumnDescriptor struct {
	Datatype      DataType     `msgpack:"dt"`
	NotNull       bool         `msgpack:"nn"`
	Unique        bool         `msgpack:"uq"`
	PrimaryKey    bool         `msgpack:"pk"`
	AutoIncrement bool         `msgpack:"ai"`
	Default       *DefaultExpr `msgpack:"df"`
	ForeignKey    *ForeignKey  `msgpack:"fk"`
}

// NeedsValue reports whether every insert must supply this column: it has
// no default and is not auto-increment, so nothing can synthesize it.
func (desc *ColumnDescriptor) NeedsValue() bool {
	return desc.Default == nil && !desc.AutoIncrement
}

// ShouldGenerate reports whether the column may be omitted from an insert
// and filled in by the engine.
func (desc *ColumnDescriptor) ShouldGenerate() bool {
	return desc.Default != nil || desc.AutoIncrement
}

// ValueMatchesType checks a runtime value against the declared datatype.
// Every numeric datatype accepts the number variant; nothing is coerced.
func (desc *ColumnDescriptor) ValueMatchesType(v Value) bool {
	switch desc.Datatype {
	case DataTypeText:
		return v.Kind() == KindText
	case DataTypeBoolean:
		return v.Kind() == KindBoolean
	case DataTypeUnsignedInt, DataTypeInt, DataTypeDecimal:
		return v.Kind() == KindNumber
	default:
		return false
	}
}

func (desc *ColumnDescriptor) describe() string {
	var buf strings.Builder
	buf.WriteString(desc.Datatype.String())
	if desc.PrimaryKey {
		buf.WriteString(" PRIMARY KEY")
	}
	if desc.AutoIncrement {
		buf.WriteString(" AUTO_INCREMENT")
	}
	if desc.NotNull {
		buf.WriteString(" NOT NULL")
	}
	if desc.Unique {
		buf.WriteString(" UNIQUE")
	}
	if desc.Default != nil {
		if desc.Default.Literal != nil {
			fmt.Fprintf(&buf, " DEFAULT %s", *desc.Default.Literal)
		} else {
			fmt.Fprintf(&buf, " DEFAULT (%s)", desc.Default.Raw)
		}
	}
	if fk := desc.ForeignKey; fk != nil {
		fmt.Fprintf(&buf, " REFERENCES %s(%s)", fk.Table, fk.Column)
	}
	return buf.String()
}

// ColumnDescriptors is a table schema: column name → descriptor. Ordered
// iteration (key derivation, row fill, rendering) always goes by sorted
// name, which is also the order msgpack persists the map in.
type ColumnDescriptors map[string]*ColumnDescriptor

// Names returns the column names in iteration order.
func (cds ColumnDescriptors) Names() []string {
	names := make([]string, 0, len(cds))
	for name := range cds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// rowKey derives the storage key shared by the table's rows: the names of
// all non-primary-key columns, in schema order, joined by '/'.
//
// TODO: derive the key from the row's primary key values instead; as is,
// the key depends only on the schema, so every row of a table lands on the
// same key and later inserts overwrite earlier ones.
func (cds ColumnDescriptors) rowKey() (string, error) {
	var buf strings.Builder
	for _, name := range cds.Names() {
		if cds[name].PrimaryKey {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('/')
		}
		buf.WriteString(name)
	}
	if buf.Len() == 0 {
		return "", fmt.Errorf("%w: every column is a primary key", ErrNoRowKey)
	}
	return buf.String(), nil
}

// CreateTableOptions is the request shape for creating a table.
type CreateTableOptions struct {
	Name    string
	Columns ColumnDescriptors
}

// InsertOptions is the request shape for inserting rows: an ordered column
// list and one positional value list per row, aligned to the columns.
type InsertOptions struct {
	Table   string
	Columns []string
	Values  [][]Value
}

// record gathers row i into a Record of the supplied columns.
func (op *InsertOptions) record(i int) (Record, error) {
	row := op.Values[i]
	if len(row) != len(op.Columns) {
		return nil, tableErrf(op.Table, "", ErrRowWidth,
			"row %d has %d values for %d columns", i, len(row), len(op.Columns))
	}
	rec := make(Record, len(op.Columns))
	for j, col := range op.Columns {
		v := row[j]
		rec[col] = &v
	}
	return rec, nil
}

// Record is one row as gathered from an insert request plus all generated
// values, keyed by column name. Values are shared by pointer and never
// mutated; a constant default is the same *Value across every row of a call.
type Record map[string]*Value

func (rec Record) names() []string {
	names := make([]string, 0, len(rec))
	for name := range rec {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (rec Record) String() string {
	var buf strings.Builder
	buf.WriteByte('{')
	for i, name := range rec.names() {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: %s", name, *rec[name])
	}
	buf.WriteByte('}')
	return buf.String()
}
