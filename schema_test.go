package dechib

import (
	"strings"
	"testing"
)

func TestColumnPredicates(t *testing.T) {
	plain := &ColumnDescriptor{Datatype: DataTypeText, NotNull: true}
	if !plain.NeedsValue() || plain.ShouldGenerate() {
		t.Errorf("** a plain column must be supplied and cannot be generated")
	}

	london := TextValue("London")
	defaulted := &ColumnDescriptor{Datatype: DataTypeText, Default: &DefaultExpr{Literal: &london}}
	if defaulted.NeedsValue() || !defaulted.ShouldGenerate() {
		t.Errorf("** a defaulted column is generatable")
	}

	counter := &ColumnDescriptor{Datatype: DataTypeUnsignedInt, AutoIncrement: true}
	if counter.NeedsValue() || !counter.ShouldGenerate() {
		t.Errorf("** an auto-increment column is generatable")
	}
}

func TestColumnNamesSorted(t *testing.T) {
	cds := usersFixture().Columns
	deepEqual(t, cds.Names(), []string{"city", "id", "name"})
}

func TestRowKey(t *testing.T) {
	key := must(usersFixture().Columns.rowKey())
	deepEqual(t, key, "city/name")

	allPK := ColumnDescriptors{
		"a": {Datatype: DataTypeUnsignedInt, PrimaryKey: true},
		"b": {Datatype: DataTypeUnsignedInt, PrimaryKey: true},
	}
	_, err := allPK.rowKey()
	iserr(t, err, ErrNoRowKey)
}

func TestInsertOptionsRecord(t *testing.T) {
	op := &InsertOptions{
		Table:   "users",
		Columns: []string{"name", "city"},
		Values: [][]Value{
			{TextValue("Daniel"), TextValue("Oslo")},
			{TextValue("Ada")},
		},
	}

	rec := must(op.record(0))
	valueEqual(t, *rec["name"], TextValue("Daniel"))
	valueEqual(t, *rec["city"], TextValue("Oslo"))

	_, err := op.record(1)
	iserr(t, err, ErrRowWidth)
}

func TestColumnDescriptorsRoundTrip(t *testing.T) {
	columns := usersFixture().Columns
	raw := encodeMsgpack(columns)
	var got ColumnDescriptors
	ensure(decodeMsgpack(raw, &got))
	deepEqual(t, got, columns)
}

func TestDescribeColumns(t *testing.T) {
	out := DescribeColumns(usersFixture().Columns)
	for _, want := range []string{
		"id uint PRIMARY KEY AUTO_INCREMENT NOT NULL UNIQUE",
		"name text NOT NULL",
		`city text NOT NULL DEFAULT "London"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("** missing %q in:\n%s", want, out)
		}
	}
}
