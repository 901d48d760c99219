package dechib

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValueMatchesType(t *testing.T) {
	text := TextValue("hi")
	num := NumberValue(decimal.NewFromInt(42))
	boolean := BooleanValue(true)

	cases := []struct {
		dt    DataType
		value Value
		want  bool
	}{
		{DataTypeText, text, true},
		{DataTypeText, boolean, false},
		{DataTypeText, num, false},
		{DataTypeBoolean, boolean, true},
		{DataTypeBoolean, text, false},
		{DataTypeUnsignedInt, num, true},
		{DataTypeInt, num, true},
		{DataTypeDecimal, num, true},
		{DataTypeUnsignedInt, text, false},
		{DataTypeDecimal, boolean, false},
	}
	for _, c := range cases {
		desc := &ColumnDescriptor{Datatype: c.dt}
		if got := desc.ValueMatchesType(c.value); got != c.want {
			t.Errorf("** %s column, %s value: got %v, wanted %v", c.dt, c.value.Kind(), got, c.want)
		}
	}

	// A zero Value matches nothing.
	if (&ColumnDescriptor{Datatype: DataTypeText}).ValueMatchesType(Value{}) {
		t.Errorf("** zero Value matched a text column")
	}
}

func TestValueEqual(t *testing.T) {
	if !TextValue("a").Equal(TextValue("a")) {
		t.Errorf("** equal texts not equal")
	}
	if TextValue("a").Equal(TextValue("b")) {
		t.Errorf("** distinct texts equal")
	}
	if TextValue("true").Equal(BooleanValue(true)) {
		t.Errorf("** cross-variant values equal")
	}

	a := NumberValue(must(decimal.NewFromString("1.0")))
	b := NumberValue(must(decimal.NewFromString("1.00")))
	if !a.Equal(b) {
		t.Errorf("** 1.0 != 1.00")
	}
}

func TestValueMsgpackRoundTrip(t *testing.T) {
	values := []Value{
		TextValue("Daniel"),
		TextValue(""),
		BooleanValue(false),
		NumberValue(must(decimal.NewFromString("-123.4500"))),
		Uint64Value(1<<63 + 5),
	}
	for _, v := range values {
		raw := encodeMsgpack(v)
		var got Value
		ensure(decodeMsgpack(raw, &got))
		valueEqual(t, got, v)
	}
}

func TestValueJSON(t *testing.T) {
	var rows [][]Value
	ensure(json.Unmarshal([]byte(`[["Daniel", 19.99, true]]`), &rows))
	valueEqual(t, rows[0][0], TextValue("Daniel"))
	valueEqual(t, rows[0][1], NumberValue(must(decimal.NewFromString("19.99"))))
	valueEqual(t, rows[0][2], BooleanValue(true))

	var v Value
	if err := json.Unmarshal([]byte(`null`), &v); err == nil {
		t.Errorf("** null decoded into a Value")
	}

	out := string(must(json.Marshal(rows[0])))
	deepEqual(t, out, `["Daniel",19.99,true]`)
}

func TestRecordRoundTrip(t *testing.T) {
	name := TextValue("Daniel")
	id := Uint64Value(7)
	active := BooleanValue(true)
	rec := Record{"name": &name, "id": &id, "active": &active}

	raw := encodeMsgpack(rec)
	var got Record
	ensure(decodeMsgpack(raw, &got))

	deepEqual(t, len(got), 3)
	for _, col := range rec.names() {
		valueEqual(t, *got[col], *rec[col])
	}
}

func TestParseDataType(t *testing.T) {
	for in, want := range map[string]DataType{
		"text":    DataTypeText,
		"string":  DataTypeText,
		"bool":    DataTypeBoolean,
		"uint":    DataTypeUnsignedInt,
		"integer": DataTypeInt,
		"numeric": DataTypeDecimal,
	} {
		deepEqual(t, must(ParseDataType(in)), want)
	}
	if _, err := ParseDataType("blob"); err == nil {
		t.Errorf("** parsed an unknown type name")
	}
}
