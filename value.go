package dechib

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

// DataType is the declared type of a column. Values are checked against it on
// insert; there is no implicit coercion between types.
type DataType int

const (
	DataTypeText DataType = iota + 1
	DataTypeBoolean
	DataTypeUnsignedInt
	DataTypeInt
	DataTypeDecimal
)

func (dt DataType) String() string {
	switch dt {
	case DataTypeText:
		return "text"
	case DataTypeBoolean:
		return "boolean"
	case DataTypeUnsignedInt:
		return "uint"
	case DataTypeInt:
		return "int"
	case DataTypeDecimal:
		return "decimal"
	default:
		return fmt.Sprintf("DataType(%d)", int(dt))
	}
}

// ParseDataType converts a textual type name (as used in schema files) into
// a DataType. It accepts the common aliases for numeric types.
func ParseDataType(s string) (DataType, error) {
	switch s {
	case "text", "string":
		return DataTypeText, nil
	case "boolean", "bool":
		return DataTypeBoolean, nil
	case "uint", "unsigned":
		return DataTypeUnsignedInt, nil
	case "int", "integer":
		return DataTypeInt, nil
	case "decimal", "numeric":
		return DataTypeDecimal, nil
	default:
		return 0, fmt.Errorf("dechib: unknown data type %q", s)
	}
}

// ValueKind identifies the variant held by a Value.
type ValueKind int

const (
	KindText ValueKind = iota + 1
	KindNumber
	KindBoolean
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is a tagged union over the scalar types rows may hold: text,
// arbitrary-precision decimal numbers, and booleans. A Value is immutable
// once constructed; share pointers freely.
type Value struct {
	kind ValueKind
	text string
	num  decimal.Decimal
	b    bool
}

func TextValue(s string) Value {
	return Value{kind: KindText, text: s}
}

func NumberValue(d decimal.Decimal) Value {
	return Value{kind: KindNumber, num: d}
}

// Uint64Value wraps an unsigned integer (e.g. a freshly assigned
// auto-increment id) as a Number value.
func Uint64Value(n uint64) Value {
	return NumberValue(decimal.NewFromBigInt(new(big.Int).SetUint64(n), 0))
}

func BooleanValue(b bool) Value {
	return Value{kind: KindBoolean, b: b}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) Text() (string, bool) {
	return v.text, v.kind == KindText
}

func (v Value) Number() (decimal.Decimal, bool) {
	return v.num, v.kind == KindNumber
}

func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBoolean
}

// Equal compares two values structurally: same variant, same payload.
// Numbers compare by numeric value, so 1.0 equals 1.00.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == w.text
	case KindNumber:
		return v.num.Equal(w.num)
	case KindBoolean:
		return v.b == w.b
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindText:
		return strconv.Quote(v.text)
	case KindNumber:
		return v.num.String()
	case KindBoolean:
		return strconv.FormatBool(v.b)
	default:
		return "<zero>"
	}
}

var (
	_ msgpack.CustomEncoder = Value{}
	_ msgpack.CustomDecoder = (*Value)(nil)
)

// EncodeMsgpack encodes the value as a [kind, payload] pair. Numbers travel
// as their canonical decimal string so that precision survives round-trips.
func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeInt(int64(v.kind)); err != nil {
		return err
	}
	switch v.kind {
	case KindText:
		return enc.EncodeString(v.text)
	case KindNumber:
		return enc.EncodeString(v.num.String())
	case KindBoolean:
		return enc.EncodeBool(v.b)
	default:
		return fmt.Errorf("cannot encode zero Value")
	}
}

func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 2 {
		return fmt.Errorf("malformed value: %d elements", n)
	}
	k, err := dec.DecodeInt64()
	if err != nil {
		return err
	}
	switch ValueKind(k) {
	case KindText:
		s, err := dec.DecodeString()
		if err != nil {
			return err
		}
		*v = TextValue(s)
	case KindNumber:
		s, err := dec.DecodeString()
		if err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return fmt.Errorf("malformed number %q: %w", s, err)
		}
		*v = NumberValue(d)
	case KindBoolean:
		b, err := dec.DecodeBool()
		if err != nil {
			return err
		}
		*v = BooleanValue(b)
	default:
		return fmt.Errorf("unknown value kind %d", k)
	}
	return nil
}

var (
	_ json.Marshaler   = Value{}
	_ json.Unmarshaler = (*Value)(nil)
)

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		return []byte(v.num.String()), nil
	case KindBoolean:
		return json.Marshal(v.b)
	default:
		return nil, fmt.Errorf("dechib: cannot marshal zero Value")
	}
}

// UnmarshalJSON maps JSON scalars onto value variants: strings become text,
// numbers become decimals, booleans become booleans. Nulls are rejected
// because rows have no null representation.
func (v *Value) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("dechib: empty value")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextValue(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BooleanValue(b)
	case 'n':
		return fmt.Errorf("dechib: null is not a supported value")
	default:
		d, err := decimal.NewFromString(string(data))
		if err != nil {
			return fmt.Errorf("dechib: %q is not a valid value: %w", data, err)
		}
		*v = NumberValue(d)
	}
	return nil
}
