package dechib

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// encodeMsgpack serializes obj using a pooled encoder with sorted map keys,
// so that the same logical record always produces the same bytes. Encoding
// can only fail for types this package never stores, so a failure panics.
func encodeMsgpack(obj any) []byte {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	enc.Reset(&buf)
	enc.SetSortMapKeys(true)
	err := enc.Encode(obj)
	msgpack.PutEncoder(enc)
	if err != nil {
		panic(fmt.Errorf("dechib: failed to encode %T: %w", obj, err))
	}
	return buf.Bytes()
}

func decodeMsgpack(data []byte, objPtr any) error {
	var r bytes.Reader
	r.Reset(data)
	dec := msgpack.GetDecoder()
	dec.Reset(&r)
	err := dec.Decode(objPtr)
	msgpack.PutDecoder(dec)
	if err != nil {
		return dataErrf(data, err, "failed to decode msgpack into %T", objPtr)
	}
	return nil
}
