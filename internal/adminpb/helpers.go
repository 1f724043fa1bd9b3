// Package adminpb defines the wire messages for the admin protocol and
// hand-implements their marshaling using google.golang.org/protobuf's
// low-level wire primitives (protowire). There is no .proto file or protoc
// step in this module; these types play the role generated code would
// normally play, encoding to and decoding from the same tag/varint/length-
// delimited wire format protoc-generated code would produce.
package adminpb

import (
	"fmt"
	"reflect"

	"google.golang.org/protobuf/encoding/protowire"
)

// marshaler is satisfied by every message in this package.
type marshaler interface {
	Marshal() ([]byte, error)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendInt32Field(b []byte, num protowire.Number, v int32) []byte {
	return appendVarintField(b, num, uint64(uint32(v)))
}

func appendInt64Field(b []byte, num protowire.Number, v int64) []byte {
	return appendVarintField(b, num, uint64(v))
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarintField(b, num, 1)
}

// appendRepeatedInt32Field appends an unpacked repeated varint field: one
// tag+varint pair per element, matching what protoc emits for a repeated
// scalar field without the [packed=true] option.
func appendRepeatedInt32Field(b []byte, num protowire.Number, vs []int32) []byte {
	for _, v := range vs {
		b = protowire.AppendTag(b, num, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(uint32(v)))
	}
	return b
}

func appendMessageField(b []byte, num protowire.Number, m marshaler) ([]byte, error) {
	if m == nil {
		return b, nil
	}
	// Callers pass typed pointers, so an absent field arrives as a non-nil
	// interface holding a nil pointer; it is omitted the same way.
	if v := reflect.ValueOf(m); v.Kind() == reflect.Pointer && v.IsNil() {
		return b, nil
	}
	sub, err := m.Marshal()
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, sub), nil
}

// consumeTag reads one (field number, wire type) pair, returning the
// number of bytes consumed or an error if the buffer is malformed.
func consumeTag(b []byte) (protowire.Number, protowire.Type, int, error) {
	num, typ, n := protowire.ConsumeTag(b)
	if n < 0 {
		return 0, 0, 0, fmt.Errorf("adminpb: malformed tag: %w", protowire.ParseError(n))
	}
	return num, typ, n, nil
}

func consumeBytes(b []byte) ([]byte, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, fmt.Errorf("adminpb: malformed bytes field: %w", protowire.ParseError(n))
	}
	return append([]byte(nil), v...), n, nil
}

func consumeString(b []byte) (string, int, error) {
	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return "", 0, fmt.Errorf("adminpb: malformed string field: %w", protowire.ParseError(n))
	}
	return v, n, nil
}

func consumeVarint(b []byte) (uint64, int, error) {
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, fmt.Errorf("adminpb: malformed varint field: %w", protowire.ParseError(n))
	}
	return v, n, nil
}

func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, fmt.Errorf("adminpb: malformed field %d: %w", num, protowire.ParseError(n))
	}
	return n, nil
}
