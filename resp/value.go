// Package resp implements the wire encoding and incremental decoding of
// the RESP2 protocol: requests are arrays of bulk strings, replies are one
// of simple string, error, integer, bulk string, or array.
package resp

// Kind identifies the wire type of a decoded Value.
type Kind int

const (
	SimpleString Kind = iota
	Error
	Integer
	BulkString
	Array
)

func (k Kind) String() string {
	switch k {
	case SimpleString:
		return "SimpleString"
	case Error:
		return "Error"
	case Integer:
		return "Integer"
	case BulkString:
		return "BulkString"
	case Array:
		return "Array"
	default:
		return "Unknown"
	}
}

// Value is a fully decoded RESP reply.
//
// Simple strings and errors always decode to Str. Bulk strings decode to
// Str when the Decoder was constructed with a text Encoding, and to Bytes
// otherwise (Decoder.Gets never sets both). Null bulk strings and null
// arrays are represented with Null set and no payload.
type Value struct {
	Kind  Kind
	Str   string
	Bytes []byte
	Int   int64
	Array []Value
	Null  bool

	// Text records whether a BulkString Value was decoded in text mode,
	// i.e. whether Str (true) or Bytes (false) carries the payload.
	Text bool
}

// IsError reports whether v is a server error reply.
func (v Value) IsError() bool {
	return v.Kind == Error
}

// equalToken reports whether v is the bulk-string reply carrying token,
// comparing as text or bytes depending on how v itself was decoded so the
// comparison mode always matches the Decoder's configured encoding.
func (v Value) equalToken(token string) bool {
	if v.Kind != BulkString || v.Null {
		return false
	}
	if v.Text {
		return v.Str == token
	}
	return string(v.Bytes) == token
}
