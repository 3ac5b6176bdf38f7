package resp

import "errors"

// Framing errors a Decoder can report. These are distinct from a decoded
// Error Value (a server reply classified as an error): they mean the byte
// stream itself does not conform to RESP2, not that the server complained.
var (
	ErrUnknownPrefix   = errors.New("resp: unknown type prefix")
	ErrBadLineEnding   = errors.New("resp: bad line ending, expected CRLF")
	ErrInvalidInteger  = errors.New("resp: invalid integer")
	ErrInvalidArrayLen = errors.New("resp: invalid array length")
	ErrInvalidBulkLen  = errors.New("resp: invalid bulk string length")
	ErrFrameTooLarge   = errors.New("resp: frame exceeds maximum size")
)

// MaxBulkLen bounds a single bulk string payload; DefaultMaxArrayLen bounds
// the element count of a single array frame. MaxLineLen bounds a single
// non-bulk line (simple string/error/integer/length header bytes) before
// a CRLF must appear. All three guard against a malicious or corrupt
// stream forcing unbounded allocation or buffer growth.
const (
	MaxBulkLen         = 512 * 1024 * 1024
	DefaultMaxArrayLen = 1024 * 1024
	MaxLineLen         = 64 * 1024
)
