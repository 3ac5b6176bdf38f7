package resp

import "strconv"

// Decoder is an incremental RESP2 reply sink/source. Callers append raw
// bytes with Feed and repeatedly call Gets; Gets either returns the next
// fully decoded Value or reports that more input is needed (incomplete),
// without consuming anything from the internal buffer in that case, so
// the caller can Feed more bytes and retry. This is the "external
// capability" the client's read path is built on top of (see Connection.ReadOne
// and the pipeline harvest loop).
//
// A Decoder is not safe for concurrent use; it is always owned by exactly
// one Connection.
type Decoder struct {
	enc Encoding
	buf []byte
	pos int
}

// NewDecoder constructs a Decoder that decodes bulk-string replies under
// enc. Simple strings and errors always decode to text regardless of enc.
func NewDecoder(enc Encoding) *Decoder {
	return &Decoder{enc: enc}
}

// Encoding returns the Decoder's configured bulk-string encoding.
func (d *Decoder) Encoding() Encoding { return d.enc }

// Feed appends b to the Decoder's internal buffer.
func (d *Decoder) Feed(b []byte) {
	d.buf = append(d.buf, b...)
}

// Gets attempts to decode the next reply from buffered input.
//
//   - incomplete==true means more bytes are required; v and err are zero.
//   - err!=nil means the buffered bytes violate RESP2 framing; the Decoder
//     should not be reused afterward (the stream is desynchronized).
//   - otherwise v holds the decoded reply (which may itself have Kind==Error
//     for a server error reply, since Gets never raises; it is the caller's
//     job to treat that as a failure).
func (d *Decoder) Gets() (v Value, incomplete bool, err error) {
	val, next, incomplete, err := d.parse(d.pos)
	if err != nil || incomplete {
		return Value{}, incomplete, err
	}
	d.pos = next
	d.compact()
	return val, false, nil
}

// compact drops already-consumed bytes once they make up a meaningful
// fraction of the buffer, so a long-lived Decoder on a busy pipeline
// connection does not grow its backing array without bound.
func (d *Decoder) compact() {
	if d.pos == 0 {
		return
	}
	if d.pos == len(d.buf) {
		d.buf = d.buf[:0]
		d.pos = 0
		return
	}
	if d.pos < 64*1024 {
		return
	}
	d.buf = append(d.buf[:0], d.buf[d.pos:]...)
	d.pos = 0
}

// parse decodes one Value starting at offset pos in d.buf. It never
// mutates d.pos itself (Gets commits that on success) so an incomplete
// result leaves the Decoder retry-safe.
func (d *Decoder) parse(pos int) (Value, int, bool, error) {
	if pos >= len(d.buf) {
		return Value{}, pos, true, nil
	}
	switch d.buf[pos] {
	case '+':
		line, next, incomplete, err := d.readLine(pos + 1)
		if incomplete || err != nil {
			return Value{}, pos, incomplete, err
		}
		return Value{Kind: SimpleString, Str: string(line)}, next, false, nil
	case '-':
		line, next, incomplete, err := d.readLine(pos + 1)
		if incomplete || err != nil {
			return Value{}, pos, incomplete, err
		}
		return Value{Kind: Error, Str: string(line)}, next, false, nil
	case ':':
		line, next, incomplete, err := d.readLine(pos + 1)
		if incomplete || err != nil {
			return Value{}, pos, incomplete, err
		}
		n, err := parseInt(line)
		if err != nil {
			return Value{}, pos, false, err
		}
		return Value{Kind: Integer, Int: n}, next, false, nil
	case '$':
		return d.parseBulk(pos)
	case '*':
		return d.parseArray(pos)
	default:
		return Value{}, pos, false, ErrUnknownPrefix
	}
}

func (d *Decoder) parseBulk(pos int) (Value, int, bool, error) {
	line, next, incomplete, err := d.readLine(pos + 1)
	if incomplete || err != nil {
		return Value{}, pos, incomplete, err
	}
	n, err := parseInt(line)
	if err != nil {
		return Value{}, pos, false, ErrInvalidBulkLen
	}
	if n == -1 {
		return Value{Kind: BulkString, Null: true}, next, false, nil
	}
	if n < 0 || n > MaxBulkLen {
		return Value{}, pos, false, ErrInvalidBulkLen
	}
	end := next + int(n)
	if end+2 > len(d.buf) {
		return Value{}, pos, true, nil
	}
	if d.buf[end] != '\r' || d.buf[end+1] != '\n' {
		return Value{}, pos, false, ErrBadLineEnding
	}
	payload := d.buf[next:end]
	v := Value{Kind: BulkString}
	if d.enc == UTF8 {
		v.Str = string(payload)
		v.Text = true
	} else {
		v.Bytes = append([]byte(nil), payload...)
	}
	return v, end + 2, false, nil
}

func (d *Decoder) parseArray(pos int) (Value, int, bool, error) {
	line, next, incomplete, err := d.readLine(pos + 1)
	if incomplete || err != nil {
		return Value{}, pos, incomplete, err
	}
	n, err := parseInt(line)
	if err != nil {
		return Value{}, pos, false, ErrInvalidArrayLen
	}
	if n == -1 {
		return Value{Kind: Array, Null: true}, next, false, nil
	}
	if n < 0 || n > DefaultMaxArrayLen {
		return Value{}, pos, false, ErrInvalidArrayLen
	}
	arr := make([]Value, n)
	cur := next
	for i := 0; i < int(n); i++ {
		el, after, incomplete, err := d.parse(cur)
		if incomplete || err != nil {
			return Value{}, pos, incomplete, err
		}
		arr[i] = el
		cur = after
	}
	return Value{Kind: Array, Array: arr}, cur, false, nil
}

// readLine scans for a trailing CRLF starting at pos, returning the line
// contents (excluding the CRLF) and the offset just past it. A line that
// grows past MaxLineLen without a CRLF is rejected outright rather than
// left pending forever, which would otherwise let a corrupt or hostile
// peer grow the Decoder's buffer without bound by never terminating one.
func (d *Decoder) readLine(pos int) ([]byte, int, bool, error) {
	for i := pos; i < len(d.buf); i++ {
		if d.buf[i] == '\n' {
			if i == pos || d.buf[i-1] != '\r' {
				return nil, pos, false, ErrBadLineEnding
			}
			return d.buf[pos : i-1], i + 1, false, nil
		}
	}
	if len(d.buf)-pos > MaxLineLen {
		return nil, pos, false, ErrFrameTooLarge
	}
	return nil, pos, true, nil
}

func parseInt(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, ErrInvalidInteger
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, ErrInvalidInteger
	}
	return n, nil
}
