package wiredis

import (
	"crypto/rand"
	"encoding/hex"

	"wiredis/resp"
)

// Pipeline accumulates pre-encoded RESP command frames into a single
// growable buffer, then asks its owning Connection to flush the whole
// buffer in one write and harvest the resulting replies from one read
// stream (spec.md §4.4). It is write-only: nothing is sent until Execute.
type Pipeline struct {
	conn   *Connection
	buf    []byte
	frames int
}

// Command encodes textual args using the owning Connection's configured
// text encoding and appends the resulting frame to the buffer.
func (p *Pipeline) Command(args ...string) {
	raw := make([][]byte, len(args))
	for i, a := range args {
		raw[i] = resp.EncodeText(p.conn.opts.Encoding, a)
	}
	p.BytesCommand(raw...)
}

// BytesCommand appends an already-binary argument vector's frame directly.
func (p *Pipeline) BytesCommand(args ...[]byte) {
	p.buf = append(p.buf, resp.Encode(args...)...)
	p.frames++
}

// Len reports how many commands have been buffered since the last Clear
// or Execute.
func (p *Pipeline) Len() int { return p.frames }

// Buffered reports the current buffer size in bytes.
func (p *Pipeline) Buffered() int { return len(p.buf) }

// Clear empties the buffer without sending anything.
func (p *Pipeline) Clear() {
	p.buf = nil
	p.frames = 0
}

// Execute flushes the buffered commands via the owning Connection and
// returns the harvested replies, per spec.md §4.4.1/§4.4.2. The buffer is
// always cleared, whether Execute succeeds or fails.
func (p *Pipeline) Execute(transaction, ignoreResults bool) (any, error) {
	buf := p.buf
	p.Clear()
	return p.conn.bufferExecute(buf, transaction, ignoreResults)
}

// bufferExecute is spec.md §4.3's buffer_execute operation: the engine
// behind Pipeline.Execute. It lives on Connection (not Pipeline) because
// it is the Connection, not the Pipeline, that owns the socket and the
// Decoder the harvest reads through.
func (c *Connection) bufferExecute(buf []byte, transaction, ignoreResults bool) (any, error) {
	if c.mode == ModeMulti {
		return nil, clientErr("cannot buffer-execute during an existing MULTI")
	}
	if len(buf) == 0 {
		return nil, clientErr("attempted to execute an empty pipeline buffer")
	}
	if c.conn == nil {
		return nil, clientErr("not connected")
	}

	token := newSentinelToken()

	var out []byte
	if transaction {
		out = append(out, resp.Encode([]byte("MULTI"))...)
	}
	out = append(out, buf...)
	if transaction {
		out = append(out, resp.Encode([]byte("EXEC"))...)
	}
	out = append(out, resp.Encode([]byte("ECHO"), []byte(token))...)

	if _, err := c.conn.Write(out); err != nil {
		c.closed = true
		return nil, err
	}
	c.lastSent = [][]byte{[]byte("ECHO"), []byte(token)}

	if ignoreResults {
		if err := c.readUntilToken([]byte(token)); err != nil {
			return nil, err
		}
		return nil, nil
	}

	results, err := c.harvestUntilToken(token)
	if err != nil {
		return nil, err
	}

	if !transaction {
		return results, nil
	}

	// Only the EXEC reply (an array) survives; MULTI's OK ack and each
	// queued command's QUEUED ack are discarded here.
	for _, r := range results {
		if r.Kind == resp.Array {
			return r, nil
		}
	}
	return nil, &ProtocolError{Err: clientErr("transaction harvest observed no EXEC array reply")}
}

// harvestUntilToken decodes replies until one equals the ECHO token,
// returning every other reply observed along the way, in submission
// order. A server error reply observed here is NOT raised: outside a
// transaction it is returned to the caller as one of the results
// (spec.md leaves non-transactional error handling to the convenience
// layer); inside a transaction it is one of the EXEC array's elements
// and bufferExecute's caller decides what to do with it.
func (c *Connection) harvestUntilToken(token string) ([]resp.Value, error) {
	results := make([]resp.Value, 0, 8)
	for {
		v, incomplete, err := c.dec.Gets()
		if err != nil {
			c.closed = true
			return nil, &ProtocolError{Err: err}
		}
		if incomplete {
			if rerr := c.setReadDeadline(); rerr != nil {
				c.closed = true
				return nil, rerr
			}
			line, rerr := c.reader.ReadBytes('\n')
			if rerr != nil {
				c.closed = true
				return nil, rerr
			}
			c.dec.Feed(line)
			continue
		}
		if v.equalToken(token) {
			return results, nil
		}
		results = append(results, v)
	}
}

func newSentinelToken() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("wiredis: failed to read random sentinel token: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}
