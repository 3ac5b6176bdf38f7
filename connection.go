package wiredis

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"strconv"
	"time"

	"wiredis/internal/logger"
	"wiredis/resp"
)

// Mode is a Connection's MULTI/EXEC state, per spec.md's Connection state
// machine: Normal <-> Multi, transitioning on a successfully-acked
// MULTI/EXEC/DISCARD.
type Mode int

const (
	ModeNormal Mode = iota
	ModeMulti
)

// Connection owns one TCP socket to the server: an encoder-backed write
// path, a Decoder-backed read path, a mode flag, and the bookkeeping
// spec.md's data model requires (selected database, last-sent command,
// response text encoding, closed).
//
// A Connection is single-owner: callers must not interleave two
// outstanding commands on it from different goroutines (see §5). Pool
// enforces that ownership transfer for concurrent callers.
type Connection struct {
	opts Options

	conn   net.Conn
	reader *bufio.Reader
	dec    *resp.Decoder

	mode     Mode
	db       int
	lastSent [][]byte
	closed   bool

	// checkoutGen is stamped by Pool.Get on handout and checked by
	// Pool.Put, so returning a Connection that was not (or no longer)
	// checked out is rejected instead of silently underflowing Pool.held.
	checkoutGen uint64
}

// New constructs a disconnected Connection. Call Connect before use.
func New(opts Options) *Connection {
	opts = opts.withDefaults()
	return &Connection{
		opts: opts,
		db:   opts.Database,
		dec:  resp.NewDecoder(opts.Encoding),
	}
}

// Connect opens the TCP socket and performs the connection-establishment
// steps spec.md §4.3 requires, in order: AUTH (if a password was
// configured; the password is cleared from Options afterward), SELECT (if
// a non-zero database was configured), CLIENT SETNAME (if a name was
// configured). Connect is single-shot; a second call fails with a
// ClientError and a failure at any step leaves the Connection unusable.
//
// Only the dial itself honors ctx cancellation; once connected, per §5,
// a Connection's reads/writes are not individually cancellable.
func (c *Connection) Connect(ctx context.Context) error {
	if c.conn != nil {
		return clientErr("already connected")
	}
	addr := net.JoinHostPort(c.opts.Host, strconv.Itoa(c.opts.Port))
	dialer := net.Dialer{Timeout: c.opts.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return connectErr("dial", err)
	}
	return c.connectWithSocket(conn, addr)
}

// ConnectWithConn finishes connection establishment (AUTH/SELECT/CLIENT
// SETNAME) over an already-dialed net.Conn, so a caller needing a dial
// path Connection itself doesn't offer (e.g. wiredis-cli/wiredis-bench's
// --tls flag, per §1's non-goal excluding TLS from the core library) can
// still drive the rest of the handshake through the usual Connection
// state machine.
func (c *Connection) ConnectWithConn(conn net.Conn) error {
	return c.connectWithSocket(conn, conn.RemoteAddr().String())
}

func (c *Connection) connectWithSocket(conn net.Conn, addr string) error {
	if c.conn != nil {
		return clientErr("already connected")
	}
	c.conn = conn
	c.reader = bufio.NewReaderSize(conn, c.opts.ReadBufferSize)

	if c.opts.Password != "" {
		password := c.opts.Password
		c.opts.Password = ""
		if _, err := c.Command([]byte("AUTH"), []byte(password)); err != nil {
			c.closed = true
			return connectErr("AUTH", err)
		}
	}
	if c.db != 0 {
		if err := c.selectDB(c.db); err != nil {
			c.closed = true
			return connectErr("SELECT", err)
		}
	}
	if c.opts.ClientName != "" {
		if _, err := c.Command([]byte("CLIENT"), []byte("SETNAME"), []byte(c.opts.ClientName)); err != nil {
			c.closed = true
			return connectErr("CLIENT SETNAME", err)
		}
	}
	logger.Debugf("wiredis: connected to %s", addr)
	return nil
}

func (c *Connection) selectDB(db int) error {
	_, err := c.Command([]byte("SELECT"), []byte(strconv.Itoa(db)))
	if err != nil {
		return err
	}
	c.db = db
	return nil
}

// Send encodes args as a single RESP command frame and writes it,
// updating LastSent. It does not await the reply.
func (c *Connection) Send(args ...[]byte) error {
	if c.conn == nil {
		return clientErr("not connected")
	}
	frame := resp.Encode(args...)
	if _, err := c.conn.Write(frame); err != nil {
		c.closed = true
		return err
	}
	c.lastSent = args
	return nil
}

// ReadOne reads and decodes exactly one reply. A server error reply is
// raised as a *ReplyError; a framing violation is raised as a
// *ProtocolError and marks the Connection closed.
func (c *Connection) ReadOne() (resp.Value, error) {
	for {
		v, incomplete, err := c.dec.Gets()
		if err != nil {
			c.closed = true
			return resp.Value{}, &ProtocolError{Err: err}
		}
		if !incomplete {
			if v.IsError() {
				return v, &ReplyError{text: v.Str}
			}
			return v, nil
		}
		if err := c.setReadDeadline(); err != nil {
			c.closed = true
			return resp.Value{}, err
		}
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			c.closed = true
			return resp.Value{}, err
		}
		c.dec.Feed(line)
	}
}

// setReadDeadline applies Options.ReadTimeout, if configured, to the next
// socket read.
func (c *Connection) setReadDeadline() error {
	if c.opts.ReadTimeout == 0 {
		return nil
	}
	return c.conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout))
}

// Command sends args and returns the single reply to it.
func (c *Connection) Command(args ...[]byte) (resp.Value, error) {
	if err := c.Send(args...); err != nil {
		return resp.Value{}, err
	}
	return c.ReadOne()
}

// Multi enters transaction mode: sends MULTI and verifies the OK ack.
func (c *Connection) Multi() error {
	if c.mode == ModeMulti {
		return clientErr("already in MULTI")
	}
	v, err := c.Command([]byte("MULTI"))
	if err != nil {
		return err
	}
	if v.Str != "OK" {
		return clientErr("unexpected MULTI reply: %v", v)
	}
	c.mode = ModeMulti
	return nil
}

// Exec sends EXEC and returns its array reply (one element per queued
// command, in submission order). It transitions back to Normal mode
// regardless of the reply's contents, since the server always closes the
// transaction on EXEC.
func (c *Connection) Exec() (resp.Value, error) {
	if c.mode != ModeMulti {
		return resp.Value{}, clientErr("EXEC outside MULTI")
	}
	v, err := c.Command([]byte("EXEC"))
	c.mode = ModeNormal
	return v, err
}

// Discard sends DISCARD, aborting the queued transaction, and verifies
// the OK ack.
func (c *Connection) Discard() error {
	if c.mode != ModeMulti {
		return clientErr("DISCARD outside MULTI")
	}
	v, err := c.Command([]byte("DISCARD"))
	c.mode = ModeNormal
	if err != nil {
		return err
	}
	if v.Str != "OK" {
		return clientErr("unexpected DISCARD reply: %v", v)
	}
	return nil
}

// Transaction runs fn inside a MULTI/EXEC scope: it enters Multi mode,
// invokes fn, and on return, if fn left the Connection still in Multi
// mode (i.e. fn never called Exec itself), issues DISCARD. This is the
// Go analogue of spec.md's scoped transaction() context manager.
func (c *Connection) Transaction(fn func(*Connection) error) error {
	if err := c.Multi(); err != nil {
		return err
	}
	fnErr := fn(c)
	if c.mode == ModeMulti {
		if err := c.Discard(); err != nil && fnErr == nil {
			return err
		}
	}
	return fnErr
}

// Pipeline constructs a Pipeline bound to this Connection.
func (c *Connection) Pipeline() *Pipeline {
	return &Pipeline{conn: c}
}

// WithPipeline runs fn with a fresh Pipeline, clearing its buffer on
// return regardless of how fn exits (the Go analogue of spec.md's
// Pipeline.__exit__).
func (c *Connection) WithPipeline(fn func(*Pipeline) error) error {
	p := c.Pipeline()
	defer p.Clear()
	return fn(p)
}

// Close marks the Connection closed and closes the socket in full. It does
// not half-close the write side first, and it does not wait for the peer
// to finish its own shutdown.
func (c *Connection) Close() error {
	if c.conn == nil {
		return clientErr("not connected")
	}
	c.closed = true
	return c.conn.Close()
}

// IsClosed reports whether the Connection is no longer usable: never
// connected, explicitly closed, or marked unusable after a read/write
// failure or protocol error.
func (c *Connection) IsClosed() bool {
	return c.conn == nil || c.closed
}

// InMulti reports whether the Connection is currently inside a
// MULTI...EXEC/DISCARD transaction.
func (c *Connection) InMulti() bool { return c.mode == ModeMulti }

// Database returns the currently selected logical database index.
func (c *Connection) Database() int { return c.db }

// LastSent returns the most recently transmitted argument vector, for
// diagnostics and test observability (spec.md's `last_sent`).
func (c *Connection) LastSent() [][]byte { return c.lastSent }

// readUntilToken reads raw bytes from the connection until the exact
// sequence token+"\r\n" has been observed, without decoding anything.
// This backs Pipeline's ignore_results fast path (spec.md §4.4.1 step 4):
// a pure substring scan, no parser involvement.
func (c *Connection) readUntilToken(token []byte) error {
	suffix := append(append([]byte(nil), token...), '\r', '\n')
	var tail []byte
	for {
		if err := c.setReadDeadline(); err != nil {
			c.closed = true
			return err
		}
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			c.closed = true
			return err
		}
		tail = append(tail, line...)
		if len(tail) > 2*len(suffix) {
			tail = tail[len(tail)-len(suffix):]
		}
		if bytes.HasSuffix(tail, suffix) {
			return nil
		}
	}
}
