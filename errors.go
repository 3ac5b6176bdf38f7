package wiredis

import (
	"errors"
	"fmt"
)

// ErrConnect is the sentinel errors.Is target for every ConnectError.
var ErrConnect = errors.New("wiredis: connect failed")

// ClientError reports caller misuse: a protocol invariant the client
// itself is responsible for upholding was violated (double Connect, an
// empty pipeline execute, executing a buffer mid-transaction, ...).
type ClientError struct {
	Msg string
}

func (e *ClientError) Error() string { return "wiredis: " + e.Msg }

func clientErr(format string, args ...any) error {
	return &ClientError{Msg: fmt.Sprintf(format, args...)}
}

// NewClientError constructs a ClientError for callers outside this
// package (e.g. the commands package) that detect a client-side misuse or
// contract violation of their own, such as a malformed reply shape.
func NewClientError(msg string) error {
	return &ClientError{Msg: msg}
}

// ProtocolError wraps a framing violation the Decoder reported on the
// inbound byte stream. The Connection is unusable afterward.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string { return "wiredis: protocol error: " + e.Err.Error() }
func (e *ProtocolError) Unwrap() error { return e.Err }

// ReplyError is a classified server error reply (e.g. unknown command,
// wrong arity, an out-of-range argument). ReadOne, and so Command, returns
// it for a top-level error reply. Pipeline harvest never returns it: there
// an error reply stays a resp.Value of Kind Error, either among a
// non-transactional pipeline's results or inside the EXEC reply array.
type ReplyError struct {
	text string
}

func (e *ReplyError) Error() string { return "wiredis: reply error: " + e.text }

// Text returns the raw server error text, without the "-" prefix.
func (e *ReplyError) Text() string { return e.text }

// ConnectError wraps a failure during Connect (dial, AUTH, SELECT, or
// CLIENT SETNAME). errors.Is(err, ErrConnect) holds for any ConnectError.
type ConnectError struct {
	Step string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("wiredis: connect failed at %s: %v", e.Step, e.Err)
}
func (e *ConnectError) Unwrap() []error { return []error{ErrConnect, e.Err} }

func connectErr(step string, err error) error {
	return &ConnectError{Step: step, Err: err}
}
