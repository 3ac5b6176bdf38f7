package wiredis

import (
	"time"

	"wiredis/resp"
)

// Options carries the connection parameters spec.md §6 describes: host,
// port, optional password, logical database, optional client name, and
// the response text encoding. There is no config file or environment
// variable support; the embedding application owns its own config layer.
type Options struct {
	Host     string
	Port     int
	Password string
	Database int
	// ClientName, when set, is sent via CLIENT SETNAME during Connect.
	ClientName string
	// Encoding controls how bulk-string replies decode; default UTF8.
	Encoding resp.Encoding

	// DialTimeout bounds the TCP handshake. Zero selects the 5s default.
	DialTimeout time.Duration
	// ReadTimeout bounds each socket read during ReadOne/harvest. Zero
	// means no deadline.
	ReadTimeout time.Duration
	// ReadBufferSize sizes the buffered reader wrapping the socket; the
	// spec calls for "a large read buffer (>=1 MiB)" to accommodate large
	// pipelined responses without many small reads.
	ReadBufferSize int
}

// withDefaults returns a copy of o with zero-valued fields replaced by
// their documented defaults.
func (o Options) withDefaults() Options {
	if o.Host == "" {
		o.Host = "127.0.0.1"
	}
	if o.Port == 0 {
		o.Port = 6379
	}
	if o.DialTimeout == 0 {
		o.DialTimeout = 5 * time.Second
	}
	if o.ReadBufferSize == 0 {
		o.ReadBufferSize = 1 << 20
	}
	return o
}
