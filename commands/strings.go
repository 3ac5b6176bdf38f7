// Package commands provides thin, typed convenience wrappers over
// wiredis.Connection.Command for the string/hash/set/generic command
// groups named in the spec. Every function here is a pure translation of
// Go arguments to a Command call and back; none of it holds state or
// talks to the network directly.
package commands

import (
	"strconv"

	"wiredis"
	"wiredis/resp"
)

// Get returns the string value of key, or (ok=false) if key does not exist.
func Get(c *wiredis.Connection, key string) (value string, ok bool, err error) {
	v, err := c.Command([]byte("GET"), []byte(key))
	if err != nil {
		return "", false, err
	}
	if v.Null {
		return "", false, nil
	}
	return v.Str, true, nil
}

// Set stores value at key. The server's acknowledgement is not returned;
// only an error reply or a transport failure is reported.
func Set(c *wiredis.Connection, key, value string) error {
	_, err := c.Command([]byte("SET"), []byte(key), []byte(value))
	return err
}

// GetSet atomically sets key to value and returns its previous contents.
func GetSet(c *wiredis.Connection, key, value string) (prev string, ok bool, err error) {
	v, err := c.Command([]byte("GETSET"), []byte(key), []byte(value))
	if err != nil {
		return "", false, err
	}
	if v.Null {
		return "", false, nil
	}
	return v.Str, true, nil
}

// Incr atomically increments the integer stored at key and returns its
// new value.
func Incr(c *wiredis.Connection, key string) (int64, error) {
	v, err := c.Command([]byte("INCR"), []byte(key))
	if err != nil {
		return 0, err
	}
	return v.Int, nil
}

// TTL returns the remaining time to live of key, in seconds; -1 if key
// has no expiry, -2 if key does not exist.
func TTL(c *wiredis.Connection, key string) (int64, error) {
	v, err := c.Command([]byte("TTL"), []byte(key))
	if err != nil {
		return 0, err
	}
	return v.Int, nil
}

// Type reports the key's value type as the server names it: "string",
// "hash", "set", "none", and so on.
func Type(c *wiredis.Connection, key string) (string, error) {
	v, err := c.Command([]byte("TYPE"), []byte(key))
	if err != nil {
		return "", err
	}
	return v.Str, nil
}

// Del removes the given keys and returns how many actually existed.
func Del(c *wiredis.Connection, keys ...string) (int64, error) {
	args := make([][]byte, len(keys)+1)
	args[0] = []byte("DEL")
	for i, k := range keys {
		args[i+1] = []byte(k)
	}
	v, err := c.Command(args...)
	if err != nil {
		return 0, err
	}
	return v.Int, nil
}

// Exists counts how many of the given keys exist.
func Exists(c *wiredis.Connection, keys ...string) (int64, error) {
	args := make([][]byte, len(keys)+1)
	args[0] = []byte("EXISTS")
	for i, k := range keys {
		args[i+1] = []byte(k)
	}
	v, err := c.Command(args...)
	if err != nil {
		return 0, err
	}
	return v.Int, nil
}

// DBSize returns the number of keys in the currently selected database.
func DBSize(c *wiredis.Connection) (int64, error) {
	v, err := c.Command([]byte("DBSIZE"))
	if err != nil {
		return 0, err
	}
	return v.Int, nil
}

// SwapDB exchanges the contents of two logical databases.
func SwapDB(c *wiredis.Connection, a, b int) error {
	_, err := c.Command([]byte("SWAPDB"), []byte(strconv.Itoa(a)), []byte(strconv.Itoa(b)))
	return err
}

// Ping checks liveness. With an optional single message it is echoed back
// verbatim instead of the usual "PONG", letting a caller measure latency
// against a known payload.
func Ping(c *wiredis.Connection, message ...string) (string, error) {
	args := [][]byte{[]byte("PING")}
	for _, m := range message {
		args = append(args, []byte(m))
	}
	v, err := c.Command(args...)
	if err != nil {
		return "", err
	}
	return replyText(v), nil
}

func replyText(v resp.Value) string {
	if v.Text || v.Kind == resp.SimpleString {
		return v.Str
	}
	return string(v.Bytes)
}
