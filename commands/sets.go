package commands

import (
	"wiredis"
	"wiredis/resp"
)

// SAdd adds one or more members to the set at key and returns how many
// were newly added.
func SAdd(c *wiredis.Connection, key string, members ...string) (int64, error) {
	args := make([][]byte, 0, len(members)+2)
	args = append(args, []byte("SADD"), []byte(key))
	for _, m := range members {
		args = append(args, []byte(m))
	}
	v, err := c.Command(args...)
	if err != nil {
		return 0, err
	}
	return v.Int, nil
}

// SMembers returns every member of the set at key, in no particular order.
func SMembers(c *wiredis.Connection, key string) ([]string, error) {
	v, err := c.Command([]byte("SMEMBERS"), []byte(key))
	if err != nil {
		return nil, err
	}
	return stringsOf(v.Array), nil
}

// stringsOf converts an array reply's elements into plain strings.
func stringsOf(elems []resp.Value) []string {
	out := make([]string, len(elems))
	for i, el := range elems {
		out[i] = el.Str
	}
	return out
}
