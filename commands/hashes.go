package commands

import "wiredis"

// HSet sets one or more field/value pairs in the hash at key and returns
// the number of fields that were newly created (as opposed to overwritten).
func HSet(c *wiredis.Connection, key string, fieldValues ...string) (int64, error) {
	args := make([][]byte, 0, len(fieldValues)+2)
	args = append(args, []byte("HSET"), []byte(key))
	for _, fv := range fieldValues {
		args = append(args, []byte(fv))
	}
	v, err := c.Command(args...)
	if err != nil {
		return 0, err
	}
	return v.Int, nil
}

// HGet returns the value of field in the hash at key.
func HGet(c *wiredis.Connection, key, field string) (value string, ok bool, err error) {
	v, err := c.Command([]byte("HGET"), []byte(key), []byte(field))
	if err != nil {
		return "", false, err
	}
	if v.Null {
		return "", false, nil
	}
	return v.Str, true, nil
}

// HMGet returns the values of the given fields, in order; a nil entry
// marks a field that was not present.
func HMGet(c *wiredis.Connection, key string, fields ...string) ([]*string, error) {
	args := make([][]byte, 0, len(fields)+2)
	args = append(args, []byte("HMGET"), []byte(key))
	for _, f := range fields {
		args = append(args, []byte(f))
	}
	v, err := c.Command(args...)
	if err != nil {
		return nil, err
	}
	out := make([]*string, len(v.Array))
	for i, el := range v.Array {
		if el.Null {
			continue
		}
		s := el.Str
		out[i] = &s
	}
	return out, nil
}

// HGetAll returns the entire hash at key as field->value pairs.
//
// The underlying HGETALL reply is a flat array alternating field, value,
// field, value, .... Resolving the spec's open question on odd-length
// results: an odd-length array can only mean a protocol-level corruption
// (the server violating its own contract), so HGetAll reports that as a
// ClientError rather than silently pairing a trailing field with an empty
// value.
func HGetAll(c *wiredis.Connection, key string) (map[string]string, error) {
	v, err := c.Command([]byte("HGETALL"), []byte(key))
	if err != nil {
		return nil, err
	}
	if len(v.Array)%2 != 0 {
		return nil, wiredis.NewClientError("HGETALL reply had an odd number of elements")
	}
	out := make(map[string]string, len(v.Array)/2)
	for i := 0; i < len(v.Array); i += 2 {
		out[v.Array[i].Str] = v.Array[i+1].Str
	}
	return out, nil
}

// HKeys returns every field name in the hash at key.
func HKeys(c *wiredis.Connection, key string) ([]string, error) {
	v, err := c.Command([]byte("HKEYS"), []byte(key))
	if err != nil {
		return nil, err
	}
	return stringsOf(v.Array), nil
}

// HVals returns every field value in the hash at key.
func HVals(c *wiredis.Connection, key string) ([]string, error) {
	v, err := c.Command([]byte("HVALS"), []byte(key))
	if err != nil {
		return nil, err
	}
	return stringsOf(v.Array), nil
}

// HLen returns the number of fields in the hash at key.
func HLen(c *wiredis.Connection, key string) (int64, error) {
	v, err := c.Command([]byte("HLEN"), []byte(key))
	if err != nil {
		return 0, err
	}
	return v.Int, nil
}
