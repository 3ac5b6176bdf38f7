package resp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecoder_SimpleString(t *testing.T) {
	d := NewDecoder(UTF8)
	d.Feed([]byte("+OK\r\n"))
	v, incomplete, err := d.Gets()
	require.NoError(t, err)
	require.False(t, incomplete)
	require.Equal(t, SimpleString, v.Kind)
	require.Equal(t, "OK", v.Str)
}

func TestDecoder_Error(t *testing.T) {
	d := NewDecoder(UTF8)
	d.Feed([]byte("-ERR unknown command\r\n"))
	v, incomplete, err := d.Gets()
	require.NoError(t, err)
	require.False(t, incomplete)
	require.True(t, v.IsError())
	require.Equal(t, "ERR unknown command", v.Str)
}

func TestDecoder_Integer(t *testing.T) {
	d := NewDecoder(UTF8)
	d.Feed([]byte(":1000\r\n"))
	v, incomplete, err := d.Gets()
	require.NoError(t, err)
	require.False(t, incomplete)
	require.Equal(t, Integer, v.Kind)
	require.EqualValues(t, 1000, v.Int)
}

func TestDecoder_BulkString_TextMode(t *testing.T) {
	d := NewDecoder(UTF8)
	d.Feed([]byte("$3\r\nbar\r\n"))
	v, incomplete, err := d.Gets()
	require.NoError(t, err)
	require.False(t, incomplete)
	require.Equal(t, BulkString, v.Kind)
	require.True(t, v.Text)
	require.Equal(t, "bar", v.Str)
}

func TestDecoder_BulkString_BinaryMode(t *testing.T) {
	d := NewDecoder(Binary)
	d.Feed([]byte("$3\r\nbar\r\n"))
	v, incomplete, err := d.Gets()
	require.NoError(t, err)
	require.False(t, incomplete)
	require.False(t, v.Text)
	require.Equal(t, []byte("bar"), v.Bytes)
}

func TestDecoder_NullBulkString(t *testing.T) {
	d := NewDecoder(UTF8)
	d.Feed([]byte("$-1\r\n"))
	v, incomplete, err := d.Gets()
	require.NoError(t, err)
	require.False(t, incomplete)
	require.True(t, v.Null)
}

func TestDecoder_NullArray(t *testing.T) {
	d := NewDecoder(UTF8)
	d.Feed([]byte("*-1\r\n"))
	v, incomplete, err := d.Gets()
	require.NoError(t, err)
	require.False(t, incomplete)
	require.Equal(t, Array, v.Kind)
	require.True(t, v.Null)
}

func TestDecoder_Array(t *testing.T) {
	d := NewDecoder(UTF8)
	d.Feed([]byte("*2\r\n$2\r\nOK\r\n:7\r\n"))
	v, incomplete, err := d.Gets()
	require.NoError(t, err)
	require.False(t, incomplete)
	require.Equal(t, Array, v.Kind)
	require.Len(t, v.Array, 2)
	require.Equal(t, "OK", v.Array[0].Str)
	require.EqualValues(t, 7, v.Array[1].Int)
}

// TestDecoder_IncompleteThenFed exercises the core incremental contract: a
// partial frame reports incomplete without consuming anything, and feeding
// the rest produces the full value on the next Gets.
func TestDecoder_IncompleteThenFed(t *testing.T) {
	d := NewDecoder(UTF8)
	d.Feed([]byte("$5\r\nhel"))
	_, incomplete, err := d.Gets()
	require.NoError(t, err)
	require.True(t, incomplete)

	// Retrying without new input must still be incomplete, not an error.
	_, incomplete, err = d.Gets()
	require.NoError(t, err)
	require.True(t, incomplete)

	d.Feed([]byte("lo\r\n"))
	v, incomplete, err := d.Gets()
	require.NoError(t, err)
	require.False(t, incomplete)
	require.Equal(t, "hello", v.Str)
}

func TestDecoder_IncompleteMidArray(t *testing.T) {
	d := NewDecoder(UTF8)
	d.Feed([]byte("*3\r\n$3\r\nSET\r\n$3\r\nfoo"))
	_, incomplete, err := d.Gets()
	require.NoError(t, err)
	require.True(t, incomplete)

	d.Feed([]byte("\r\n$3\r\nbar\r\n"))
	v, incomplete, err := d.Gets()
	require.NoError(t, err)
	require.False(t, incomplete)
	require.Len(t, v.Array, 3)
	require.Equal(t, "bar", v.Array[2].Str)
}

func TestDecoder_ByteAtATime(t *testing.T) {
	frame := []byte("*2\r\n$3\r\nfoo\r\n$3\r\nbar\r\n")
	d := NewDecoder(UTF8)
	var v Value
	var incomplete bool
	var err error
	for i := 0; i < len(frame); i++ {
		d.Feed(frame[i : i+1])
		v, incomplete, err = d.Gets()
		require.NoError(t, err)
		if !incomplete {
			break
		}
	}
	require.False(t, incomplete)
	require.Len(t, v.Array, 2)
}

func TestDecoder_BadLineEndingIsError(t *testing.T) {
	d := NewDecoder(UTF8)
	d.Feed([]byte("+OK\n"))
	_, _, err := d.Gets()
	require.ErrorIs(t, err, ErrBadLineEnding)
}

func TestDecoder_UnknownPrefixIsError(t *testing.T) {
	d := NewDecoder(UTF8)
	d.Feed([]byte("!nope\r\n"))
	_, _, err := d.Gets()
	require.ErrorIs(t, err, ErrUnknownPrefix)
}

func TestDecoder_OverlongLineIsFrameTooLarge(t *testing.T) {
	d := NewDecoder(UTF8)
	d.Feed([]byte("+"))
	d.Feed(make([]byte, MaxLineLen+1))
	_, _, err := d.Gets()
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestValue_EqualToken(t *testing.T) {
	textVal := Value{Kind: BulkString, Str: "abcd1234", Text: true}
	require.True(t, textVal.equalToken("abcd1234"))
	require.False(t, textVal.equalToken("other"))

	binVal := Value{Kind: BulkString, Bytes: []byte("abcd1234")}
	require.True(t, binVal.equalToken("abcd1234"))
}

func TestDecoder_SequentialGets(t *testing.T) {
	d := NewDecoder(UTF8)
	d.Feed([]byte("+OK\r\n$3\r\nfoo\r\n:5\r\n"))

	v1, incomplete, err := d.Gets()
	require.NoError(t, err)
	require.False(t, incomplete)
	require.Equal(t, "OK", v1.Str)

	v2, incomplete, err := d.Gets()
	require.NoError(t, err)
	require.False(t, incomplete)
	require.Equal(t, "foo", v2.Str)

	v3, incomplete, err := d.Gets()
	require.NoError(t, err)
	require.False(t, incomplete)
	require.EqualValues(t, 5, v3.Int)
}
