package cliutil

import (
	"fmt"
	"strconv"
	"strings"

	"wiredis/resp"
)

// FormatValue renders a decoded reply the way redis-cli does: unwrapped
// strings, "(integer) N", "(error) ...", "(nil)", and a numbered list for
// arrays. raw bypasses all of this and dumps the reply's literal text
// content instead.
func FormatValue(v resp.Value, raw bool) string {
	if raw {
		return rawText(v)
	}
	switch v.Kind {
	case resp.SimpleString:
		return v.Str
	case resp.Error:
		return "(error) " + v.Str
	case resp.Integer:
		return "(integer) " + strconv.FormatInt(v.Int, 10)
	case resp.BulkString:
		if v.Null {
			return "(nil)"
		}
		return bulkText(v)
	case resp.Array:
		if v.Null {
			return "(nil)"
		}
		if len(v.Array) == 0 {
			return "(empty array)"
		}
		lines := make([]string, len(v.Array))
		for i, el := range v.Array {
			lines[i] = fmt.Sprintf("%d) %s", i+1, FormatValue(el, false))
		}
		return strings.Join(lines, "\n")
	default:
		return ""
	}
}

func bulkText(v resp.Value) string {
	if v.Text {
		return v.Str
	}
	return string(v.Bytes)
}

func rawText(v resp.Value) string {
	switch v.Kind {
	case resp.SimpleString, resp.Error:
		return v.Str
	case resp.Integer:
		return strconv.FormatInt(v.Int, 10)
	case resp.BulkString:
		if v.Null {
			return ""
		}
		return bulkText(v)
	case resp.Array:
		parts := make([]string, len(v.Array))
		for i, el := range v.Array {
			parts[i] = rawText(el)
		}
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

// SplitCommand tokenizes a line of interactive input into command
// arguments, the way redis-cli does (whitespace-separated, no quoting
// support beyond that).
func SplitCommand(line string) []string {
	return strings.Fields(line)
}
