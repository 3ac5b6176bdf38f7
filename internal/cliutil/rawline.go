package cliutil

import (
	"bufio"
	"fmt"

	"wiredis/resp"
)

// errorValue adapts a Go error from Connection.Command into a displayable
// resp.Value, so runOne/runFile/runPipe/handleLine can all funnel through
// FormatValue regardless of whether the reply was a server error or a
// transport/protocol failure.
func errorValue(err error) resp.Value {
	return resp.Value{Kind: resp.Error, Str: err.Error()}
}

// readLineRaw reads one line of interactive input from a raw-mode
// terminal, supporting history navigation (up/down), backspace, Ctrl+C,
// and Enter. It is a trimmed adaptation of the teacher's byte-at-a-time
// reader: cursor movement within a line (left/right/home/end/delete) is
// not implemented, since wiredis-cli's line lengths are short enough that
// retyping is a reasonable trim.
func readLineRaw(reader *bufio.Reader, history *CommandHistory) (string, error) {
	var input []byte
	prompt := "wiredis> "
	fmt.Print(prompt)

	for {
		b, err := reader.ReadByte()
		if err != nil {
			return "", err
		}

		switch {
		case b == 27: // ESC: possible arrow-key sequence
			next, err := reader.ReadByte()
			if err != nil {
				return "", err
			}
			if next != '[' {
				continue
			}
			third, err := reader.ReadByte()
			if err != nil {
				return "", err
			}
			switch third {
			case 'A': // up
				if prev := history.Previous(); prev != "" {
					input = []byte(prev)
					redrawLine(prompt, input)
				}
			case 'B': // down
				next := history.Next()
				input = []byte(next)
				redrawLine(prompt, input)
			}
			continue

		case b == 127 || b == 8: // backspace
			if len(input) > 0 {
				input = input[:len(input)-1]
				fmt.Print("\b \b")
			}
			continue

		case b == 3: // Ctrl+C
			fmt.Print("\r\nuse 'quit' or 'exit' to leave\r\n" + prompt)
			input = input[:0]
			continue

		case b == '\n' || b == '\r':
			fmt.Print("\r\n")
			history.ResetPosition()
			return string(input), nil

		case b >= 32 && b <= 126:
			input = append(input, b)
			fmt.Printf("%c", b)
		}
	}
}

func redrawLine(prompt string, input []byte) {
	fmt.Print("\r\033[K" + prompt + string(input))
}
