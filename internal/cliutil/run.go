package cliutil

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"wiredis"
)

// Config mirrors the teacher's CLIConfig. TLS is handled outside
// wiredis.Connection's own dial path (per spec.md's non-goal excluding
// TLS from the core library): when set, Run dials the socket itself and
// hands it to Connection.ConnectWithConn.
type Config struct {
	Host     string
	Port     int
	Password string
	Database int
	Timeout  time.Duration
	TLS      bool
	Raw      bool
	Eval     string
	File     string
	Pipe     bool
}

// Run connects to the server described by cfg and dispatches to the mode
// cfg selects: a single Eval command, a File of commands, Pipe (stdin to
// stdout), or an interactive prompt when none of those are set.
func Run(cfg Config, args []string) int {
	conn := wiredis.New(wiredis.Options{
		Host:        cfg.Host,
		Port:        cfg.Port,
		Password:    cfg.Password,
		Database:    cfg.Database,
		DialTimeout: cfg.Timeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	var err error
	if cfg.TLS {
		err = dialTLS(conn, cfg)
	} else {
		err = conn.Connect(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error connecting to %s:%d: %v\n", cfg.Host, cfg.Port, err)
		return 1
	}
	defer conn.Close()

	switch {
	case cfg.Eval != "":
		return runOne(conn, cfg.Eval, cfg.Raw)
	case len(args) > 0:
		return runOne(conn, strings.Join(args, " "), cfg.Raw)
	case cfg.File != "":
		return runFile(conn, cfg.File, cfg.Raw)
	case cfg.Pipe:
		return runPipe(conn, cfg.Raw)
	default:
		return runInteractive(conn, cfg)
	}
}

// dialTLS opens a TLS connection directly, bypassing Connection.Connect's
// own plain-TCP dialer, and finishes the handshake through
// ConnectWithConn. InsecureSkipVerify matches the teacher CLI's own
// TLS dial path, which targets local/dev servers without a real cert chain.
func dialTLS(conn *wiredis.Connection, cfg Config) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	tlsConn, err := tls.DialWithDialer(&net.Dialer{Timeout: cfg.Timeout}, "tcp", addr, &tls.Config{InsecureSkipVerify: true})
	if err != nil {
		return err
	}
	return conn.ConnectWithConn(tlsConn)
}

func runOne(conn *wiredis.Connection, line string, raw bool) int {
	args := SplitCommand(line)
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "empty command")
		return 1
	}
	v, err := conn.Command(stringsToBytes(args)...)
	if err != nil {
		fmt.Fprintln(os.Stderr, FormatValue(errorValue(err), raw))
		return 1
	}
	fmt.Println(FormatValue(v, raw))
	return 0
}

func runFile(conn *wiredis.Connection, filename string, raw bool) int {
	f, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening %s: %v\n", filename, err)
		return 1
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args := SplitCommand(line)
		v, err := conn.Command(stringsToBytes(args)...)
		if err != nil {
			fmt.Printf("line %d: %s\n", lineNum, FormatValue(errorValue(err), raw))
			continue
		}
		fmt.Printf("line %d: %s\n", lineNum, FormatValue(v, raw))
	}
	return 0
}

func runPipe(conn *wiredis.Connection, raw bool) int {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		args := SplitCommand(line)
		v, err := conn.Command(stringsToBytes(args)...)
		if err != nil {
			fmt.Println(FormatValue(errorValue(err), raw))
			continue
		}
		fmt.Println(FormatValue(v, raw))
	}
	return 0
}

func runInteractive(conn *wiredis.Connection, cfg Config) int {
	fmt.Printf("wiredis-cli\nconnected to %s:%d\n", cfg.Host, cfg.Port)
	if cfg.Database != 0 {
		fmt.Printf("using database %d\n", cfg.Database)
	}
	fmt.Println("type 'help' for commands, 'quit' to exit")

	history := NewCommandHistory(100)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
		if err == nil {
			defer term.Restore(int(os.Stdin.Fd()), oldState)
			runRawLoop(conn, cfg, history)
			return 0
		}
	}
	runFallbackLoop(conn, cfg, history)
	return 0
}

func runRawLoop(conn *wiredis.Connection, cfg Config, history *CommandHistory) {
	reader := bufio.NewReader(os.Stdin)
	for {
		input, err := readLineRaw(reader, history)
		if err != nil {
			if err == io.EOF {
				fmt.Print("\r\n")
			}
			return
		}
		if !handleLine(conn, cfg, history, input) {
			return
		}
	}
}

func runFallbackLoop(conn *wiredis.Connection, cfg Config, history *CommandHistory) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("wiredis> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		if !handleLine(conn, cfg, history, strings.TrimSpace(line)) {
			return
		}
	}
}

// handleLine processes one line of interactive input, returning false
// when the session should end.
func handleLine(conn *wiredis.Connection, cfg Config, history *CommandHistory, input string) bool {
	switch input {
	case "":
		return true
	case "quit", "exit":
		fmt.Print("\rgoodbye!\r\n")
		return false
	case "help":
		printHelp()
		return true
	case "clear":
		fmt.Print("\033[H\033[2J")
		return true
	}

	history.Add(input)
	args := SplitCommand(input)
	v, err := conn.Command(stringsToBytes(args)...)
	if err != nil {
		fmt.Println("\r" + FormatValue(errorValue(err), cfg.Raw) + "\r")
		return true
	}
	fmt.Println("\r" + FormatValue(v, cfg.Raw) + "\r")
	return true
}

func printHelp() {
	fmt.Print("\rwiredis-cli commands:\r\n")
	fmt.Print("\r  help                    show this help\r\n")
	fmt.Print("\r  quit, exit              exit the CLI\r\n")
	fmt.Print("\r  clear                   clear the screen\r\n")
	fmt.Print("\r\r\n")
	fmt.Print("\rany other line is sent as a RESP command, e.g.:\r\n")
	fmt.Print("\r  SET key value\r\n")
	fmt.Print("\r  GET key\r\n")
	fmt.Print("\r  HSET h f1 v1 f2 v2\r\n")
	fmt.Print("\r  SADD s a b c\r\n")
}

func stringsToBytes(args []string) [][]byte {
	out := make([][]byte, len(args))
	for i, a := range args {
		out[i] = []byte(a)
	}
	return out
}
