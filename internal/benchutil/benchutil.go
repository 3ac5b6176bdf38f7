// Package benchutil implements wiredis-bench's load generation, grounded
// on the teacher's internal/benchmark package (per-worker goroutines,
// percentile latencies, CSV/histogram reporting) but driven through
// wiredis.Connection and wiredis.Pipeline instead of raw sockets, so a
// Pipeline run also exercises the ECHO-sentinel harvest under load.
package benchutil

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"wiredis"
)

// Config configures one benchmark run.
type Config struct {
	Host        string
	Port        int
	Password    string
	Database    int
	Requests    int
	Concurrency int
	Pipeline    int
	Timeout     time.Duration
	TLS         bool
	DataSize    int
	KeySpace    int
	Commands    []string
	Quiet       bool
	CSV         bool
	LatencyHist bool
}

// Result summarizes one command's run across every worker.
type Result struct {
	Command       string
	Requests      int64
	Errors        int64
	Duration      time.Duration
	Throughput    float64
	Latencies     []time.Duration
	P50, P95, P99 time.Duration
}

// Run executes every configured command with one long-lived Connection
// per worker goroutine (Concurrency workers total), each CLIENT
// SETNAME-tagged with a UUID so server-side CLIENT LIST output can
// distinguish benchmark workers from each other.
func Run(cfg Config) []Result {
	results := make([]Result, 0, len(cfg.Commands))
	for _, command := range cfg.Commands {
		if !cfg.Quiet {
			fmt.Printf("testing %s...\n", command)
		}
		results = append(results, runCommand(cfg, command))
	}
	return results
}

func runCommand(cfg Config, command string) Result {
	result := Result{Command: command, Requests: int64(cfg.Requests)}
	var mu sync.Mutex
	var errs int64

	perWorker := cfg.Requests / cfg.Concurrency
	remainder := cfg.Requests % cfg.Concurrency

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < cfg.Concurrency; i++ {
		n := perWorker
		if i < remainder {
			n++
		}
		wg.Add(1)
		go func(workerID, requests int) {
			defer wg.Done()
			lat, workerErrs := runWorker(cfg, command, workerID, requests)
			atomic.AddInt64(&errs, workerErrs)
			mu.Lock()
			result.Latencies = append(result.Latencies, lat...)
			mu.Unlock()
		}(i, n)
	}
	wg.Wait()

	result.Duration = time.Since(start)
	result.Errors = errs
	result.Throughput = float64(result.Requests) / result.Duration.Seconds()
	if len(result.Latencies) > 0 {
		sort.Slice(result.Latencies, func(i, j int) bool { return result.Latencies[i] < result.Latencies[j] })
		result.P50 = percentile(result.Latencies, 50)
		result.P95 = percentile(result.Latencies, 95)
		result.P99 = percentile(result.Latencies, 99)
	}
	return result
}

func percentile(sorted []time.Duration, p int) time.Duration {
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func runWorker(cfg Config, command string, workerID, requests int) ([]time.Duration, int64) {
	latencies := make([]time.Duration, 0, requests)
	var errs int64

	conn := wiredis.New(wiredis.Options{
		Host:        cfg.Host,
		Port:        cfg.Port,
		Password:    cfg.Password,
		Database:    cfg.Database,
		ClientName:  "wiredis-bench-" + uuid.NewString(),
		DialTimeout: cfg.Timeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	var connectErr error
	if cfg.TLS {
		connectErr = dialTLS(conn, cfg)
	} else {
		connectErr = conn.Connect(ctx)
	}
	if connectErr != nil {
		return nil, int64(requests)
	}
	defer conn.Close()

	if cfg.Pipeline > 1 {
		return runPipelined(conn, cfg, command, workerID, requests)
	}

	for i := 0; i < requests; i++ {
		start := time.Now()
		args := buildCommand(command, cfg, workerID, i)
		if _, err := conn.Command(args...); err != nil {
			errs++
			continue
		}
		latencies = append(latencies, time.Since(start))
	}
	return latencies, errs
}

// dialTLS opens a TLS connection directly and finishes the handshake
// through ConnectWithConn, the same pattern wiredis-cli uses for --tls.
func dialTLS(conn *wiredis.Connection, cfg Config) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	tlsConn, err := tls.DialWithDialer(&net.Dialer{Timeout: cfg.Timeout}, "tcp", addr, &tls.Config{InsecureSkipVerify: true})
	if err != nil {
		return err
	}
	return conn.ConnectWithConn(tlsConn)
}

func runPipelined(conn *wiredis.Connection, cfg Config, command string, workerID, requests int) ([]time.Duration, int64) {
	latencies := make([]time.Duration, 0, requests)
	var errs int64

	for i := 0; i < requests; i += cfg.Pipeline {
		batch := cfg.Pipeline
		if i+batch > requests {
			batch = requests - i
		}

		p := conn.Pipeline()
		for j := 0; j < batch; j++ {
			p.BytesCommand(buildCommand(command, cfg, workerID, i+j)...)
		}

		start := time.Now()
		_, err := p.Execute(false, false)
		elapsed := time.Since(start)
		if err != nil {
			errs += int64(batch)
			continue
		}
		avg := elapsed / time.Duration(batch)
		for j := 0; j < batch; j++ {
			latencies = append(latencies, avg)
		}
	}
	return latencies, errs
}

func buildCommand(command string, cfg Config, workerID, requestID int) [][]byte {
	keySpace := cfg.KeySpace
	if keySpace <= 0 {
		keySpace = 1
	}
	key := fmt.Sprintf("bench:%d:%d", workerID, requestID%keySpace)
	value := strings.Repeat("x", cfg.DataSize)

	switch strings.ToUpper(command) {
	case "PING":
		return [][]byte{[]byte("PING")}
	case "SET":
		return [][]byte{[]byte("SET"), []byte(key), []byte(value)}
	case "GET":
		return [][]byte{[]byte("GET"), []byte(key)}
	case "INCR":
		return [][]byte{[]byte("INCR"), []byte(key)}
	case "HSET":
		field := "field:" + strconv.Itoa(requestID%1000)
		return [][]byte{[]byte("HSET"), []byte(key), []byte(field), []byte(value)}
	case "SADD":
		return [][]byte{[]byte("SADD"), []byte(key), []byte(value)}
	default:
		return [][]byte{[]byte("PING")}
	}
}
