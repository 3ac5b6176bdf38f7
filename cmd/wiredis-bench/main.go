// Command wiredis-bench is a load generator for a RESP2 server, the
// wiredis analogue of redis-benchmark, grounded on the teacher's
// "gridhouse benchmark" subcommand but driven through wiredis.Connection
// and wiredis.Pipeline instead of raw sockets.
package main

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wiredis/internal/benchutil"
)

func main() {
	var cfg benchutil.Config
	var commandsFlag string

	rootCmd := &cobra.Command{
		Use:   "wiredis-bench",
		Short: "Benchmark a RESP2 server through the wiredis client",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Commands = splitCommands(commandsFlag)
			results := benchutil.Run(cfg)
			benchutil.PrintResults(results, cfg)
			return nil
		},
	}

	rootCmd.Flags().StringVar(&cfg.Host, "host", "127.0.0.1", "server host")
	rootCmd.Flags().IntVarP(&cfg.Port, "port", "p", 6379, "server port")
	rootCmd.Flags().StringVarP(&cfg.Password, "password", "a", "", "server password")
	rootCmd.Flags().IntVarP(&cfg.Database, "db", "d", 0, "database number")
	rootCmd.Flags().IntVarP(&cfg.Requests, "requests", "n", 10000, "total requests per command")
	rootCmd.Flags().IntVarP(&cfg.Concurrency, "concurrency", "c", 50, "number of parallel workers")
	rootCmd.Flags().IntVarP(&cfg.Pipeline, "pipeline", "P", 1, "commands per pipeline batch (1 disables pipelining)")
	rootCmd.Flags().DurationVar(&cfg.Timeout, "timeout", 5*time.Second, "connection timeout")
	rootCmd.Flags().BoolVar(&cfg.TLS, "tls", false, "use TLS (skips certificate verification)")
	rootCmd.Flags().IntVar(&cfg.DataSize, "data-size", 16, "value size in bytes for SET/HSET/SADD")
	rootCmd.Flags().IntVar(&cfg.KeySpace, "keyspace", 10000, "number of distinct keys to cycle through")
	rootCmd.Flags().StringVar(&commandsFlag, "commands", "PING,SET,GET,INCR", "comma-separated commands to benchmark")
	rootCmd.Flags().BoolVarP(&cfg.Quiet, "quiet", "q", false, "print one summary line per command")
	rootCmd.Flags().BoolVar(&cfg.CSV, "csv", false, "print results as CSV")
	rootCmd.Flags().BoolVar(&cfg.LatencyHist, "latency-histogram", false, "print a latency histogram per command")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func splitCommands(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
