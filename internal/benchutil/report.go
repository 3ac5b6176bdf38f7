package benchutil

import (
	"fmt"
	"time"
)

// PrintResults renders results either as CSV or the human-readable report,
// per cfg.CSV.
func PrintResults(results []Result, cfg Config) {
	if cfg.CSV {
		printCSV(results)
		return
	}

	if !cfg.Quiet {
		fmt.Println("\nBenchmark Results:")
		fmt.Println("==================")
	}
	for _, r := range results {
		if cfg.Quiet {
			fmt.Printf("%s: %.2f req/s, p50=%s\n", r.Command, r.Throughput, formatDuration(r.P50))
			continue
		}
		fmt.Printf("%s: %.2f req/s\n", r.Command, r.Throughput)
		fmt.Printf("  duration: %s\n", formatDuration(r.Duration))
		fmt.Printf("  requests: %d\n", r.Requests)
		fmt.Printf("  errors:   %d\n", r.Errors)
		fmt.Printf("  p50: %s  p95: %s  p99: %s\n", formatDuration(r.P50), formatDuration(r.P95), formatDuration(r.P99))
		if cfg.LatencyHist && len(r.Latencies) > 0 {
			printHistogram(r.Latencies)
		}
		fmt.Println()
	}

	if !cfg.Quiet {
		printSummary(results)
	}
}

func printCSV(results []Result) {
	fmt.Println("Command,Requests,Errors,Duration,Throughput,P50,P95,P99")
	for _, r := range results {
		fmt.Printf("%s,%d,%d,%s,%.2f,%s,%s,%s\n",
			r.Command, r.Requests, r.Errors, formatDuration(r.Duration), r.Throughput,
			formatDuration(r.P50), formatDuration(r.P95), formatDuration(r.P99))
	}
}

func printHistogram(latencies []time.Duration) {
	buckets := []time.Duration{
		1 * time.Microsecond, 10 * time.Microsecond, 100 * time.Microsecond,
		1 * time.Millisecond, 10 * time.Millisecond, 100 * time.Millisecond, 1 * time.Second,
	}
	fmt.Println("  latency histogram:")
	for _, bucket := range buckets {
		count := 0
		for _, lat := range latencies {
			if lat <= bucket {
				count++
			}
		}
		pct := float64(count) / float64(len(latencies)) * 100
		fmt.Printf("    <=%s: %.1f%%\n", formatDuration(bucket), pct)
	}
}

func printSummary(results []Result) {
	if len(results) == 0 {
		return
	}
	var totalReq, totalErr int64
	var totalThroughput float64
	for _, r := range results {
		totalReq += r.Requests
		totalErr += r.Errors
		totalThroughput += r.Throughput
	}
	fmt.Println("Summary:")
	fmt.Printf("  total requests:     %d\n", totalReq)
	fmt.Printf("  total errors:       %d\n", totalErr)
	fmt.Printf("  error rate:         %.2f%%\n", float64(totalErr)/float64(totalReq)*100)
	fmt.Printf("  average throughput: %.2f req/s\n", totalThroughput/float64(len(results)))
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%.3fns", float64(d.Nanoseconds()))
	case d < time.Millisecond:
		return fmt.Sprintf("%.3fµs", float64(d.Microseconds()))
	case d < time.Second:
		return fmt.Sprintf("%.3fms", float64(d.Milliseconds()))
	default:
		return fmt.Sprintf("%.3fs", d.Seconds())
	}
}
