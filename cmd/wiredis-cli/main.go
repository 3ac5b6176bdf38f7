// Command wiredis-cli is an interactive RESP client, the wiredis analogue
// of redis-cli, grounded on the teacher's "gridhouse cli" subcommand but
// built on top of the wiredis.Connection API instead of a hand-rolled
// socket reader.
package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"wiredis/internal/cliutil"
)

func main() {
	var cfg cliutil.Config
	var args []string

	rootCmd := &cobra.Command{
		Use:   "wiredis-cli [command ...]",
		Short: "Interactive wiredis command-line client",
		Long: `Interactive wiredis command-line client, similar to redis-cli.

Examples:
  wiredis-cli
  wiredis-cli --host 127.0.0.1 --port 6379
  wiredis-cli --eval "SET key value"
  wiredis-cli --file commands.txt
  wiredis-cli GET key`,
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			args = cmdArgs
			os.Exit(cliutil.Run(cfg, args))
			return nil
		},
	}

	rootCmd.Flags().StringVar(&cfg.Host, "host", "127.0.0.1", "server host")
	rootCmd.Flags().IntVarP(&cfg.Port, "port", "p", 6379, "server port")
	rootCmd.Flags().StringVarP(&cfg.Password, "password", "a", "", "server password")
	rootCmd.Flags().IntVarP(&cfg.Database, "db", "d", 0, "database number")
	rootCmd.Flags().DurationVar(&cfg.Timeout, "timeout", 5*time.Second, "connection timeout")
	rootCmd.Flags().BoolVar(&cfg.TLS, "tls", false, "use TLS (skips certificate verification)")
	rootCmd.Flags().BoolVar(&cfg.Raw, "raw", false, "use raw formatting for replies")
	rootCmd.Flags().StringVar(&cfg.Eval, "eval", "", "send the specified command and exit")
	rootCmd.Flags().StringVar(&cfg.File, "file", "", "execute commands from file")
	rootCmd.Flags().BoolVar(&cfg.Pipe, "pipe", false, "pipe mode: read commands from stdin")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
