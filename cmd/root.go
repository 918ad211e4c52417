package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jgcri/cassandra-go/internal/config"
	"github.com/jgcri/cassandra-go/internal/orchestrator"
	"github.com/jgcri/cassandra-go/internal/rab"
)

// Exit codes: zero on all-SUCCESS, non-zero on any failure. The
// finer-grained codes beyond that are this CLI's own addition, useful for
// scripting around the difference between a bad control file and a
// component that actually ran and failed.
const (
	ExitCodeSuccess       = 0
	ExitCodeRunFailed     = 1
	ExitCodeConfigInvalid = 2
	ExitCodeTransport     = 3
)

// errRunFailed is returned by runCassandra when every component ran to
// completion but at least one ended in FAILURE — distinct from a
// ConfigError (bootstrap never started a component) or a transport error
// (the group never finished cleanly).
var errRunFailed = errors.New("cassandra: one or more components failed")

// rootCmd runs a control file, either as a single process or as one peer of
// a multi-process group. Its only subcommand is version.
var rootCmd = &cobra.Command{
	Use:   "cassandra <control-file>",
	Short: "Run a model-coupling control file",
	Long: `cassandra bootstraps a group of components from an INI control file,
runs them concurrently, and reports their aggregated terminal status.

In multi-process mode (--mp), this binary must be launched once per peer,
exactly as an MPI rank would be — one process per --rank, all sharing the
same --addr, with rank 0 acting as the supervisor. Distributing the launches
across peers is left to the caller's process manager, the same way mpirun
distributes ranks across a cluster.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runCassandra,
}

// SetVersion sets the version for the root command. Called from
// main.main() to inject the build-time version.
func SetVersion(v string) { rootCmd.Version = v }

// Execute runs the CLI and terminates the process with an exit code
// derived from the error returned, if any.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "cassandra version %s\n" .Version}}`)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	var cfgErr *orchestrator.ConfigError
	if errors.As(err, &cfgErr) || errors.Is(err, config.ErrMissingGlobal) {
		return ExitCodeConfigInvalid
	}
	if errors.Is(err, rab.ErrTransportFailure) {
		return ExitCodeTransport
	}
	return ExitCodeRunFailed
}

func init() {
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.Flags().BoolVar(&flagMultiProcess, "mp", false, "enable multi-process mode")
	rootCmd.Flags().StringVarP(&flagLogDir, "log-dir", "l", "", "log directory (created if missing); stderr if unset")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug-level logging (wins over -q)")
	rootCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "warnings-only logging")
	rootCmd.Flags().IntVar(&flagRank, "rank", 0, "this process's rank within the group (--mp only)")
	rootCmd.Flags().IntVar(&flagSize, "size", 1, "total number of peers in the group (--mp only)")
	rootCmd.Flags().StringVar(&flagAddr, "addr", "127.0.0.1:8734", "supervisor listen/dial address (--mp only)")
}

// reportResult writes a one-line summary per component to cmd's configured
// output, keeping CLI summaries terse and leaving detail to the log file.
func reportResult(cmd *cobra.Command, res *orchestrator.Result) {
	for name, status := range res.Statuses {
		if err := res.Errs[name]; err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%v)\n", name, status, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, status)
	}
}
