package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jgcri/cassandra-go/internal/adapters"
	"github.com/jgcri/cassandra-go/internal/component"
	"github.com/jgcri/cassandra-go/internal/config"
	"github.com/jgcri/cassandra-go/internal/metrics"
	"github.com/jgcri/cassandra-go/internal/orchestrator"
	"github.com/jgcri/cassandra-go/internal/transport"
	"github.com/jgcri/cassandra-go/pkg/logging"
)

var (
	flagMultiProcess bool
	flagLogDir       string
	flagVerbose      bool
	flagQuiet        bool
	flagRank         int
	flagSize         int
	flagAddr         string
)

// defaultFactory registers the sample adapter component types shipped with
// this module (internal/adapters) under the type tags a control file names
// in its section headers. A deployment with its own model adapters would
// register those instead; this is the set the CLI knows out of the box.
func defaultFactory() *component.Factory {
	f := component.NewFactory()
	f.Register("Producer", adapters.NewProducer)
	f.Register("Collector", adapters.NewCollector)
	f.Register("Chain", adapters.NewChain)
	f.Register("Dummy", adapters.NewDummy)
	return f
}

func runCassandra(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}

	runID := uuid.New()
	logging.Info("cmd", "run %s: loading control file %s", runID, args[0])

	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}

	factory := defaultFactory()

	var res *orchestrator.Result
	if flagMultiProcess {
		res, err = runMultiProcess(cfg, factory)
	} else {
		om := metrics.NewOrchestratorMetrics(nil, "cassandra")
		res, err = orchestrator.RunSingleProcess(cfg, factory, om)
	}
	if err != nil {
		return err
	}

	reportResult(cmd, res)
	logging.Info("cmd", "run %s: finished, all_success=%v", runID, res.AllSuccess())
	if !res.AllSuccess() {
		return errRunFailed
	}
	return nil
}

func initLogging() error {
	level := logging.LevelInfo
	if flagQuiet {
		level = logging.LevelWarn
	}
	if flagVerbose {
		level = logging.LevelDebug
	}

	if flagLogDir == "" {
		logging.InitForCLI(level, os.Stderr)
		return nil
	}

	if err := os.MkdirAll(flagLogDir, 0o755); err != nil {
		return fmt.Errorf("create log directory %s: %w", flagLogDir, err)
	}
	f, err := os.Create(filepath.Join(flagLogDir, "cassandra.log"))
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logging.InitForCLI(level, f)
	return nil
}

// runMultiProcess brings this process up as one peer of the group
// described by --rank/--size/--addr. Rank 0 is the supervisor: it owns the
// parsed control file and distributes assignments; every other rank dials
// in and waits for its slice.
func runMultiProcess(cfg *config.Config, factory *component.Factory) (*orchestrator.Result, error) {
	if flagSize < 1 {
		return nil, fmt.Errorf("--size must be >= 1")
	}

	rm := metrics.NewRABMetrics(nil, "cassandra")
	om := metrics.NewOrchestratorMetrics(nil, "cassandra")

	if flagRank == 0 {
		hub := transport.NewHub(flagSize)
		if err := hub.ServeAndWait(flagAddr); err != nil {
			return nil, fmt.Errorf("listen on %s: %w", flagAddr, err)
		}
		return orchestrator.RunSupervisor(cfg, hub, factory, rm, om)
	}

	peer, err := transport.DialPeer(flagAddr, flagRank, flagSize)
	if err != nil {
		return nil, fmt.Errorf("dial supervisor at %s: %w", flagAddr, err)
	}
	return orchestrator.RunWorker(peer, factory, rm, om)
}
