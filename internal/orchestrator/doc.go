// Package orchestrator builds components through a component.Factory from
// an already-parsed config.Config, runs them to completion, and reports an
// aggregated Result. RunSingleProcess
// follows the single-process bootstrap; RunSupervisor (rank 0) and
// RunWorker (every other rank) add the assignment distribution, RAB
// bootstrap, and shutdown barrier described for multi-process mode, sharing
// the same per-process bootstrap helper used by RunSingleProcess.
package orchestrator
