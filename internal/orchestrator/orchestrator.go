package orchestrator

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jgcri/cassandra-go/internal/component"
	"github.com/jgcri/cassandra-go/internal/config"
	"github.com/jgcri/cassandra-go/internal/metrics"
	"github.com/jgcri/cassandra-go/internal/rab"
	"github.com/jgcri/cassandra-go/internal/registry"
	"github.com/jgcri/cassandra-go/internal/transport"
)

// Result aggregates every local component's terminal status and failure
// error for reporting: zero on all-SUCCESS, non-zero on any FAILURE.
type Result struct {
	Statuses map[string]component.Status
	Errs     map[string]error
}

// AllSuccess reports whether every component in the result reached SUCCESS.
// An empty Result (the "only [Global]" boundary case) is vacuously true.
func (r *Result) AllSuccess() bool {
	for _, s := range r.Statuses {
		if s != component.Success {
			return false
		}
	}
	return true
}

// ExitCode maps AllSuccess to the process exit code callers should return.
func (r *Result) ExitCode() int {
	if r.AllSuccess() {
		return 0
	}
	return 1
}

// RunSingleProcess implements the single-process bootstrap: parse (already
// done by the caller, via config.Load), instantiate and finalize every
// section, start all components, join, and report.
func RunSingleProcess(cfg *config.Config, factory *component.Factory, m *metrics.OrchestratorMetrics) (*Result, error) {
	reg := registry.New()
	if _, err := component.NewGeneral(reg, cfg.Global.Params); err != nil {
		return nil, &ConfigError{Section: "Global", Err: err}
	}

	instances, err := bootstrapLocal(cfg, factory, reg)
	if err != nil {
		return nil, err
	}
	reg.Freeze()

	ctx := context.Background()
	for _, inst := range instances {
		inst.Start(ctx, inst.Runner)
	}
	return join(instances, m), nil
}

// RunSupervisor is the rank-0 half of the multi-process bootstrap: it owns
// the parsed control file, computes the round-robin assignment, sends every
// peer its slice over transport.TagAssignment, then runs its own slice
// through the same per-process flow RunWorker uses.
func RunSupervisor(cfg *config.Config, tr transport.Transport, factory *component.Factory, rm *metrics.RABMetrics, om *metrics.OrchestratorMetrics) (*Result, error) {
	assignments := cfg.AssignRoundRobin(tr.Size())
	for peer := 1; peer < tr.Size(); peer++ {
		payload, err := yaml.Marshal(assignments[peer])
		if err != nil {
			return nil, fmt.Errorf("orchestrator: marshal assignment for peer %d: %w", peer, err)
		}
		if err := tr.Send(peer, transport.TagAssignment, payload); err != nil {
			return nil, fmt.Errorf("%w: %v", rab.ErrTransportFailure, err)
		}
	}
	return runPeer(assignments[0], tr, factory, rm, om)
}

// RunWorker is every non-zero rank's half of the multi-process bootstrap:
// it blocks for its assignment from the supervisor, then runs it through
// the same per-process flow RunSupervisor uses for rank 0's own slice.
func RunWorker(tr transport.Transport, factory *component.Factory, rm *metrics.RABMetrics, om *metrics.OrchestratorMetrics) (*Result, error) {
	payload, err := tr.Recv(0, transport.TagAssignment)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rab.ErrTransportFailure, err)
	}
	var cfg config.Config
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return nil, fmt.Errorf("orchestrator: unmarshal assignment: %w", err)
	}
	return runPeer(&cfg, tr, factory, rm, om)
}

// runPeer is the per-process bootstrap shared by RunSupervisor and
// RunWorker: build the local registry and components, exchange capability
// tables over the RAB, start the RAB listener before any local component
// runs, run to completion, then join the group barrier before shutting the
// RAB down.
func runPeer(cfg *config.Config, tr transport.Transport, factory *component.Factory, rm *metrics.RABMetrics, om *metrics.OrchestratorMetrics) (*Result, error) {
	reg := registry.New()
	if _, err := component.NewGeneral(reg, cfg.Global.Params); err != nil {
		return nil, &ConfigError{Section: "Global", Err: err}
	}

	instances, err := bootstrapLocal(cfg, factory, reg)
	if err != nil {
		return nil, err
	}

	// The RAB bootstrap registers every remotely owned capability into reg,
	// so the registry is frozen only after it completes.
	broker := rab.New(tr, reg, rm)
	if err := broker.Bootstrap(remoteAdvertisable(reg.Names())); err != nil {
		_ = tr.Abort(err.Error())
		return nil, fmt.Errorf("%w: %v", rab.ErrTransportFailure, err)
	}
	reg.Freeze()

	broker.Run()

	ctx := context.Background()
	for _, inst := range instances {
		inst.Start(ctx, inst.Runner)
	}
	res := join(instances, om)

	if err := tr.Barrier(); err != nil {
		broker.Stop()
		broker.Join()
		return res, fmt.Errorf("%w: %v", rab.ErrTransportFailure, err)
	}

	if !res.AllSuccess() {
		// Cover failures that happened off the main flow: make sure no
		// other peer is left waiting on a request this process will now
		// never answer.
		_ = tr.Abort("component failure after barrier")
	}
	broker.Stop()
	broker.Join()

	return res, nil
}

// bootstrapLocal instantiates and finalizes every section in cfg through
// factory, registering each instance's capabilities into reg as it goes —
// both statically declared and parameter-derived capabilities must be
// registered before the first component starts.
func bootstrapLocal(cfg *config.Config, factory *component.Factory, reg *registry.Registry) ([]*component.Instance, error) {
	instances := make([]*component.Instance, 0, len(cfg.Sections))
	for _, sec := range cfg.Sections {
		inst, err := factory.Create(sec.Type, sec.Name, reg)
		if err != nil {
			return nil, &ConfigError{Section: sec.Name, Err: err}
		}
		inst.SetParams(sec.Params)
		if fin, ok := inst.Runner.(component.Finalizer); ok {
			if err := fin.Finalize(inst.Base, sec.Params); err != nil {
				return nil, &ConfigError{Section: sec.Name, Err: err}
			}
		}
		instances = append(instances, inst)
	}
	return instances, nil
}

func join(instances []*component.Instance, m *metrics.OrchestratorMetrics) *Result {
	res := &Result{
		Statuses: make(map[string]component.Status, len(instances)),
		Errs:     make(map[string]error),
	}
	for _, inst := range instances {
		status, err := inst.Wait()
		res.Statuses[inst.Name()] = status
		if err != nil {
			res.Errs[inst.Name()] = err
		}
		if m != nil {
			m.ComponentStatus.WithLabelValues(inst.Name()).Set(float64(status))
		}
	}
	if m != nil {
		outcome := "success"
		if !res.AllSuccess() {
			outcome = "failure"
		}
		m.RunsTotal.WithLabelValues(outcome).Inc()
	}
	return res
}

// remoteAdvertisable strips the well-known "general" pseudo-capability out
// of a local capability list before it is offered to peers: every process
// replicates its own Global section locally, so "general" is intentionally
// non-unique across the group and must never enter the RAB's cross-process
// capability table.
func remoteAdvertisable(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != component.GeneralCapability {
			out = append(out, n)
		}
	}
	return out
}
