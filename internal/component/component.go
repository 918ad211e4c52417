package component

import (
	"context"
	"fmt"
	"sync"

	"github.com/jgcri/cassandra-go/internal/registry"
	"github.com/jgcri/cassandra-go/pkg/logging"
)

// Status is the component lifecycle state: PENDING monotonically
// transitions to exactly one of SUCCESS or FAILURE, which are absorbing.
type Status int

const (
	Pending Status = iota
	Success
	Failure
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Success:
		return "SUCCESS"
	case Failure:
		return "FAILURE"
	default:
		return "UNKNOWN"
	}
}

// Runner is the user-supplied body of a component: the work a model adapter
// performs. Run must call Publish on its *Base for every declared capability
// before returning nil. A non-nil return (or a panic, which the body
// wrapper recovers and converts into an error) transitions the component to
// FAILURE.
type Runner interface {
	Run(ctx context.Context, b *Base) error
}

// RunnerFunc adapts a plain function to Runner.
type RunnerFunc func(ctx context.Context, b *Base) error

func (f RunnerFunc) Run(ctx context.Context, b *Base) error { return f(ctx, b) }

// Base is the monitor embedded by every component instance. It owns the
// one-shot broadcast rendezvous (I3), the declared-capability set, and the
// published results.
type Base struct {
	mu   sync.Mutex
	cond *sync.Cond

	name   string
	reg    *registry.Registry
	params Params

	capabilities map[string]struct{}
	results      map[string]interface{}

	status Status
	err    error
	done   bool
}

// New creates a component named name, using reg to register its declared
// capabilities. name is the fully disambiguated instance name (the INI
// section name, dot-suffix included) so two instances of the same type tag
// never collide.
func New(name string, reg *registry.Registry) *Base {
	b := &Base{
		name:         name,
		reg:          reg,
		capabilities: make(map[string]struct{}),
		results:      make(map[string]interface{}),
		status:       Pending,
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Name returns the component instance name.
func (b *Base) Name() string { return b.name }

// Params returns the finalized parameter map (nil until Finalize runs).
func (b *Base) Params() Params { return b.params }

// SetParams stores the finalized parameter map. Called by the component
// factory's Finalize step, before Start.
func (b *Base) SetParams(p Params) { b.params = p }

// DeclareCapability registers name in the registry with this component as
// owner, and records it as locally owned so Publish will accept it. Usable
// both at construction (static capabilities) and after parameter finalization
// (parameter-derived capabilities) — both must run before Start, since the
// registry is frozen once bootstrap finishes declaring capabilities.
func (b *Base) DeclareCapability(name string) error {
	if err := b.reg.Register(name, b); err != nil {
		return err
	}
	b.mu.Lock()
	b.capabilities[name] = struct{}{}
	b.mu.Unlock()
	return nil
}

// Capabilities returns the set of capability names this component declared.
func (b *Base) Capabilities() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.capabilities))
	for c := range b.capabilities {
		out = append(out, c)
	}
	return out
}

// Start launches runner.Run on a new goroutine, wrapped so that the status
// transition and the published results become visible together, and the
// rendezvous fires exactly once on exit. Start is not idempotent — calling
// it twice on the same Base is a programming error: the body runs twice, and
// whichever wrapper finishes second panics on finding the status already
// terminal.
func (b *Base) Start(ctx context.Context, runner Runner) {
	go b.runWrapper(ctx, runner)
}

func (b *Base) runWrapper(ctx context.Context, runner Runner) {
	status, err := b.invoke(ctx, runner)

	b.mu.Lock()
	if b.done {
		b.mu.Unlock()
		panic(fmt.Sprintf("component %s: Start called more than once", b.name))
	}
	b.status = status
	b.err = err
	b.done = true
	b.mu.Unlock()

	// Broadcast outside any lock callers might take inside their own
	// notification handling, but after the state is fully visible.
	b.cond.Broadcast()

	if status == Success {
		logging.Info("Component", "%s: finished successfully", b.name)
	} else {
		logging.Error("Component", err, "%s: failed", b.name)
	}
}

// invoke runs the body and recovers a panic into a FAILURE: an error return
// and an exceptional exit both end a component the same way. Go has no
// separate exception channel, so a panicking Run and an error-returning Run
// are observed identically by consumers, rather than letting a panic escape
// and take the whole process down with it.
func (b *Base) invoke(ctx context.Context, runner Runner) (status Status, err error) {
	defer func() {
		if r := recover(); r != nil {
			status = Failure
			err = &ComponentFailureError{Component: b.name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if runErr := runner.Run(ctx, b); runErr != nil {
		return Failure, &ComponentFailureError{Component: b.name, Err: runErr}
	}
	return Success, nil
}

// Publish stores value under capability, which must have been declared by
// this component. Valid only from the component's own body goroutine, so
// there is never write contention on results — readers need only the
// rendezvous's memory-visibility effect, not a lock of their own.
func (b *Base) Publish(capability string, value interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, owned := b.capabilities[capability]; !owned {
		return fmt.Errorf("%w: %s not declared by %s", ErrCapNotOwned, capability, b.name)
	}
	if owner, ok := b.reg.Lookup(capability); !ok || owner != Handle(b) {
		return fmt.Errorf("%w: %s", ErrCapUnknown, capability)
	}
	b.results[capability] = value
	return nil
}

// Handle is the registry.Handle alias used when registering a *Base; kept
// distinct from registry.Handle itself only so component.go doesn't need to
// import registry twice under two names.
type Handle = registry.Handle

// FetchOwn blocks until status leaves PENDING, then returns the published
// value for capability, or ErrProducerFailed if the component ended in
// FAILURE. It never returns stale data: the rendezvous only fires after the
// wrapper has written b.status and b.results together (I2, I3).
func (b *Base) FetchOwn(capability string) (interface{}, error) {
	b.mu.Lock()
	for b.status == Pending {
		b.cond.Wait()
	}
	status := b.status
	value, published := b.results[capability]
	b.mu.Unlock()

	if status == Failure {
		return nil, fmt.Errorf("%w: %s", ErrProducerFailed, b.name)
	}
	if !published {
		return nil, fmt.Errorf("capability %s was not published by %s", capability, b.name)
	}
	return value, nil
}

// Wait blocks until the component leaves PENDING and returns its terminal
// status and failure error (nil on SUCCESS). Unlike FetchOwn it has no
// opinion about capabilities — it is what the Orchestrator calls to join a
// component instead of fetching one of its results.
func (b *Base) Wait() (Status, error) {
	b.mu.Lock()
	for b.status == Pending {
		b.cond.Wait()
	}
	status, err := b.status, b.err
	b.mu.Unlock()
	return status, err
}

// Status returns the current lifecycle state.
func (b *Base) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// Err returns the failure error, if any.
func (b *Base) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}
