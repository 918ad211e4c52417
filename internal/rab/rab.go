package rab

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jgcri/cassandra-go/internal/component"
	"github.com/jgcri/cassandra-go/internal/fetchrouter"
	"github.com/jgcri/cassandra-go/internal/metrics"
	"github.com/jgcri/cassandra-go/internal/registry"
	"github.com/jgcri/cassandra-go/internal/transport"
	"github.com/jgcri/cassandra-go/pkg/logging"
)

// DefaultLoopInterval is how long the listener sleeps between drain passes
// when it finds nothing waiting.
const DefaultLoopInterval = 25 * time.Millisecond

// DefaultWorkerPoolSize bounds how many inbound requests this process
// services concurrently. GOMAXPROCS is a reasonable default: fetch_own can
// block on a producer component, so a pool sized to available cores keeps a
// handful of slow producers from starving the rest.
func DefaultWorkerPoolSize() int { return runtime.GOMAXPROCS(0) }

type reqEnvelope struct {
	Capability string `yaml:"capability"`
}

type respEnvelope struct {
	Value  interface{} `yaml:"value,omitempty"`
	Failed bool        `yaml:"failed,omitempty"`
	ErrMsg string      `yaml:"err,omitempty"`
}

// RAB is the Remote Access Broker: one instance per process, registered
// into the local registry.Registry as the registry.Handle for every
// capability this process learns a peer owns, and standing in as
// fetchrouter.RemoteFetcher whenever a local component fetches one of them.
type RAB struct {
	tr      transport.Transport
	reg     *registry.Registry
	metrics *metrics.RABMetrics

	// LoopInterval is the listener's sleep between empty drain passes.
	// Defaults to DefaultLoopInterval; exported so tests can shrink it.
	LoopInterval time.Duration
	// WorkerPoolSize bounds inbound concurrency. Defaults to
	// DefaultWorkerPoolSize().
	WorkerPoolSize int

	nextTag int64

	muRemote    sync.RWMutex
	remoteOwner map[string]int // capability -> owning rank

	sem          chan struct{}
	pendingCount int64
	terminate    atomic.Bool
	listenerDone chan struct{}
}

// New builds a RAB bound to tr and reg. m may be nil to disable metrics.
func New(tr transport.Transport, reg *registry.Registry, m *metrics.RABMetrics) *RAB {
	return &RAB{
		tr:             tr,
		reg:            reg,
		metrics:        m,
		LoopInterval:   DefaultLoopInterval,
		WorkerPoolSize: DefaultWorkerPoolSize(),
		remoteOwner:    make(map[string]int),
		listenerDone:   make(chan struct{}),
	}
}

// Bootstrap exchanges capability tables with every peer: this process's
// locally declared capabilities are gathered to rank 0,
// merged (failing on any name collision across ranks), and the merged
// {capability: rank} table is broadcast back to everyone over TagCapTable.
// Every capability owned by a peer is then registered into reg with this
// RAB as its handle, so fetchrouter.Fetch routes it through FetchRemote.
func (r *RAB) Bootstrap(localCapabilities []string) error {
	payload, err := yaml.Marshal(localCapabilities)
	if err != nil {
		return fmt.Errorf("rab: marshal local capability list: %w", err)
	}

	gathered, err := r.tr.Gather(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}

	var tablePayload []byte
	if r.tr.Rank() == 0 {
		merged := make(map[string]int)
		for rank, raw := range gathered {
			var caps []string
			if err := yaml.Unmarshal(raw, &caps); err != nil {
				return fmt.Errorf("rab: unmarshal capability list from rank %d: %w", rank, err)
			}
			for _, cap := range caps {
				if owner, exists := merged[cap]; exists {
					reason := fmt.Sprintf("capability %s claimed by both rank %d and rank %d", cap, owner, rank)
					_ = r.tr.Abort(reason)
					return fmt.Errorf("%w: %s", ErrDuplicateRemoteCapability, reason)
				}
				merged[cap] = rank
			}
		}
		tablePayload, err = yaml.Marshal(merged)
		if err != nil {
			return fmt.Errorf("rab: marshal merged capability table: %w", err)
		}
		for peer := 1; peer < r.tr.Size(); peer++ {
			if err := r.tr.Send(peer, transport.TagCapTable, tablePayload); err != nil {
				return fmt.Errorf("%w: %v", ErrTransportFailure, err)
			}
		}
	} else {
		tablePayload, err = r.tr.Recv(0, transport.TagCapTable)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTransportFailure, err)
		}
	}

	var table map[string]int
	if err := yaml.Unmarshal(tablePayload, &table); err != nil {
		return fmt.Errorf("rab: unmarshal capability table: %w", err)
	}

	own := r.tr.Rank()
	r.muRemote.Lock()
	for cap, owner := range table {
		if owner == own {
			continue
		}
		r.remoteOwner[cap] = owner
	}
	r.muRemote.Unlock()

	r.muRemote.RLock()
	defer r.muRemote.RUnlock()
	for cap := range r.remoteOwner {
		if err := r.reg.Register(cap, r); err != nil {
			return fmt.Errorf("rab: registering remote capability %s: %w", cap, err)
		}
	}
	return nil
}

// FetchRemote satisfies fetchrouter.RemoteFetcher. It allocates a fresh
// correlation tag, sends a REQUEST to the owning rank, and blocks for the
// matching RESPONSE.
func (r *RAB) FetchRemote(capability string) (interface{}, error) {
	r.muRemote.RLock()
	peer, ok := r.remoteOwner[capability]
	r.muRemote.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s has no known remote owner", fetchrouter.ErrCapabilityNotFound, capability)
	}

	tag := transport.Tag(atomic.AddInt64(&r.nextTag, 1))
	reqPayload, err := yaml.Marshal(reqEnvelope{Capability: capability})
	if err != nil {
		return nil, fmt.Errorf("rab: marshal request for %s: %w", capability, err)
	}

	start := time.Now()
	if err := r.tr.Send(peer, tag, reqPayload); err != nil {
		r.countOutbound("error")
		return nil, fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}
	respPayload, err := r.tr.Recv(peer, tag)
	if err != nil {
		r.countOutbound("error")
		return nil, fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}
	if r.metrics != nil {
		r.metrics.ResponseSeconds.Observe(time.Since(start).Seconds())
	}

	var resp respEnvelope
	if err := yaml.Unmarshal(respPayload, &resp); err != nil {
		r.countOutbound("error")
		return nil, fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}
	if resp.Failed {
		r.countOutbound("error")
		return nil, fmt.Errorf("%w: %s", component.ErrProducerFailed, resp.ErrMsg)
	}
	r.countOutbound("ok")
	return resp.Value, nil
}

func (r *RAB) countOutbound(outcome string) {
	if r.metrics != nil {
		r.metrics.RequestsTotal.WithLabelValues("outbound", outcome).Inc()
	}
}

// Run starts the inbound listener on its own goroutine and returns
// immediately.
func (r *RAB) Run() {
	if r.sem == nil {
		r.sem = make(chan struct{}, max(r.WorkerPoolSize, 1))
	}
	go r.listen()
}

// Stop requests the listener to exit once every in-flight inbound request
// has been answered. Call only after every local component has finished and
// the group barrier has passed, so no peer can still be waiting on a
// response this process hasn't sent yet.
func (r *RAB) Stop() {
	r.terminate.Store(true)
}

// Join blocks until the listener started by Run has returned.
func (r *RAB) Join() {
	<-r.listenerDone
}

func (r *RAB) listen() {
	defer close(r.listenerDone)
	for {
		r.drainInbound()

		if r.terminate.Load() && atomic.LoadInt64(&r.pendingCount) == 0 {
			return
		}
		time.Sleep(r.LoopInterval)
	}
}

func (r *RAB) drainInbound() {
	own := r.tr.Rank()
	for peer := 0; peer < r.tr.Size(); peer++ {
		if peer == own {
			continue
		}
		for r.tr.ProbeAny(peer) {
			payload, tag, err := r.tr.RecvAny(peer)
			if err != nil {
				logging.Error("rab", err, "listener: recv from rank %d failed", peer)
				return
			}
			var req reqEnvelope
			if err := yaml.Unmarshal(payload, &req); err != nil {
				logging.Error("rab", err, "listener: malformed request from rank %d", peer)
				continue
			}
			r.spawnWorker(peer, tag, req.Capability)
		}
	}
}

func (r *RAB) spawnWorker(peer int, tag transport.Tag, capability string) {
	atomic.AddInt64(&r.pendingCount, 1)
	if r.metrics != nil {
		r.metrics.RequestsInFlight.Inc()
	}
	go func() {
		r.sem <- struct{}{}
		defer func() { <-r.sem }()
		defer atomic.AddInt64(&r.pendingCount, -1)

		start := time.Now()
		value, err := fetchrouter.Fetch(r.reg, r, capability)
		resp := respEnvelope{Value: value}
		outcome := "ok"
		if err != nil {
			resp = respEnvelope{Failed: true, ErrMsg: err.Error()}
			outcome = "error"
		}

		payload, merr := yaml.Marshal(resp)
		if merr != nil {
			payload, _ = yaml.Marshal(respEnvelope{Failed: true, ErrMsg: merr.Error()})
			outcome = "error"
		}
		if sendErr := r.tr.Send(peer, tag, payload); sendErr != nil {
			logging.Error("rab", sendErr, "listener: failed to respond to rank %d", peer)
		}

		if r.metrics != nil {
			r.metrics.RequestsInFlight.Dec()
			r.metrics.RequestsTotal.WithLabelValues("inbound", outcome).Inc()
			r.metrics.ResponseSeconds.Observe(time.Since(start).Seconds())
		}
	}()
}

// sortedRemoteCapabilities is used by tests to get a deterministic view of
// which capabilities this RAB believes are remote.
func (r *RAB) sortedRemoteCapabilities() []string {
	r.muRemote.RLock()
	defer r.muRemote.RUnlock()
	names := make([]string, 0, len(r.remoteOwner))
	for name := range r.remoteOwner {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
