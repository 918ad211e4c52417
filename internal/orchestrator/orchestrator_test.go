package orchestrator

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgcri/cassandra-go/internal/adapters"
	"github.com/jgcri/cassandra-go/internal/component"
	"github.com/jgcri/cassandra-go/internal/config"
	"github.com/jgcri/cassandra-go/internal/transport"
)

var nextOrchestratorPort int32 = 19900

func startOrchestratorGroup(t *testing.T, size int) []transport.Transport {
	t.Helper()
	addr := fmt.Sprintf("127.0.0.1:%d", atomic.AddInt32(&nextOrchestratorPort, 1))
	hub := transport.NewHub(size)
	go func() { _ = hub.ServeAndWait(addr) }()
	time.Sleep(50 * time.Millisecond)

	group := make([]transport.Transport, size)
	group[0] = hub
	done := make(chan struct{})
	go func() {
		for rank := 1; rank < size; rank++ {
			p, err := transport.DialPeer(addr, rank, size)
			require.NoError(t, err)
			group[rank] = p
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("peers never connected")
	}
	return group
}

func newTestFactory() *component.Factory {
	f := component.NewFactory()
	f.Register("Producer", adapters.NewProducer)
	f.Register("Collector", adapters.NewCollector)
	f.Register("Chain", adapters.NewChain)
	f.Register("Dummy", adapters.NewDummy)
	return f
}

func scalarParams(kv map[string]string) component.Params {
	p := make(component.Params, len(kv))
	for k, v := range kv {
		p[k] = component.NewScalar(v)
	}
	return p
}

func TestRunSingleProcess_Diamond(t *testing.T) {
	cfg := &config.Config{
		Global: config.Section{Name: "Global", Type: "Global", Params: component.Params{}},
		Sections: []config.Section{
			{Name: "A", Type: "Producer", Weight: 1, Params: scalarParams(map[string]string{"capability": "a.out", "value": "1"})},
			{Name: "B", Type: "Producer", Weight: 1, Params: scalarParams(map[string]string{"capability": "b.out", "value": "2"})},
			{Name: "C", Type: "Collector", Weight: 1, Params: component.Params{
				"capability": component.NewScalar("c.out"),
				"inputs":     component.NewList([]string{"a.out", "b.out"}),
			}},
			{Name: "D", Type: "Chain", Weight: 1, Params: scalarParams(map[string]string{"capability": "d.out", "input": "c.out"})},
		},
	}

	res, err := RunSingleProcess(cfg, newTestFactory(), nil)
	require.NoError(t, err)
	require.True(t, res.AllSuccess())
	assert.Equal(t, 0, res.ExitCode())

	for _, name := range []string{"A", "B", "C", "D"} {
		assert.Equal(t, component.Success, res.Statuses[name])
	}
}

func TestRunSingleProcess_PropagatedFailure(t *testing.T) {
	cfg := &config.Config{
		Global: config.Section{Name: "Global", Type: "Global", Params: component.Params{}},
		Sections: []config.Section{
			{Name: "A", Type: "Dummy", Weight: 1, Params: component.Params{
				"provides": component.NewList([]string{"a.out"}),
				"fail":     component.NewScalar("true"),
			}},
			{Name: "B", Type: "Chain", Weight: 1, Params: scalarParams(map[string]string{"capability": "b.out", "input": "a.out"})},
		},
	}

	res, err := RunSingleProcess(cfg, newTestFactory(), nil)
	require.NoError(t, err)
	require.False(t, res.AllSuccess())
	assert.NotEqual(t, 0, res.ExitCode())

	assert.Equal(t, component.Failure, res.Statuses["A"])
	assert.Equal(t, component.Failure, res.Statuses["B"])
	assert.True(t, errors.Is(res.Errs["B"], component.ErrProducerFailed))
}

func TestRunSingleProcess_ChainBlocking(t *testing.T) {
	cfg := &config.Config{
		Global: config.Section{Name: "Global", Type: "Global", Params: component.Params{}},
		Sections: []config.Section{
			{Name: "N3", Type: "Chain", Weight: 1, Params: scalarParams(map[string]string{"capability": "n3.out", "value": "done", "delay": "0.1"})},
			{Name: "N2", Type: "Chain", Weight: 1, Params: scalarParams(map[string]string{"capability": "n2.out", "input": "n3.out", "delay": "0.1"})},
			{Name: "N1", Type: "Chain", Weight: 1, Params: scalarParams(map[string]string{"capability": "n1.out", "input": "n2.out", "delay": "0.1"})},
		},
	}

	start := time.Now()
	res, err := RunSingleProcess(cfg, newTestFactory(), nil)
	elapsed := time.Since(start)
	require.NoError(t, err)
	require.True(t, res.AllSuccess())

	assert.GreaterOrEqual(t, elapsed, 280*time.Millisecond)
	assert.Less(t, elapsed, 900*time.Millisecond)
}

func TestRunSingleProcess_DuplicateCapability(t *testing.T) {
	cfg := &config.Config{
		Global: config.Section{Name: "Global", Type: "Global", Params: component.Params{}},
		Sections: []config.Section{
			{Name: "A", Type: "Producer", Weight: 1, Params: scalarParams(map[string]string{"capability": "dup", "value": "1"})},
			{Name: "B", Type: "Producer", Weight: 1, Params: scalarParams(map[string]string{"capability": "dup", "value": "2"})},
		},
	}

	res, err := RunSingleProcess(cfg, newTestFactory(), nil)
	require.Error(t, err)
	assert.Nil(t, res)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.True(t, errors.Is(err, component.ErrConfigInvalid))
}

func TestRunSingleProcess_GlobalOnly(t *testing.T) {
	cfg := &config.Config{
		Global: config.Section{Name: "Global", Type: "Global", Params: component.Params{}},
	}

	res, err := RunSingleProcess(cfg, newTestFactory(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Statuses)
	assert.Equal(t, 0, res.ExitCode())
}

func TestMultiProcess_RoundTripAcrossPeers(t *testing.T) {
	group := startOrchestratorGroup(t, 2)
	defer func() {
		for _, tr := range group {
			_ = tr.Close()
		}
	}()

	cfg := &config.Config{
		Global: config.Section{Name: "Global", Type: "Global", Params: component.Params{}},
		Sections: []config.Section{
			{Name: "P", Type: "Producer", Weight: 1, Params: scalarParams(map[string]string{"capability": "x.out", "value": "42"})},
			{Name: "C", Type: "Chain", Weight: 1, Params: scalarParams(map[string]string{"capability": "c.out", "input": "x.out"})},
		},
	}

	type outcome struct {
		res *Result
		err error
	}
	supCh := make(chan outcome, 1)
	workCh := make(chan outcome, 1)

	go func() {
		res, err := RunSupervisor(cfg, group[0], newTestFactory(), nil, nil)
		supCh <- outcome{res, err}
	}()
	go func() {
		res, err := RunWorker(group[1], newTestFactory(), nil, nil)
		workCh <- outcome{res, err}
	}()

	var sup, work outcome
	select {
	case sup = <-supCh:
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor never finished")
	}
	select {
	case work = <-workCh:
	case <-time.After(5 * time.Second):
		t.Fatal("worker never finished")
	}

	require.NoError(t, sup.err)
	require.NoError(t, work.err)
	require.True(t, sup.res.AllSuccess())
	require.True(t, work.res.AllSuccess())

	assert.Equal(t, component.Success, sup.res.Statuses["P"])
	assert.Equal(t, component.Success, work.res.Statuses["C"])
}
