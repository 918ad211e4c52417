package rab

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgcri/cassandra-go/internal/adapters"
	"github.com/jgcri/cassandra-go/internal/component"
	"github.com/jgcri/cassandra-go/internal/registry"
	"github.com/jgcri/cassandra-go/internal/transport"
)

var nextPort int32 = 19200

// startGroup brings up a transport.Hub and n-1 transport.Peers against an
// ephemeral loopback port, mirroring internal/transport's own test helper
// (unexported there, so duplicated here rather than exported just for
// tests).
func startGroup(t *testing.T, size int) []transport.Transport {
	t.Helper()
	addr := fmt.Sprintf("127.0.0.1:%d", atomic.AddInt32(&nextPort, 1))
	hub := transport.NewHub(size)

	go func() {
		_ = hub.ServeAndWait(addr)
	}()
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

func TestBootstrap_ExchangesAndRoutesCapabilityTables(t *testing.T) {
	group := startGroup(t, 2)
	defer func() {
		for _, tr := range group {
			_ = tr.Close()
		}
	}()

	regA := registry.New()
	regB := registry.New()

	// Rank 0 (A) hosts a real local producer publishing "shared.value".
	reg := regA
	prod, err := adapters.NewProducer("producer", reg)
	require.NoError(t, err)
	prod.SetParams(component.Params{
		"capability": component.NewScalar("shared.value"),
		"value":      component.NewScalar("42"),
	})
	require.NoError(t, prod.Runner.(component.Finalizer).Finalize(prod.Base, prod.Params()))
	rabA := New(group[0], regA, nil)
	rabA.LoopInterval = time.Millisecond
	rabB := New(group[1], regB, nil)
	rabB.LoopInterval = time.Millisecond

	done := make(chan error, 2)
	go func() { done <- rabA.Bootstrap(regA.Names()) }()
	go func() { done <- rabB.Bootstrap(nil) }()

	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("bootstrap never completed")
		}
	}
	// Bootstrap registers remote capabilities, so both registries are
	// frozen only once it has finished.
	reg.Freeze()
	regB.Freeze()

	assert.Empty(t, rabA.sortedRemoteCapabilities())
	assert.Equal(t, []string{"shared.value"}, rabB.sortedRemoteCapabilities())

	prod.Start(context.Background(), prod.Runner)
	status, err := prod.Wait()
	require.NoError(t, err)
	assert.Equal(t, component.Success, status)

	rabA.Run()
	defer func() {
		rabA.Stop()
		rabA.Join()
	}()

	v, err := rabB.FetchRemote("shared.value")
	require.NoError(t, err)
	assert.Equal(t, "42", v)
}

func TestBootstrap_DuplicateCapabilityAborts(t *testing.T) {
	group := startGroup(t, 2)
	defer func() {
		for _, tr := range group {
			_ = tr.Close()
		}
	}()

	rabA := New(group[0], registry.New(), nil)
	rabB := New(group[1], registry.New(), nil)

	done := make(chan error, 2)
	go func() { done <- rabA.Bootstrap([]string{"collide"}) }()
	go func() { done <- rabB.Bootstrap([]string{"collide"}) }()

	var errs []error
	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			errs = append(errs, err)
		case <-time.After(2 * time.Second):
			t.Fatal("bootstrap never completed")
		}
	}

	var sawDuplicate bool
	for _, err := range errs {
		if err != nil {
			sawDuplicate = true
		}
	}
	assert.True(t, sawDuplicate, "expected at least one rank to observe the duplicate capability")
}

func TestFetchRemote_UnknownCapability(t *testing.T) {
	r := New(nil, registry.New(), nil)
	_, err := r.FetchRemote("nope")
	require.Error(t, err)
}
