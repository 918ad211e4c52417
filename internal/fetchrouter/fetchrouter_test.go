package fetchrouter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgcri/cassandra-go/internal/registry"
)

type fakeLocal struct {
	value interface{}
	err   error
}

func (f *fakeLocal) FetchOwn(capability string) (interface{}, error) {
	return f.value, f.err
}

type fakeRemote struct {
	value interface{}
	err   error
}

func (f *fakeRemote) FetchRemote(capability string) (interface{}, error) {
	return f.value, f.err
}

func TestFetch_NotFound(t *testing.T) {
	reg := registry.New()
	reg.Freeze()

	_, err := Fetch(reg, nil, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCapabilityNotFound))
}

func TestFetch_DelegatesToLocal(t *testing.T) {
	reg := registry.New()
	owner := &fakeLocal{value: 7}
	require.NoError(t, reg.Register("x", owner))
	reg.Freeze()

	v, err := Fetch(reg, "someone-else", "x")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestFetch_DelegatesToRemote(t *testing.T) {
	reg := registry.New()
	owner := &fakeRemote{value: "remote-value"}
	require.NoError(t, reg.Register("y", owner))
	reg.Freeze()

	v, err := Fetch(reg, "someone-else", "y")
	require.NoError(t, err)
	assert.Equal(t, "remote-value", v)
}

func TestFetch_SelfFetch(t *testing.T) {
	reg := registry.New()
	owner := &fakeLocal{value: 1}
	require.NoError(t, reg.Register("x", owner))
	reg.Freeze()

	_, err := Fetch(reg, owner, "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSelfFetch))
}

func TestFetch_PropagatesProducerError(t *testing.T) {
	reg := registry.New()
	owner := &fakeLocal{err: errors.New("producer failed")}
	require.NoError(t, reg.Register("x", owner))
	reg.Freeze()

	_, err := Fetch(reg, nil, "x")
	require.Error(t, err)
	assert.Equal(t, "producer failed", err.Error())
}
