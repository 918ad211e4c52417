package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgcri/cassandra-go/internal/component"
	"github.com/jgcri/cassandra-go/internal/registry"
)

func TestProducer_PublishesConfiguredValue(t *testing.T) {
	reg := registry.New()
	inst, err := NewProducer("p", reg)
	require.NoError(t, err)

	inst.SetParams(component.Params{
		"capability": component.NewScalar("p.out"),
		"value":      component.NewScalar("42"),
	})
	require.NoError(t, inst.Runner.(component.Finalizer).Finalize(inst.Base, inst.Params()))
	reg.Freeze()

	inst.Start(context.Background(), inst.Runner)
	status, err := inst.Wait()
	require.NoError(t, err)
	assert.Equal(t, component.Success, status)

	v, err := inst.FetchOwn("p.out")
	require.NoError(t, err)
	assert.Equal(t, "42", v)
}

func TestCollector_FetchesEveryInput(t *testing.T) {
	reg := registry.New()

	a, err := NewProducer("a", reg)
	require.NoError(t, err)
	a.SetParams(component.Params{"capability": component.NewScalar("a.out"), "value": component.NewScalar("1")})
	require.NoError(t, a.Runner.(component.Finalizer).Finalize(a.Base, a.Params()))

	b, err := NewProducer("b", reg)
	require.NoError(t, err)
	b.SetParams(component.Params{"capability": component.NewScalar("b.out"), "value": component.NewScalar("2")})
	require.NoError(t, b.Runner.(component.Finalizer).Finalize(b.Base, b.Params()))

	c, err := NewCollector("c", reg)
	require.NoError(t, err)
	c.SetParams(component.Params{
		"capability": component.NewScalar("c.out"),
		"inputs":     component.NewList([]string{"a.out", "b.out"}),
	})
	require.NoError(t, c.Runner.(component.Finalizer).Finalize(c.Base, c.Params()))

	reg.Freeze()

	ctx := context.Background()
	a.Start(ctx, a.Runner)
	b.Start(ctx, b.Runner)
	c.Start(ctx, c.Runner)

	for _, inst := range []*component.Instance{a, b, c} {
		status, err := inst.Wait()
		require.NoError(t, err)
		assert.Equal(t, component.Success, status)
	}

	v, err := c.FetchOwn("c.out")
	require.NoError(t, err)
	collected := v.(map[string]interface{})
	assert.Equal(t, "1", collected["a.out"])
	assert.Equal(t, "2", collected["b.out"])
}

func TestDummy_NoDeclaredCapabilities(t *testing.T) {
	reg := registry.New()
	inst, err := NewDummy("d", reg)
	require.NoError(t, err)
	inst.SetParams(component.Params{})
	reg.Freeze()

	inst.Start(context.Background(), inst.Runner)
	status, err := inst.Wait()
	require.NoError(t, err)
	assert.Equal(t, component.Success, status)
	assert.Empty(t, inst.Capabilities())
}

func TestDummy_ForcedFailure(t *testing.T) {
	reg := registry.New()
	inst, err := NewDummy("d", reg)
	require.NoError(t, err)
	inst.SetParams(component.Params{"fail": component.NewScalar("true")})
	reg.Freeze()

	inst.Start(context.Background(), inst.Runner)
	status, _ := inst.Wait()
	assert.Equal(t, component.Failure, status)
}
