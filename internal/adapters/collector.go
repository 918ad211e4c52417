package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/jgcri/cassandra-go/internal/component"
	"github.com/jgcri/cassandra-go/internal/fetchrouter"
	"github.com/jgcri/cassandra-go/internal/registry"
)

// Collector fetches every capability named in its "inputs" list parameter
// and republishes them, keyed by capability name, under the capability
// named by "capability". It is a natural join point for fan-in dataflows,
// where one downstream component depends on several upstream producers.
type collector struct {
	reg    *registry.Registry
	cap    string
	inputs []string
}

// NewCollector is a component.Constructor for the "Collector" type tag.
func NewCollector(name string, reg *registry.Registry) (*component.Instance, error) {
	b := component.New(name, reg)
	c := &collector{reg: reg}
	return &component.Instance{Base: b, Runner: c}, nil
}

func (c *collector) Finalize(b *component.Base, params component.Params) error {
	c.cap = params["capability"].String()
	if c.cap == "" {
		return fmt.Errorf("%w: collector %s requires a capability parameter", component.ErrConfigInvalid, b.Name())
	}
	c.inputs = params["inputs"].Strings()
	if err := b.DeclareCapability(c.cap); err != nil {
		return fmt.Errorf("%w: %v", component.ErrConfigInvalid, err)
	}
	return nil
}

func (c *collector) Run(ctx context.Context, b *component.Base) error {
	collected := make(map[string]interface{}, len(c.inputs))
	for _, input := range c.inputs {
		v, err := fetchrouter.Fetch(c.reg, b, input)
		if err != nil {
			return err
		}
		collected[input] = v
	}
	if delay := b.Params()["delay"].Float64(0); delay > 0 {
		time.Sleep(time.Duration(delay * float64(time.Second)))
	}
	return b.Publish(c.cap, collected)
}
