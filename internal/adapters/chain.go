package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/jgcri/cassandra-go/internal/component"
	"github.com/jgcri/cassandra-go/internal/fetchrouter"
	"github.com/jgcri/cassandra-go/internal/registry"
)

// Chain fetches a single upstream capability named by "input", waits a
// fixed "delay" (seconds, applied after the fetch resolves, modeling
// terminal per-link work) and republishes the same value under
// "capability". Linking several Chain instances end to end models a
// sequential fetch chain where total wall time is the sum of every link's
// delay.
type chain struct {
	reg   *registry.Registry
	cap   string
	input string
}

// NewChain is a component.Constructor for the "Chain" type tag.
func NewChain(name string, reg *registry.Registry) (*component.Instance, error) {
	b := component.New(name, reg)
	c := &chain{reg: reg}
	return &component.Instance{Base: b, Runner: c}, nil
}

func (c *chain) Finalize(b *component.Base, params component.Params) error {
	c.cap = params["capability"].String()
	if c.cap == "" {
		return fmt.Errorf("%w: chain %s requires a capability parameter", component.ErrConfigInvalid, b.Name())
	}
	c.input = params["input"].String()
	if err := b.DeclareCapability(c.cap); err != nil {
		return fmt.Errorf("%w: %v", component.ErrConfigInvalid, err)
	}
	return nil
}

func (c *chain) Run(ctx context.Context, b *component.Base) error {
	var value interface{}
	if c.input != "" {
		v, err := fetchrouter.Fetch(c.reg, b, c.input)
		if err != nil {
			return err
		}
		value = v
	} else {
		value = b.Params()["value"].String()
	}

	if delay := b.Params()["delay"].Float64(0); delay > 0 {
		time.Sleep(time.Duration(delay * float64(time.Second)))
	}
	return b.Publish(c.cap, value)
}
