package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/jgcri/cassandra-go/internal/component"
	"github.com/jgcri/cassandra-go/internal/registry"
)

// Producer publishes a single fixed value under a capability named by its
// "capability" parameter, optionally after a "delay" (seconds) to model
// slow upstream work.
type producer struct {
	reg *registry.Registry
	cap string
}

// NewProducer is a component.Constructor for the "Producer" type tag.
func NewProducer(name string, reg *registry.Registry) (*component.Instance, error) {
	b := component.New(name, reg)
	p := &producer{reg: reg}
	return &component.Instance{Base: b, Runner: p}, nil
}

func (p *producer) Finalize(b *component.Base, params component.Params) error {
	p.cap = params["capability"].String()
	if p.cap == "" {
		return fmt.Errorf("%w: producer %s requires a capability parameter", component.ErrConfigInvalid, b.Name())
	}
	if err := b.DeclareCapability(p.cap); err != nil {
		return fmt.Errorf("%w: %v", component.ErrConfigInvalid, err)
	}
	return nil
}

func (p *producer) Run(ctx context.Context, b *component.Base) error {
	if delay := b.Params()["delay"].Float64(0); delay > 0 {
		time.Sleep(time.Duration(delay * float64(time.Second)))
	}
	return b.Publish(p.cap, b.Params()["value"].String())
}
