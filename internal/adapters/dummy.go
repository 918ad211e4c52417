package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/jgcri/cassandra-go/internal/component"
	"github.com/jgcri/cassandra-go/internal/registry"
)

// Dummy is a component that does nothing: an optional "sleep" parameter
// (seconds) delays its completion, an optional "provides" list declares
// capabilities it publishes an empty value for, and an optional "fail"
// boolean forces it into FAILURE. It stands in for a component with no
// declared capabilities when provides is unset, and for cascade-failure
// tests when fail is set.
type dummy struct {
	reg *registry.Registry
}

// NewDummy is a component.Constructor for the "Dummy" type tag.
func NewDummy(name string, reg *registry.Registry) (*component.Instance, error) {
	b := component.New(name, reg)
	return &component.Instance{Base: b, Runner: &dummy{reg: reg}}, nil
}

func (d *dummy) Finalize(b *component.Base, params component.Params) error {
	for _, cap := range params["provides"].Strings() {
		if cap == "" {
			continue
		}
		if err := b.DeclareCapability(cap); err != nil {
			return fmt.Errorf("%w: %v", component.ErrConfigInvalid, err)
		}
	}
	return nil
}

func (d *dummy) Run(ctx context.Context, b *component.Base) error {
	if sleep := b.Params()["sleep"].Float64(0); sleep > 0 {
		time.Sleep(time.Duration(sleep * float64(time.Second)))
	}
	if fail, ok := b.Params()["fail"]; ok && fail.Bool() {
		return fmt.Errorf("dummy component %s: forced failure", b.Name())
	}
	for _, cap := range b.Capabilities() {
		if err := b.Publish(cap, ""); err != nil {
			return err
		}
	}
	return nil
}
