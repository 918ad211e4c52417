package component

import "github.com/jgcri/cassandra-go/internal/registry"

// GeneralCapability is the well-known name reserved for the process-global
// parameters pseudo-component.
const GeneralCapability = "general"

// NewGeneral builds the `general` pseudo-component: a zero-work producer
// that starts in SUCCESS so any component may fetch it without blocking,
// carrying the [Global] section's parameters as its single published value.
// This replaces a process-wide global-parameters singleton with an ordinary
// registry entry, so fetching global config goes through the same fetch
// path as any other capability.
func NewGeneral(reg *registry.Registry, globalParams Params) (*Base, error) {
	b := New("Global", reg)
	if err := b.DeclareCapability(GeneralCapability); err != nil {
		return nil, err
	}
	b.SetParams(globalParams)

	// No goroutine, no Start(): the body is a no-op, so we skip straight to
	// the terminal state instead of paying a rendezvous round-trip for work
	// that never happens.
	b.status = Success
	b.results[GeneralCapability] = globalParams
	b.done = true
	return b, nil
}
