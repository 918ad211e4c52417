// Package registry implements the capability registry: the process-local
// directory mapping a capability name to the handle (component, or RAB
// stand-in) that owns it.
//
// The registry is mutable only during the single-threaded bootstrap phase.
// Freeze seals it; after that, Lookup takes no lock, matching invariant I5
// (the registry is frozen before any component runs).
package registry
