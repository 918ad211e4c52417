// Package adapters provides a handful of illustrative component types —
// Dummy, Producer, Collector, and Chain — built on internal/component and
// internal/fetchrouter. They are sample black-box adapters for tests and
// the spec's end-to-end scenarios (diamond dependency, propagated failure,
// timing, chain blocking), not real scientific models: a genuine deployment
// registers its own model-specific constructors with the same
// component.Factory these use.
package adapters
