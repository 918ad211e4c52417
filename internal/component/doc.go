// Package component implements the component runtime: per-component state
// (parameters, status, published results) and the blocking rendezvous that
// lets a consumer wait for a producer to leave PENDING.
//
// Base is the monitor every concrete component embeds: a mutex-guarded state
// struct reached through accessor methods, built around a one-shot broadcast
// (sync.Cond) so every concurrent waiter on fetch_own wakes together, not
// just a single subscriber.
package component
