// Package rab implements the Remote Access Broker: the per-process proxy
// that exchanges capability tables with peer processes at bootstrap,
// forwards a local consumer's request for a remotely hosted capability, and
// services inbound requests from peers for capabilities this process owns.
//
// It is built on internal/transport's collective/point-to-point primitives
// and internal/fetchrouter's dispatcher: a listener goroutine drains
// inbound REQUEST frames into a bounded worker pool (so a blocking
// fetch_own never stalls the listener itself), each worker sending its own
// RESPONSE when its fetch completes, and the listener sleeps
// DefaultLoopInterval between passes.
package rab
