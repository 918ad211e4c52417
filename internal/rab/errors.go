package rab

import "errors"

// ErrTransportFailure wraps any error surfaced by the underlying
// transport.Transport while servicing a remote fetch.
var ErrTransportFailure = errors.New("TRANSPORT_FAILURE")

// ErrDuplicateRemoteCapability is returned by Bootstrap when two peers
// advertise the same capability name during the gather-and-broadcast
// exchange: capability names must be unique across the whole run, not just
// within a process.
var ErrDuplicateRemoteCapability = errors.New("DUPLICATE_CAPABILITY_REMOTE")
