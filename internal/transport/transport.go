package transport

import (
	"errors"
)

// ErrAborted is returned by every blocking Transport method once Abort has
// been called anywhere in the group, mirroring MPI_Abort's group-wide
// effect.
var ErrAborted = errors.New("GROUP_ABORTED")

// Transport is the messaging surface the RAB and the orchestrator's
// bootstrap need: point-to-point send/receive with tags, a non-blocking
// probe, and two collectives (gather, barrier), plus a group-wide abort.
// Implemented by Hub (rank 0) and Peer (every other rank).
type Transport interface {
	// Rank is this process's position in the group; 0 is the supervisor.
	Rank() int
	// Size is the number of processes in the group.
	Size() int

	// Send delivers payload to dest, tagged tag. Non-blocking: returns once
	// the frame is handed to the connection's write side.
	Send(dest int, tag Tag, payload []byte) error

	// Recv blocks until a frame from source tagged tag arrives, then
	// returns its payload.
	Recv(source int, tag Tag) ([]byte, error)

	// Probe reports whether a frame from source tagged tag is already
	// waiting, without consuming it.
	Probe(source int, tag Tag) bool

	// RecvAny blocks until any frame from source arrives, regardless of
	// tag, and returns its payload and the tag the sender used. The RAB's
	// listener uses this to accept a request before it knows what
	// correlation tag the requester picked.
	RecvAny(source int) (payload []byte, tag Tag, err error)

	// ProbeAny reports whether any frame from source is waiting,
	// regardless of tag.
	ProbeAny(source int) bool

	// Gather is a collective: every rank calls it with its own payload;
	// rank 0 gets back a slice indexed by rank (its own entry included),
	// every other rank gets back nil.
	Gather(payload []byte) ([][]byte, error)

	// Barrier blocks every caller in the group until all of them have
	// called it.
	Barrier() error

	// Abort tears down the group: every blocked Send/Recv/Gather/Barrier
	// across every rank returns ErrAborted.
	Abort(reason string) error

	// Close releases this rank's connection(s).
	Close() error
}

var (
	_ Transport = (*Hub)(nil)
	_ Transport = (*Peer)(nil)
)
