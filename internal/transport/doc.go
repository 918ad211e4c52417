// Package transport implements the cross-process messaging primitives a
// multi-process run needs: collective gather, collective barrier, a
// non-blocking probe, blocking tagged send/receive, and group abort.
//
// An MPI-style deployment gives every rank a direct channel to every other
// rank. This module reaches that same surface over a star topology of
// github.com/gorilla/websocket connections instead: the supervisor (rank 0)
// accepts one connection per worker and relays any frame whose destination
// isn't itself, so from a worker's point of view sending to any other rank
// still looks like a direct send. Workers never dial each other.
package transport
