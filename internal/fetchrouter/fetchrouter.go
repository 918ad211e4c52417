package fetchrouter

import (
	"errors"
	"fmt"

	"github.com/jgcri/cassandra-go/internal/registry"
)

// ErrCapabilityNotFound is raised when cap has no entry in the registry.
var ErrCapabilityNotFound = errors.New("CAPABILITY_NOT_FOUND")

// ErrSelfFetch is raised when a component fetches one of its own
// capabilities. A component can never see its own publish resolve until
// after it returns, so without this guard the fetch would block forever;
// failing fast instead turns a deadlock into a diagnosable error (see
// DESIGN.md).
var ErrSelfFetch = errors.New("SELF_FETCH")

// LocalFetcher is satisfied by a local component runtime (internal/component.Base).
// Defined here rather than imported so this package stays a leaf the RAB can
// depend on without a cycle.
type LocalFetcher interface {
	FetchOwn(capability string) (interface{}, error)
}

// RemoteFetcher is satisfied by the Remote Access Broker standing in for a
// capability owned by a peer process.
type RemoteFetcher interface {
	FetchRemote(capability string) (interface{}, error)
}

// Fetch resolves capability against reg on behalf of requester and returns
// its value, blocking as needed. requester identifies the calling component
// (its registry.Handle) so self-fetches can be detected.
func Fetch(reg *registry.Registry, requester registry.Handle, capability string) (interface{}, error) {
	owner, ok := reg.Lookup(capability)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCapabilityNotFound, capability)
	}

	if requester != nil && owner == requester {
		return nil, fmt.Errorf("%w: %s fetched its own capability %s", ErrSelfFetch, fmt.Sprint(requester), capability)
	}

	switch h := owner.(type) {
	case RemoteFetcher:
		return h.FetchRemote(capability)
	case LocalFetcher:
		return h.FetchOwn(capability)
	default:
		return nil, fmt.Errorf("registry handle for %s implements neither LocalFetcher nor RemoteFetcher", capability)
	}
}
