// Package fetchrouter implements the stateless capability dispatcher: look
// the capability up in the registry, then either delegate to the owning
// component's FetchOwn or, if the owner is the Remote Access Broker, to its
// FetchRemote.
//
// The router holds no state of its own — it is a single function, not a
// struct — so there is nothing to construct or tear down between fetches.
package fetchrouter
