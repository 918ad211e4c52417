// Package logging provides the structured logging used across the framework's
// process-local packages: registry, component runtime, fetch router, RAB and
// orchestrator.
//
// Every entry is tagged with a subsystem name and routed through a single
// process-wide slog.Logger configured once at startup via InitForCLI. There is
// no TUI or remote sink; this framework's command-line wrapper is the only
// consumer of log output (logging sinks are explicitly out of the core's
// scope per the design).
package logging
