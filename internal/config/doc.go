// Package config parses the INI-style control file into an ordered list of
// component sections, plus the required [Global] section, and implements
// the weighted round-robin assignment algorithm the multi-process
// orchestrator uses to spread sections across peers.
package config
