package orchestrator

// ConfigError reports a fatal bootstrap failure: an unknown component type,
// a parameter that failed finalize validation, or a duplicate capability
// claim. It is always fatal at bootstrap — no component runs.
type ConfigError struct {
	Section string
	Err     error
}

func (e *ConfigError) Error() string {
	return "section " + e.Section + ": " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }
