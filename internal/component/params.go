package component

import "strconv"

// ParamValue holds one configuration value. It is always stored as a slice
// internally — a scalar is a one-element slice — so a value can be either a
// string or a list-of-strings without needing a tagged union.
type ParamValue []string

// NewScalar wraps a single string value.
func NewScalar(v string) ParamValue { return ParamValue{v} }

// NewList wraps a list-of-strings value.
func NewList(v []string) ParamValue { return ParamValue(v) }

// String returns the first element, or "" if the value is empty.
func (p ParamValue) String() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Strings returns the full list.
func (p ParamValue) Strings() []string {
	return []string(p)
}

// Bool parses the value the way the `clobber` key is defined:
// {false, no, n, 0} (case-insensitive) map to false, everything else to true.
func (p ParamValue) Bool() bool {
	switch normalizeBool(p.String()) {
	case "false", "no", "n", "0":
		return false
	default:
		return true
	}
}

// Float64 parses the value as a float, defaulting to def on a parse error —
// used for mp.weight, which defaults to 1.0 when unset.
func (p ParamValue) Float64(def float64) float64 {
	if len(p) == 0 {
		return def
	}
	f, err := strconv.ParseFloat(p.String(), 64)
	if err != nil {
		return def
	}
	return f
}

func normalizeBool(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

// Params is the parsed parameter map for one component instance — the
// section's keys, frozen after Finalize.
type Params map[string]ParamValue
