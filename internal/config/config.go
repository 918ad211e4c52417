package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/jgcri/cassandra-go/internal/component"
)

// ErrMissingGlobal is returned by Load/fromFile when the control file has
// no [Global] section — always a fatal configuration error.
var ErrMissingGlobal = errors.New("CONFIG_MISSING_GLOBAL")

const globalSectionName = "Global"

// Section is one instantiable component definition parsed from the control
// file: its fully disambiguated name (the section header, suffix included),
// the type tag used to look it up in a component.Factory, and its
// finalized parameter map. Weight is the mp.weight reserved key, defaulting
// to 1.0.
type Section struct {
	Name   string
	Type   string
	Params component.Params
	Weight float64
}

// Config is a fully parsed control file: the required Global section plus
// every other section, in file order.
type Config struct {
	Global   Section
	Sections []Section
}

// Load reads and parses the control file at path.
func Load(path string) (*Config, error) {
	f, err := ini.LoadSources(ini.LoadOptions{AllowBooleanKeys: false}, path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	return fromFile(f)
}

func fromFile(f *ini.File) (*Config, error) {
	cfg := &Config{}
	haveGlobal := false

	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}
		params := sectionParams(sec)

		if sec.Name() == globalSectionName {
			cfg.Global = Section{Name: globalSectionName, Type: globalSectionName, Params: params, Weight: 1.0}
			haveGlobal = true
			continue
		}

		typeTag := sec.Name()
		if i := strings.Index(typeTag, "."); i >= 0 {
			typeTag = typeTag[:i]
		}
		cfg.Sections = append(cfg.Sections, Section{
			Name:   sec.Name(),
			Type:   typeTag,
			Params: params,
			Weight: params["mp.weight"].Float64(1.0),
		})
	}

	if !haveGlobal {
		return nil, fmt.Errorf("%w: control file has no [%s] section", ErrMissingGlobal, globalSectionName)
	}
	return cfg, nil
}

// sectionParams folds an ini.Section's keys into a component.Params map. A
// value containing a comma is split into a list, auto-detecting
// comma-separated values the same way a ConfigObj-style parser would;
// anything else is a scalar.
func sectionParams(sec *ini.Section) component.Params {
	params := make(component.Params, len(sec.Keys()))
	for _, key := range sec.Keys() {
		raw := key.String()
		if strings.Contains(raw, ",") {
			parts := strings.Split(raw, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			params[key.Name()] = component.NewList(parts)
		} else {
			params[key.Name()] = component.NewScalar(raw)
		}
	}
	return params
}
