package engine

import (
	"fmt"
	"os"
	"time"

	"github.com/sasplan/planner/internal/search"
	"gopkg.in/yaml.v3"
)

// Profile is one named, reusable engine configuration loaded from a YAML
// profile file, so a description string never has to be retyped on every
// invocation.
type Profile struct {
	Description  string `yaml:"description"`
	CostType     string `yaml:"cost_type"` // "normal", "one", "plus_one"
	ReopenClosed bool   `yaml:"reopen_closed"`
	Bound        int    `yaml:"bound"`
	MaxTimeSec   int    `yaml:"max_time_seconds"`
}

// ProfileFile is the top-level document a profile YAML file holds: a map
// from profile name to Profile.
type ProfileFile map[string]Profile

// LoadProfiles parses a YAML file of named profiles.
func LoadProfiles(path string) (ProfileFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("engine: cannot read profile file %s: %w", path, err)
	}
	var pf ProfileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("engine: cannot parse profile file %s: %w", path, err)
	}
	return pf, nil
}

// Options converts the profile's textual fields into an Options value
// Solve accepts directly.
func (p Profile) Options() (Options, error) {
	var ct search.CostType
	switch p.CostType {
	case "", "normal":
		ct = search.CostNormal
	case "one":
		ct = search.CostOne
	case "plus_one":
		ct = search.CostPlusOne
	default:
		return Options{}, fmt.Errorf("engine: unknown cost_type %q", p.CostType)
	}
	return Options{
		CostType:     ct,
		ReopenClosed: p.ReopenClosed,
		Bound:        p.Bound,
		MaxTime:      time.Duration(p.MaxTimeSec) * time.Second,
	}, nil
}

// Lookup finds name in pf, returning an error that names every available
// profile when it isn't present.
func (pf ProfileFile) Lookup(name string) (Profile, error) {
	p, ok := pf[name]
	if !ok {
		names := make([]string, 0, len(pf))
		for n := range pf {
			names = append(names, n)
		}
		return Profile{}, fmt.Errorf("engine: no profile named %q (have: %v)", name, names)
	}
	return p, nil
}
