// Package policy holds the calibration constants of the insight layer:
// root-cause scoring scales, priority cut points, and the scenario catalog.
// They are configuration, not code, so they can be recalibrated without
// touching pipeline logic. Defaults are embedded; a YAML file can override
// them at startup.
package policy

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultPolicy []byte

// FactorScore fixes the 0-10 severity/impact/actionability scales for one
// causal factor.
type FactorScore struct {
	Severity      float64 `yaml:"severity"`
	Impact        float64 `yaml:"impact"`
	Actionability float64 `yaml:"actionability"`
}

// RootCausePolicy configures causal factor scoring and partitioning.
type RootCausePolicy struct {
	// Priority cut points on severity*impact*actionability (max 1000).
	PrimaryThreshold   float64 `yaml:"primary_threshold"`
	SecondaryThreshold float64 `yaml:"secondary_threshold"`

	// Scale mapping an absolute attribution contribution onto 0-10.
	ContributionScale float64 `yaml:"contribution_scale"`

	// Per risk-flag scoring.
	Flags map[string]FactorScore `yaml:"flags"`

	// Actionability per model feature; features absent here use the default.
	// Zero marks a feature immutable (e.g. regional risk).
	FeatureActionability map[string]float64 `yaml:"feature_actionability"`
	DefaultActionability float64            `yaml:"default_actionability"`
}

// Delta is one perturbation applied to the baseline inputs.
type Delta struct {
	Target string  `yaml:"target"` // profile or loan-request field name
	Op     string  `yaml:"op"`     // "scale" or "add"
	Value  float64 `yaml:"value"`
}

// ScenarioSpec is one named entry of the scenario catalog. A spec with
// Components is a combination scenario: its synergy is computed against
// those component scenarios' individual results.
type ScenarioSpec struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Deltas      []Delta  `yaml:"deltas"`
	Components  []string `yaml:"components,omitempty"`
	Effort      string   `yaml:"effort"`
	Timeline    string   `yaml:"timeline"`
}

// Policy is the full insight-layer configuration.
type Policy struct {
	RootCause RootCausePolicy `yaml:"root_cause"`
	Scenarios []ScenarioSpec  `yaml:"scenarios"`
}

func parse(raw []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to parse policy: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Policy) validate() error {
	if p.RootCause.PrimaryThreshold <= p.RootCause.SecondaryThreshold {
		return fmt.Errorf("primary_threshold must exceed secondary_threshold")
	}
	if p.RootCause.ContributionScale <= 0 {
		return fmt.Errorf("contribution_scale must be positive")
	}
	names := map[string]bool{}
	for _, s := range p.Scenarios {
		if s.Name == "" {
			return fmt.Errorf("scenario without a name")
		}
		if names[s.Name] {
			return fmt.Errorf("duplicate scenario name %q", s.Name)
		}
		names[s.Name] = true
		if len(s.Deltas) == 0 {
			return fmt.Errorf("scenario %q has no deltas", s.Name)
		}
	}
	for _, s := range p.Scenarios {
		for _, c := range s.Components {
			if !names[c] {
				return fmt.Errorf("scenario %q references unknown component %q", s.Name, c)
			}
		}
	}
	return nil
}

// Scenario returns the named catalog entry.
func (p *Policy) Scenario(name string) (ScenarioSpec, bool) {
	for _, s := range p.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return ScenarioSpec{}, false
}

// Default returns the embedded policy.
func Default() *Policy {
	p, err := parse(defaultPolicy)
	if err != nil {
		// The embedded policy is part of the build; failing to parse it is a
		// programming error.
		panic(err)
	}
	return p
}

// Load reads the policy from the given YAML file, or the embedded defaults
// when path is empty.
func Load(path string) (*Policy, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return parse(raw)
}
