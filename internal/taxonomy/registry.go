package taxonomy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Registry maps regulator marker substrings (matched case-insensitively
// against a taxonomy namespace) to fixed human-readable taxonomy family
// names. It covers filings whose schema location gives no usable entry-point
// filename.
type Registry struct {
	Markers []Marker `yaml:"markers"`
}

// Marker is one regulator entry.
type Marker struct {
	Match string `yaml:"match"`
	Name  string `yaml:"name"`
}

// DefaultRegistry returns the built-in regulator entries.
func DefaultRegistry() *Registry {
	return &Registry{
		Markers: []Marker{
			{Match: "superfinanciera", Name: "SFC Colombia IFRS"},
		},
	}
}

// LoadRegistry reads a registry from a YAML file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse taxonomy registry: %w", err)
	}
	return &reg, nil
}

// Lookup returns the display name for the first marker contained in the
// namespace, or "".
func (r *Registry) Lookup(namespace string) string {
	if r == nil {
		return ""
	}
	ns := strings.ToLower(namespace)
	for _, m := range r.Markers {
		if m.Match != "" && strings.Contains(ns, strings.ToLower(m.Match)) {
			return m.Name
		}
	}
	return ""
}
