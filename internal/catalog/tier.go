package catalog

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tier is a difficulty tier. Tiers are ordered: Easy < Medium < Hard.
type Tier int

const (
	Easy Tier = iota
	Medium
	Hard
)

// Tiers lists every tier in ascending order.
var Tiers = []Tier{Easy, Medium, Hard}

var tierNames = [...]string{
	Easy:   "easy",
	Medium: "medium",
	Hard:   "hard",
}

// ParseTier converts a tier name (case-insensitive) into a Tier.
func ParseTier(s string) (Tier, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range tierNames {
		if n == name {
			return Tier(i), nil
		}
	}
	return Easy, fmt.Errorf("catalog: unknown difficulty %q", s)
}

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool {
	return t >= Easy && t <= Hard
}

func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

// StepDown returns the next lower tier. Easy stays Easy.
func (t Tier) StepDown() Tier {
	if t <= Easy {
		return Easy
	}
	return t - 1
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("catalog: invalid tier %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalYAML accepts tier names as YAML scalars.
func (t *Tier) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("catalog: difficulty must be a scalar, got kind %d", value.Kind)
	}
	return t.UnmarshalText([]byte(value.Value))
}
