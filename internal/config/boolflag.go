package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// BoolFlag is a tri-state boolean: unset, true or false. It accepts JSON/YAML
// booleans and case-insensitive "true"/"false" strings. Any other non-empty
// value is kept in Invalid and reads as false.
type BoolFlag struct {
	Set     bool
	Value   bool
	Invalid string
}

// Enabled reports whether the flag was explicitly set to true.
func (f BoolFlag) Enabled() bool {
	return f.Set && f.Value
}

// ParseBoolFlag parses raw into a BoolFlag. An empty string yields an unset flag.
func ParseBoolFlag(raw string) BoolFlag {
	trimmed := strings.TrimSpace(raw)
	switch strings.ToLower(trimmed) {
	case "":
		return BoolFlag{}
	case "true":
		return BoolFlag{Set: true, Value: true}
	case "false":
		return BoolFlag{Set: true, Value: false}
	default:
		return BoolFlag{Set: true, Value: false, Invalid: trimmed}
	}
}

// String renders the flag as "true", "false", "invalid(<raw>)" or "".
func (f BoolFlag) String() string {
	switch {
	case !f.Set:
		return ""
	case f.Invalid != "":
		return fmt.Sprintf("invalid(%s)", f.Invalid)
	default:
		return fmt.Sprintf("%t", f.Value)
	}
}

// UnmarshalJSON accepts true, false, "true", "false" (any case) and null.
func (f *BoolFlag) UnmarshalJSON(data []byte) error {
	if strings.TrimSpace(string(data)) == "null" {
		*f = BoolFlag{}
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = BoolFlag{Set: true, Value: b}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = ParseBoolFlag(s)
		return nil
	}
	*f = BoolFlag{Set: true, Invalid: string(data)}
	return nil
}

// UnmarshalYAML parses the scalar node as a BoolFlag.
func (f *BoolFlag) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a boolean or string", node.Line)
	}
	*f = ParseBoolFlag(node.Value)
	return nil
}

// MarshalYAML writes the flag back as a plain boolean, or nothing when unset.
func (f BoolFlag) MarshalYAML() (interface{}, error) {
	if !f.Set {
		return nil, nil
	}
	return f.Enabled(), nil
}
