package migrate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FieldAssignment is one instruction to set a named work item field.
// AfterCreation marks assignments that can only be applied once the work
// item exists, e.g. fields that reference the item's own id.
type FieldAssignment struct {
	Field         string
	Value         any
	AfterCreation bool
}

// FieldMapper translates a YouTrack custom-field map into an ordered list of
// work item field assignments. Implementations must be deterministic and
// side-effect free.
type FieldMapper interface {
	Map(customFields map[string]any) []FieldAssignment
}

// MapperFunc adapts a plain function to the FieldMapper interface.
type MapperFunc func(customFields map[string]any) []FieldAssignment

// Map calls f.
func (f MapperFunc) Map(customFields map[string]any) []FieldAssignment {
	return f(customFields)
}

// NopMapper maps no fields. Used when no mapping rules are configured.
var NopMapper = MapperFunc(func(map[string]any) []FieldAssignment { return nil })

// MappingRule maps one YouTrack custom field to one work item field.
// YouTrack field values are usually objects; Attribute selects which of their
// keys to copy (e.g. "name" for enums, "login" for users, "minutes" for
// periods). An empty Attribute copies the value as-is.
type MappingRule struct {
	Source        string `yaml:"source"`
	Target        string `yaml:"target"`
	Attribute     string `yaml:"attribute,omitempty"`
	AfterCreation bool   `yaml:"after_creation,omitempty"`
}

// RuleMapper is a FieldMapper driven by a list of mapping rules, evaluated
// in order. Rules whose source field is absent or empty are skipped.
type RuleMapper struct {
	rules []MappingRule
}

// NewRuleMapper creates a RuleMapper from the given rules.
func NewRuleMapper(rules []MappingRule) *RuleMapper {
	return &RuleMapper{rules: rules}
}

// LoadRules reads mapping rules from a YAML file.
func LoadRules(path string) ([]MappingRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping file: %w", err)
	}
	var rules []MappingRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing mapping file: %w", err)
	}
	return rules, nil
}

// Map applies the rules to the custom-field map, preserving rule order.
func (m *RuleMapper) Map(customFields map[string]any) []FieldAssignment {
	var out []FieldAssignment
	for _, rule := range m.rules {
		value, ok := customFields[rule.Source]
		if !ok || value == nil {
			continue
		}
		if rule.Attribute != "" {
			obj, ok := value.(map[string]any)
			if !ok {
				continue
			}
			value, ok = obj[rule.Attribute]
			if !ok || value == nil {
				continue
			}
		}
		out = append(out, FieldAssignment{
			Field:         rule.Target,
			Value:         value,
			AfterCreation: rule.AfterCreation,
		})
	}
	return out
}

// splitAssignments partitions assignments by AfterCreation. The split is
// stable: relative order within each partition matches the mapper's output.
func splitAssignments(assignments []FieldAssignment) (before, after []FieldAssignment) {
	for _, a := range assignments {
		if a.AfterCreation {
			after = append(after, a)
		} else {
			before = append(before, a)
		}
	}
	return before, after
}
