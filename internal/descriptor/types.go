package descriptor

import (
	"fmt"

	"go.yaml.in/yaml/v3"

	"github.com/mifan-labs/mifan/internal/metadata"
)

// Descriptor is the static declaration of a template.
type Descriptor struct {
	Name              string              `yaml:"name,omitempty" json:"name,omitempty"`
	Description       string              `yaml:"description,omitempty" json:"description,omitempty"`
	Requires          string              `yaml:"requires,omitempty" json:"requires,omitempty"`
	Prompts           OrderedMap[*Prompt] `yaml:"prompts,omitempty" json:"prompts,omitempty"`
	Computed          OrderedMap[Expr]    `yaml:"computed,omitempty" json:"computed,omitempty"`
	Filters           OrderedMap[Expr]    `yaml:"filters,omitempty" json:"filters,omitempty"`
	SkipInterpolation StringList          `yaml:"skipInterpolation,omitempty" json:"skipInterpolation,omitempty"`
	Mock              map[string]any      `yaml:"mock,omitempty" json:"mock,omitempty"`
	Hooks             Hooks               `yaml:"hooks,omitempty" json:"hooks,omitempty"`
	CompleteMessage   string              `yaml:"completeMessage,omitempty" json:"completeMessage,omitempty"`

	// Path is the file the descriptor was loaded from, empty when the
	// template has none.
	Path string `yaml:"-" json:"-"`
}

// Prompt declares one question.
type Prompt struct {
	Type     string   `yaml:"type,omitempty" json:"type,omitempty"`
	Message  string   `yaml:"message,omitempty" json:"message,omitempty"`
	Default  any      `yaml:"default,omitempty" json:"default,omitempty"`
	When     Expr     `yaml:"when,omitempty" json:"when,omitempty"`
	Required bool     `yaml:"required,omitempty" json:"required,omitempty"`
	Validate string   `yaml:"validate,omitempty" json:"validate,omitempty"`
	Filter   string   `yaml:"filter,omitempty" json:"filter,omitempty"`
	Choices  []Choice `yaml:"choices,omitempty" json:"choices,omitempty"`

	// HasDefault is set when the descriptor declares a default, even a
	// null one.
	HasDefault bool `yaml:"-" json:"-"`

	// DefaultFunc, when set, computes the default from the answers so far.
	// It takes precedence over Default.
	DefaultFunc func(*metadata.Context) (any, error) `yaml:"-" json:"-"`
}

// UnmarshalYAML records whether a default key was present.
func (p *Prompt) UnmarshalYAML(node *yaml.Node) error {
	type plain Prompt
	if err := node.Decode((*plain)(p)); err != nil {
		return err
	}
	if node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == "default" {
				p.HasDefault = true
			}
		}
	}
	return nil
}

// Declared reports whether the prompt has any kind of default.
func (p *Prompt) Declared() bool {
	return p.HasDefault || p.DefaultFunc != nil
}

// Choice is one option of a list, rawlist or checkbox prompt.
type Choice struct {
	Name  string `yaml:"name" json:"name"`
	Value any    `yaml:"value,omitempty" json:"value,omitempty"`
}

// UnmarshalYAML accepts a bare scalar or a {name, value} mapping.
func (c *Choice) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v any
		if err := node.Decode(&v); err != nil {
			return err
		}
		c.Name = node.Value
		c.Value = v
		return nil
	}
	type plain Choice
	if err := node.Decode((*plain)(c)); err != nil {
		return err
	}
	if c.Value == nil {
		c.Value = c.Name
	}
	return nil
}

// Hooks are declarative mutations applied around the stage pipeline.
type Hooks struct {
	Before *Hook `yaml:"before,omitempty" json:"before,omitempty"`
	After  *Hook `yaml:"after,omitempty" json:"after,omitempty"`
}

// Hook mutates the metadata and file set outside the stage list. Set runs
// first, then Rename, then Remove.
type Hook struct {
	Set    OrderedMap[any]    `yaml:"set,omitempty" json:"set,omitempty"`
	Rename OrderedMap[string] `yaml:"rename,omitempty" json:"rename,omitempty"`
	Remove StringList         `yaml:"remove,omitempty" json:"remove,omitempty"`
}

// Empty reports whether the hook does nothing.
func (h *Hook) Empty() bool {
	return h == nil || (h.Set.Len() == 0 && h.Rename.Len() == 0 && len(h.Remove) == 0)
}

// Expr is an expression source. Any scalar decodes into it, so a filter
// written as `false` reads the same as `"false"`.
type Expr string

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Expr) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expression must be a scalar", node.Line)
	}
	*e = Expr(node.Value)
	return nil
}

// StringList accepts either a single string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*s = nil
			return nil
		}
		*s = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	}
	return fmt.Errorf("line %d: expected a string or a list of strings", node.Line)
}
