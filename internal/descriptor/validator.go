package descriptor

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mifan-labs/mifan/internal/expr"
	"github.com/mifan-labs/mifan/internal/fileset"
	"github.com/mifan-labs/mifan/internal/prompt"
)

//go:embed schema/descriptor.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// AnswerFilters are the transforms a prompt may apply to its answer.
var AnswerFilters = []string{"trim", "lower", "upper", "title"}

// ValidationResult contains the outcome of a schema validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue represents a single validation error from the schema.
type ValidationIssue struct {
	Path    string // Instance location (e.g., "/prompts/name/type")
	Message string
	Keyword string
}

// ValidationError is returned when a descriptor file fails the schema.
type ValidationError struct {
	Path   string
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid descriptor %s", e.Path)
	for i, issue := range e.Issues {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		if issue.Path != "" {
			fmt.Fprintf(&b, "%s: ", issue.Path)
		}
		b.WriteString(issue.Message)
	}
	return b.String()
}

// getSchema compiles the embedded JSON schema once and returns it.
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("descriptor.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("descriptor.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// Validate checks raw descriptor bytes against the schema. name selects
// the format the same way Parse does. The error return is for parse or
// schema compilation failures; schema violations are in the result.
func Validate(data []byte, name string) (*ValidationResult, error) {
	node, err := decodeNode(data, name)
	if err != nil {
		return nil, err
	}
	var raw any
	if node != nil {
		if err := node.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parsing descriptor %s: %w", name, err)
		}
	}
	return validateValue(raw)
}

// ValidateFile reads a file and validates it against the descriptor schema.
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Validate(data, path)
}

func validateValue(raw any) (*ValidationResult, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	// Round-trip through JSON so numbers reach the validator as json.Number.
	jsonData, err := json.Marshal(normalizeYAML(raw))
	if err != nil {
		return nil, fmt.Errorf("converting to JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("preparing JSON for validation: %w", err)
	}

	err = schema.Validate(inst)
	if err == nil {
		return &ValidationResult{Valid: true}, nil
	}

	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, fmt.Errorf("unexpected validation error type: %w", err)
	}
	return &ValidationResult{
		Valid:  false,
		Issues: extractIssues(validationErr),
	}, nil
}

// Check verifies what the schema cannot see, such as expression syntax,
// validate patterns and globs. It also covers descriptors built in Go,
// which never pass through the schema.
func (d *Descriptor) Check() error {
	for _, e := range d.Prompts.Entries() {
		p := e.Value
		if p.When != "" {
			if err := expr.Check(string(p.When)); err != nil {
				return fmt.Errorf("prompt %s: when: %w", e.Key, err)
			}
		}
		if p.Validate != "" {
			if _, err := regexp.Compile(p.Validate); err != nil {
				return fmt.Errorf("prompt %s: validate: %w", e.Key, err)
			}
		}
		if p.Filter != "" && !slices.Contains(AnswerFilters, p.Filter) {
			return fmt.Errorf("prompt %s: unknown filter %q", e.Key, p.Filter)
		}
		q := prompt.Question{Type: p.Type}
		if q.Selects() && len(p.Choices) == 0 {
			return fmt.Errorf("prompt %s: %s prompt needs choices", e.Key, p.Type)
		}
	}
	for _, e := range d.Computed.Entries() {
		if err := expr.Check(string(e.Value)); err != nil {
			return fmt.Errorf("computed %s: %w", e.Key, err)
		}
	}
	for _, e := range d.Filters.Entries() {
		if !fileset.ValidPattern(e.Key) {
			return fmt.Errorf("filter %q: malformed glob", e.Key)
		}
		if err := expr.Check(string(e.Value)); err != nil {
			return fmt.Errorf("filter %q: %w", e.Key, err)
		}
	}
	for _, pattern := range d.SkipInterpolation {
		if !fileset.ValidPattern(pattern) {
			return fmt.Errorf("skipInterpolation %q: malformed glob", pattern)
		}
	}
	for _, h := range []*Hook{d.Hooks.Before, d.Hooks.After} {
		if h == nil {
			continue
		}
		for _, pattern := range h.Remove {
			if !fileset.ValidPattern(pattern) {
				return fmt.Errorf("hook remove %q: malformed glob", pattern)
			}
		}
	}
	return nil
}

// extractIssues walks the ValidationError tree and returns leaf-level issues.
func extractIssues(ve *jsonschema.ValidationError) []ValidationIssue {
	var issues []ValidationIssue
	collectValidationIssues(ve, &issues)

	if len(issues) == 0 {
		return []ValidationIssue{{
			Message: ve.Error(),
		}}
	}
	return deduplicateIssues(issues)
}

// collectValidationIssues recursively walks the error tree to find leaf errors
// with specific property information.
func collectValidationIssues(ve *jsonschema.ValidationError, issues *[]ValidationIssue) {
	if len(ve.Causes) == 0 {
		path := "/" + strings.Join(ve.InstanceLocation, "/")
		if len(ve.InstanceLocation) == 0 {
			path = ""
		}

		keyword := ""
		msg := ""
		if ve.ErrorKind != nil {
			if kwPath := ve.ErrorKind.KeywordPath(); len(kwPath) > 0 {
				keyword = kwPath[len(kwPath)-1]
			}
			msg = ve.ErrorKind.LocalizedString(printer)
		}

		// Container keywords only repeat what their causes say.
		if keyword == "oneOf" || keyword == "allOf" || keyword == "$ref" || keyword == "" {
			return
		}

		*issues = append(*issues, ValidationIssue{
			Path:    path,
			Message: msg,
			Keyword: keyword,
		})
		return
	}

	for _, cause := range ve.Causes {
		collectValidationIssues(cause, issues)
	}
}

func deduplicateIssues(issues []ValidationIssue) []ValidationIssue {
	seen := make(map[string]bool)
	var result []ValidationIssue
	for _, issue := range issues {
		key := issue.Path + "|" + issue.Keyword + "|" + issue.Message
		if !seen[key] {
			seen[key] = true
			result = append(result, issue)
		}
	}
	return result
}

// normalizeYAML converts decoded YAML into values encoding/json accepts.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			m[k] = normalizeYAML(v)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case []any:
		a := make([]any, len(val))
		for i, v := range val {
			a[i] = normalizeYAML(v)
		}
		return a
	default:
		return val
	}
}
