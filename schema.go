package contract

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Schema validates and optionally transforms a value. Parse returns the
// value to use going forward (often the input unchanged) or an error —
// a *ValidationError when the value is structurally wrong.
//
// A nil Schema in a Schemas slot means pass-through, which is observably
// different from a Schema that always succeeds: pass-through slots are
// absent from Client.Schema introspection.
type Schema interface {
	Parse(value any) (any, error)
}

// SchemaFunc adapts a plain predicate or transform into a Schema.
//
// Example:
//
//	nonEmpty := contract.SchemaFunc(func(v any) (any, error) {
//	    s, ok := v.(string)
//	    if !ok || s == "" {
//	        return nil, &contract.ValidationError{Issues: []contract.Issue{{Message: "must be a non-empty string"}}}
//	    }
//	    return s, nil
//	})
type SchemaFunc func(value any) (any, error)

// Parse implements the Schema interface.
func (f SchemaFunc) Parse(value any) (any, error) { return f(value) }

// FieldNamer is an optional interface for schemas that can enumerate the
// keys of the object they validate. The client uses it at registration
// time to check path placeholders against the pathParams schema.
type FieldNamer interface {
	FieldNames() []string
}

// RawSchemer is an optional interface for schemas that wrap a declarative
// schema object, exposed via Client.RawSchema for reuse by external
// tooling such as form generators.
type RawSchemer interface {
	RawSchema() any
}

// Issue is a single structural problem found by a schema. Path segments
// are strings for object keys and ints for array indexes; an empty Path
// refers to the value as a whole.
type Issue struct {
	Path    []any  `json:"path"`
	Message string `json:"message"`
}

// ValidationError carries every issue found by a schema, never just the
// first one. It is raised locally, before the network is reached for
// input slots, and never silently swallowed: Call propagates it and
// SafeCall converts it into the normalized error channel.
type ValidationError struct {
	Issues []Issue
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if len(issue.Path) == 0 {
			parts = append(parts, issue.Message)
			continue
		}
		segs := make([]string, len(issue.Path))
		for i, p := range issue.Path {
			segs[i] = fmt.Sprint(p)
		}
		parts = append(parts, strings.Join(segs, ".")+": "+issue.Message)
	}
	return "validation: " + strings.Join(parts, "; ")
}

// Field describes one key of an Object schema.
type Field struct {
	// Name is the object key.
	Name string

	// Rules are the ozzo-validation rules applied to the key's value.
	Rules []validation.Rule

	// Optional marks the key as allowed to be absent.
	Optional bool
}

// Object builds a Schema over map-shaped values (Params or
// map[string]any) from ozzo-validation rules. Keys not declared as
// fields are rejected, required fields must be present, and every
// failing rule is reported as its own issue.
//
// Object schemas implement FieldNamer (used for the placeholder check at
// registration) and RawSchemer (exposing the underlying
// validation.MapRule).
//
// Example:
//
//	contract.Object(
//	    contract.Field{Name: "id", Rules: []validation.Rule{validation.Required}},
//	    contract.Field{Name: "page", Optional: true},
//	)
func Object(fields ...Field) Schema {
	keys := make([]*validation.KeyRules, 0, len(fields))
	for _, f := range fields {
		key := validation.Key(f.Name, f.Rules...)
		if f.Optional {
			key = key.Optional()
		}
		keys = append(keys, key)
	}
	return &objectSchema{fields: fields, rule: validation.Map(keys...)}
}

type objectSchema struct {
	fields []Field
	rule   validation.MapRule
}

// Parse implements the Schema interface.
func (s *objectSchema) Parse(value any) (any, error) {
	var m map[string]any
	switch v := value.(type) {
	case nil:
		m = map[string]any{}
	case Params:
		m = map[string]any(v)
	case map[string]any:
		m = v
	default:
		return nil, &ValidationError{Issues: []Issue{{Message: "must be an object"}}}
	}
	if err := s.rule.Validate(m); err != nil {
		return nil, &ValidationError{Issues: flattenIssues(err, nil)}
	}
	return value, nil
}

// FieldNames implements the FieldNamer interface.
func (s *objectSchema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// RawSchema implements the RawSchemer interface.
func (s *objectSchema) RawSchema() any { return s.rule }

// Values builds a Schema that applies ozzo-validation rules to a single
// value. Use it for scalar slots or for struct payloads validated with
// value-level rules.
func Values(rules ...validation.Rule) Schema {
	return &valueSchema{rules: rules}
}

type valueSchema struct {
	rules []validation.Rule
}

// Parse implements the Schema interface.
func (s *valueSchema) Parse(value any) (any, error) {
	if err := validation.Validate(value, s.rules...); err != nil {
		return nil, &ValidationError{Issues: flattenIssues(err, nil)}
	}
	return value, nil
}

// RawSchema implements the RawSchemer interface.
func (s *valueSchema) RawSchema() any { return s.rules }

// Validatable builds a Schema that calls Validate() error on values that
// implement it (the ozzo-validation struct convention) and passes every
// other value through.
func Validatable() Schema {
	return SchemaFunc(func(value any) (any, error) {
		v, ok := value.(interface{ Validate() error })
		if !ok {
			return value, nil
		}
		if err := v.Validate(); err != nil {
			return nil, &ValidationError{Issues: flattenIssues(err, nil)}
		}
		return value, nil
	})
}

// flattenIssues converts ozzo's nested validation.Errors into the flat
// issue list, one issue per failing leaf. Keys that look like numbers
// become int path segments so array indexes keep their type.
func flattenIssues(err error, path []any) []Issue {
	errs, ok := err.(validation.Errors)
	if !ok {
		return []Issue{{Path: path, Message: err.Error()}}
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []Issue
	for _, k := range keys {
		seg := any(k)
		if n, convErr := strconv.Atoi(k); convErr == nil {
			seg = n
		}
		child := append(append([]any{}, path...), seg)
		out = append(out, flattenIssues(errs[k], child)...)
	}
	return out
}
