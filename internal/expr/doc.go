// Package expr evaluates the small expression language used by prompts,
// computed fields, filters and template markers.
//
// Expressions are HCL native-syntax expressions evaluated against a Scope.
// Identifiers resolve to metadata keys; an identifier with no value is null.
// A handful of JavaScript spellings that template authors tend to write
// (=== and !==, single-quoted strings) are rewritten before parsing.
package expr
