// Package descriptor loads and validates template descriptors: the meta.yaml,
// meta.yml or meta.json file at the root of a template that declares prompts,
// computed values, file filters, interpolation exemptions and hooks.
package descriptor
