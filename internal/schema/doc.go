// Package schema defines the format-agnostic data model for brick pipelines:
// tagged expressions, steps, branch stacks, run metadata, and the apiVersion
// behavior flags. Loaders in other packages translate concrete formats (HCL,
// YAML) into these types; the executor consumes them without knowing where
// they came from.
package schema
