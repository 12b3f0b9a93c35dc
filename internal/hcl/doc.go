// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It is responsible for file parsing, expression evaluation
// against the ambient variable scope, and schema-to-model translation.
package hcl
