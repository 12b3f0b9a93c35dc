// Package config defines the unified, format-agnostic configuration model
// and the Loader interface its format-specific implementations satisfy.
// The concrete HCL implementation lives in the internal/hcl package.
package config
