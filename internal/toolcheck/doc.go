// Package toolcheck probes external tool availability.
//
// Each tool resolves to exactly one check strategy, probes run through a
// bounded worker set against a shell executor, and results are cached by
// configuration fingerprint. A package-manager list command, when
// configured, is warmed up once per batch so membership probes become
// in-memory lookups.
package toolcheck
