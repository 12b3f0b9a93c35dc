// Package statuscache persists tool probe results between runs.
//
// Entries are keyed by tool ID and carry a fingerprint of the tool
// configuration that produced them, so edits to a tool block invalidate
// its cached status without touching the rest of the file. A missing or
// corrupt cache file is never fatal; the cache simply starts empty.
package statuscache
