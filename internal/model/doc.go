// Package model defines the format-agnostic domain types shared by the
// registry, graph builder, orderer, and tool checker: module records, tool
// configurations, check results, and the structured warning taxonomy.
package model
