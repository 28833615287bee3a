// Package id generates unique identifiers for runs.
package id

import (
	"github.com/google/uuid"
)

// Generate generates a new unique ID.
func Generate() string {
	return uuid.New().String()
}

// Short generates a shorter unique ID (first 8 chars of UUID).
func Short() string {
	return uuid.New().String()[:8]
}

// Run generates a run identifier.
func Run() string {
	return "run-" + Short()
}
