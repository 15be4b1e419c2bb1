// Package testdb provides helpers for integration tests that need a real
// PostgreSQL database: connection setup from the environment, schema
// migration and per-test transactions that are always rolled back.
package testdb
