// Package integration provides integration tests for the roster sync server.
// The tests run the full server against a migrated PostgreSQL container holding
// the SIS tables and an in-process fake LMS, covering the admin API, the event
// loop and reconciliation.
package integration
