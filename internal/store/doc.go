// Package store defines the persistence interfaces for jobs and
// devices along with their implementations: an in-memory store for
// development and tests, and a PostgreSQL store for production
// deployments. Both satisfy the same interfaces so the rest of the
// application never depends on a concrete backend.
package store
