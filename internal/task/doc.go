// Package task contains the background task machinery: the Task
// interface, a buffered queue, the worker runner that drains it, and
// the concrete executors for each job type. Jobs are persisted through
// the store package; the runner keeps their status and terminal
// outcome (redirect URL or error message) up to date as work proceeds.
package task
