// Package events decouples the API layer from the task runner. When a
// handler persists a new job it emits a JobRequestEvent; the task
// package listens for these events and schedules the actual work.
package events
