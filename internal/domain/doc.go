// Package domain contains the core entities of the box office service:
// background jobs and the ticket-shop objects they operate on. Domain
// types carry their own validation and state-transition rules and have
// no dependencies on storage or transport layers.
package domain
