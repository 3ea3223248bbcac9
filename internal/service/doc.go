// Package service contains the business logic that background tasks
// and API handlers call into: order confirmation with capacity checks
// and check-in list export generation.
package service
