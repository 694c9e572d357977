// Package db configures access to the stores that keep player accounts between server restarts.
package db

import "time"

// Config contains settings common to every database backend.
type Config struct {
	// QueryPeriod is the amount of time any database operation can take before it should timeout.
	QueryPeriod time.Duration
}
