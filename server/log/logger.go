// Package log provides an abstraction over log.Logger.
package log

// Logger is the part of log.Logger the servers use.
// Passing it explicitly keeps the packages off the default logger.
type Logger interface {
	// Printf writes the formatted string with values to the logger.
	// Arguments are handled in the manner of fmt.Printf.
	Printf(format string, v ...interface{})
}
