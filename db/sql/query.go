package sql

import (
	"fmt"
	"strings"
)

type (
	// Query is a command for the database, written so user-provided values are always passed as arguments.
	Query interface {
		// Cmd is the injection-safe command to send to the database.
		Cmd() string
		// Args are the user-provided values the command's placeholders are bound to.
		Args() []interface{}
	}

	// QueryFunction is a Query that calls a stored function which reads data.
	QueryFunction struct {
		name      string
		cols      []string
		arguments []interface{}
	}

	// ExecFunction is a Query that calls a stored function which changes data.
	ExecFunction struct {
		name      string
		arguments []interface{}
	}

	// RawQuery is a Query with no arguments, used to run setup files.
	RawQuery string
)

// NewQueryFunction creates a Query to call a query function.
func NewQueryFunction(name string, cols []string, args ...interface{}) QueryFunction {
	q := QueryFunction{
		name:      name,
		cols:      cols,
		arguments: args,
	}
	return q
}

// NewExecFunction creates a Query to call an exec function.
func NewExecFunction(name string, args ...interface{}) ExecFunction {
	e := ExecFunction{
		name:      name,
		arguments: args,
	}
	return e
}

// Cmd returns a SQL string to select the columns from the query function.
func (q QueryFunction) Cmd() string {
	return fmt.Sprintf("SELECT %s FROM %s(%s)", strings.Join(q.cols, ", "), q.name, placeholders(len(q.arguments)))
}

// Cmd returns a SQL string to call the exec function.
func (e ExecFunction) Cmd() string {
	return fmt.Sprintf("SELECT %s(%s)", e.name, placeholders(len(e.arguments)))
}

// Cmd returns the raw SQL query.
func (r RawQuery) Cmd() string {
	return string(r)
}

// Args returns the arguments for the query function.
func (q QueryFunction) Args() []interface{} {
	return q.arguments
}

// Args returns the arguments for the exec function.
func (e ExecFunction) Args() []interface{} {
	return e.arguments
}

// Args returns nil for the raw SQL query.
func (RawQuery) Args() []interface{} {
	return nil
}

// placeholders builds the $1..$n argument list for n arguments.
func placeholders(n int) string {
	indexes := make([]string, n)
	for i := range indexes {
		indexes[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(indexes, ", ")
}
