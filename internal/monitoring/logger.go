// Package monitoring holds the diagnostic logger shared by the pipeline
// packages. Library code logs through Logf so commands and tests decide where
// the output goes.
package monitoring

import "log"

// Logf defaults to log.Printf.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces Logf. Passing nil silences the pipeline packages.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
