// Package report delivers the outcome of every label batch to log and
// stream sinks.
package report
