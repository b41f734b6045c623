// Package notifier distributes document lifecycle events to in-process
// subscribers and, optionally, to an ntfy topic for push delivery. Publishing
// never blocks the workflow: each subscriber owns an unbounded queue drained
// by its own goroutine, and a slow consumer only delays itself.
package notifier
