// Package metrics accumulates token usage, cost and latency for a model
// session and hands out immutable snapshots of the totals.
//
// A Metrics value is safe for concurrent use. Snapshots are deep copies, so
// holding one never observes later calls.
package metrics
