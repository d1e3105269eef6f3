// Package resource bounds the memory and parallelism used by table operations
// and reports progress of long-running scans.
package resource
