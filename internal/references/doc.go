// Package references converts a markdown service reference table into the
// service mapping file consumed by the stale check.
package references
