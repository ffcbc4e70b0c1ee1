// Package coordinator ties stale detection to repository remediation: it
// renders the staleness report, maps stale services onto git repositories and
// hands them to the remediation orchestrator.
package coordinator
