// Package reconcile brings a local working copy onto the automation branch
// in a known state relative to the upstream remote.
//
// The remote wins: a local branch that diverged from or ran ahead of its
// upstream is hard reset, otherwise it is fast-forwarded with a pull.
package reconcile
