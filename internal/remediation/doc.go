// Package remediation drives stale repositories through branch
// reconciliation, manifest patching, commit and push, and records one
// Outcome per repository in an AuditLog.
//
// Repositories are processed strictly one at a time. A failure in one
// repository never stops the run.
package remediation
