package remediation

import (
	"github.com/temirov/hallmonitor/internal/manifest"
)

// Status classifies the end state of one repository.
type Status string

// Repository statuses.
const (
	StatusPushed    Status = "pushed"
	StatusWouldPush Status = "would_push"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// SkipKind explains why a repository needed no change.
type SkipKind string

// Skip kinds.
const (
	SkipMissingWorkingCopy  SkipKind = "missing working copy"
	SkipBranchUnavailable   SkipKind = "branch not found on remote"
	SkipNoQualifyingFiles   SkipKind = "no qualifying files"
	SkipAlreadyUpToDate     SkipKind = "already up to date"
	SkipNoUpdatableManifest SkipKind = "no updatable manifests"
)

// UnknownCommit is recorded when HEAD cannot be resolved after committing.
const UnknownCommit = "unknown"

// Outcome is the audit record of one repository.
type Outcome struct {
	Repository     string
	Path           string
	Status         Status
	SkipKind       SkipKind
	Reason         string
	CommitSHA      string
	Changes        []manifest.Change
	Problems       []manifest.Problem
	Warnings       []string
	PlannedActions []string
}

// ModifiedFiles lists the repository relative paths that changed.
func (outcome Outcome) ModifiedFiles() []string {
	modified := make([]string, 0, len(outcome.Changes))
	for _, change := range outcome.Changes {
		modified = append(modified, change.RelativePath)
	}
	return modified
}

// AuditLog is the ordered record of one run.
type AuditLog struct {
	DryRun   bool
	Branch   string
	Remote   string
	Outcomes []Outcome
}

// WithStatus returns outcomes with the given status in processing order.
func (log AuditLog) WithStatus(status Status) []Outcome {
	selected := []Outcome{}
	for _, outcome := range log.Outcomes {
		if outcome.Status == status {
			selected = append(selected, outcome)
		}
	}
	return selected
}

// Remedied returns pushed and would-push outcomes.
func (log AuditLog) Remedied() []Outcome {
	return append(log.WithStatus(StatusPushed), log.WithStatus(StatusWouldPush)...)
}
