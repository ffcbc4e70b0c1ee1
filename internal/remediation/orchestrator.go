package remediation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/hallmonitor/internal/gitrepo"
	"github.com/temirov/hallmonitor/internal/manifest"
	"github.com/temirov/hallmonitor/internal/reconcile"
	"github.com/temirov/hallmonitor/internal/repos/shared"
)

const (
	// DefaultBranchName is the automation branch.
	DefaultBranchName = "security-compliance"
	// DefaultCommitMessage is used when none is configured.
	DefaultCommitMessage = "Update Tekton SC pipeline URLs to use main branch"

	missingWorkingCopyReasonTemplate = "%s is missing or not a git working copy"
	noCandidatesReasonTemplate       = "no -sc files found in %s directory"
	alreadyMainReasonConstant        = "SC files already use 'main' branch"
	noUpdatableReasonTemplate        = "%d manifest(s) could not be processed"
	manifestErrorReasonTemplate      = "manifest error: %v"
	addErrorReasonTemplate           = "add error: %s"
	commitErrorReasonTemplate        = "commit error: %s"
	pushErrorReasonTemplate          = "push error: %s"
	plannedAddTemplateConstant       = "add %s"
	plannedCommitTemplateConstant    = "commit -m %s"
	plannedPushTemplateConstant      = "push %s %s"
	logFieldRepositoryConstant       = "repository"
	logFieldStatusConstant           = "status"
	logFieldReasonConstant           = "reason"
	logFieldCommitConstant           = "commit"
)

var (
	// ErrClientNotConfigured indicates a missing version control client.
	ErrClientNotConfigured = errors.New("remediation: version control client not configured")
	// ErrReconcilerNotConfigured indicates a missing branch reconciler.
	ErrReconcilerNotConfigured = errors.New("remediation: branch reconciler not configured")
	// ErrPatcherNotConfigured indicates a missing manifest patcher.
	ErrPatcherNotConfigured = errors.New("remediation: manifest patcher not configured")
	// ErrLocatorNotConfigured indicates a missing working copy locator.
	ErrLocatorNotConfigured = errors.New("remediation: working copy locator not configured")
	// ErrLoggerNotConfigured indicates a missing logger.
	ErrLoggerNotConfigured = errors.New("remediation: logger not configured")
	// ErrRepositoriesRootRequired indicates an empty repositories root.
	ErrRepositoriesRootRequired = errors.New("remediation: repositories root must be provided")
)

// BranchReconciler prepares the automation branch in a working copy.
type BranchReconciler interface {
	Reconcile(executionContext context.Context, repositoryPath string, branchName string) reconcile.Result
}

// ManifestPatcher rewrites manifests in a working copy.
type ManifestPatcher interface {
	PatchRepository(executionContext context.Context, repositoryPath string) (manifest.PatchResult, error)
}

// WorkingCopyLocator resolves repositories under the root.
type WorkingCopyLocator interface {
	EnsureRoot(root string) error
	Locate(root string, repositoryName string) (string, bool)
	ScanChildren(root string) ([]string, error)
}

// Dependencies enumerates collaborators required by the Orchestrator.
type Dependencies struct {
	Client     gitrepo.VersionControlClient
	Reconciler BranchReconciler
	Patcher    ManifestPatcher
	Locator    WorkingCopyLocator
	Logger     *zap.Logger
	Reporter   shared.Reporter
}

// Options configures a remediation run.
type Options struct {
	RepositoriesRoot string
	BranchName       string
	RemoteName       string
	CommitMessage    string
	DryRun           bool
}

// Orchestrator processes repositories sequentially.
type Orchestrator struct {
	dependencies Dependencies
	options      Options
}

type target struct {
	name  string
	path  string
	found bool
}

// NewOrchestrator validates dependencies and applies option defaults.
func NewOrchestrator(dependencies Dependencies, options Options) (*Orchestrator, error) {
	switch {
	case dependencies.Client == nil:
		return nil, ErrClientNotConfigured
	case dependencies.Reconciler == nil:
		return nil, ErrReconcilerNotConfigured
	case dependencies.Patcher == nil:
		return nil, ErrPatcherNotConfigured
	case dependencies.Locator == nil:
		return nil, ErrLocatorNotConfigured
	case dependencies.Logger == nil:
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.Reporter == nil {
		dependencies.Reporter = shared.NewWriterReporter(nil)
	}
	options.RepositoriesRoot = strings.TrimSpace(options.RepositoriesRoot)
	if len(options.RepositoriesRoot) == 0 {
		return nil, ErrRepositoriesRootRequired
	}
	if len(strings.TrimSpace(options.BranchName)) == 0 {
		options.BranchName = DefaultBranchName
	}
	if len(strings.TrimSpace(options.RemoteName)) == 0 {
		options.RemoteName = reconcile.DefaultRemoteName
	}
	if len(strings.TrimSpace(options.CommitMessage)) == 0 {
		options.CommitMessage = DefaultCommitMessage
	}
	return &Orchestrator{dependencies: dependencies, options: options}, nil
}

// Run processes the named repositories, or every working copy directly under
// the root when no names are given. The error is reserved for an unusable root.
func (orchestrator *Orchestrator) Run(executionContext context.Context, repositoryNames []string) (AuditLog, error) {
	auditLog := AuditLog{DryRun: orchestrator.options.DryRun, Branch: orchestrator.options.BranchName, Remote: orchestrator.options.RemoteName, Outcomes: []Outcome{}}
	targets, resolveError := orchestrator.resolveTargets(repositoryNames)
	if resolveError != nil {
		return auditLog, resolveError
	}

	reporter := orchestrator.dependencies.Reporter
	if orchestrator.options.DryRun {
		reporter.Printf("DRY RUN MODE - no changes will be made\n")
	}
	reporter.Printf("Target branch: %s\nFound %d repository/repositories\n", orchestrator.options.BranchName, len(targets))

	for _, repositoryTarget := range targets {
		if contextError := executionContext.Err(); contextError != nil {
			return auditLog, contextError
		}
		reporter.Printf("\nProcessing: %s\n%s\n", repositoryTarget.name, strings.Repeat("=", 60))
		outcome := orchestrator.process(executionContext, repositoryTarget)
		orchestrator.dependencies.Logger.Info("Repository processed",
			zap.String(logFieldRepositoryConstant, outcome.Repository),
			zap.String(logFieldStatusConstant, string(outcome.Status)),
			zap.String(logFieldReasonConstant, outcome.Reason),
			zap.String(logFieldCommitConstant, outcome.CommitSHA),
		)
		reporter.Printf("  %s\n", describeOutcome(outcome))
		auditLog.Outcomes = append(auditLog.Outcomes, outcome)
	}
	return auditLog, nil
}

func (orchestrator *Orchestrator) resolveTargets(repositoryNames []string) ([]target, error) {
	root := orchestrator.options.RepositoriesRoot
	locator := orchestrator.dependencies.Locator
	if err := locator.EnsureRoot(root); err != nil {
		return nil, err
	}

	if len(repositoryNames) == 0 {
		paths, scanError := locator.ScanChildren(root)
		if scanError != nil {
			return nil, scanError
		}
		targets := make([]target, 0, len(paths))
		for _, path := range paths {
			targets = append(targets, target{name: filepath.Base(path), path: path, found: true})
		}
		return targets, nil
	}

	targets := make([]target, 0, len(repositoryNames))
	for _, repositoryName := range repositoryNames {
		path, found := locator.Locate(root, repositoryName)
		targets = append(targets, target{name: repositoryName, path: path, found: found})
	}
	return targets, nil
}

func (orchestrator *Orchestrator) process(executionContext context.Context, repositoryTarget target) Outcome {
	outcome := Outcome{Repository: repositoryTarget.name, Path: repositoryTarget.path}
	if !repositoryTarget.found {
		return skipped(outcome, SkipMissingWorkingCopy, fmt.Sprintf(missingWorkingCopyReasonTemplate, repositoryTarget.path))
	}

	reconcileResult := orchestrator.dependencies.Reconciler.Reconcile(executionContext, repositoryTarget.path, orchestrator.options.BranchName)
	outcome.Warnings = append(outcome.Warnings, reconcileResult.Warnings...)
	outcome.PlannedActions = append(outcome.PlannedActions, reconcileResult.PlannedActions...)
	switch reconcileResult.State {
	case reconcile.StateSkipped:
		return skipped(outcome, SkipBranchUnavailable, reconcileResult.Reason)
	case reconcile.StateFailed:
		return failed(outcome, reconcileResult.Reason)
	}

	patchResult, patchError := orchestrator.dependencies.Patcher.PatchRepository(executionContext, repositoryTarget.path)
	outcome.Changes = patchResult.Changes
	outcome.Problems = patchResult.Problems
	if patchError != nil {
		return failed(outcome, fmt.Sprintf(manifestErrorReasonTemplate, patchError))
	}

	modifiedFiles := patchResult.ModifiedFiles()
	if len(modifiedFiles) == 0 {
		switch {
		case len(patchResult.Candidates) == 0:
			return skipped(outcome, SkipNoQualifyingFiles, fmt.Sprintf(noCandidatesReasonTemplate, patchResult.ManifestDirectory))
		case len(patchResult.Problems) > 0:
			return skipped(outcome, SkipNoUpdatableManifest, fmt.Sprintf(noUpdatableReasonTemplate, len(patchResult.Problems)))
		default:
			return skipped(outcome, SkipAlreadyUpToDate, alreadyMainReasonConstant)
		}
	}

	client := orchestrator.dependencies.Client
	if orchestrator.options.DryRun {
		for _, relativePath := range modifiedFiles {
			outcome.PlannedActions = append(outcome.PlannedActions, fmt.Sprintf(plannedAddTemplateConstant, relativePath))
		}
		outcome.PlannedActions = append(outcome.PlannedActions,
			fmt.Sprintf(plannedCommitTemplateConstant, orchestrator.options.CommitMessage),
			fmt.Sprintf(plannedPushTemplateConstant, orchestrator.options.RemoteName, orchestrator.options.BranchName),
		)
		outcome.Status = StatusWouldPush
		return outcome
	}

	for _, relativePath := range modifiedFiles {
		if addError := client.Add(executionContext, repositoryTarget.path, relativePath); addError != nil {
			return failed(outcome, fmt.Sprintf(addErrorReasonTemplate, gitrepo.FailureDetail(addError)))
		}
	}
	if commitError := client.Commit(executionContext, repositoryTarget.path, orchestrator.options.CommitMessage); commitError != nil {
		return failed(outcome, fmt.Sprintf(commitErrorReasonTemplate, gitrepo.FailureDetail(commitError)))
	}

	commitSHA, headError := client.CurrentHead(executionContext, repositoryTarget.path)
	if headError != nil || len(commitSHA) == 0 {
		commitSHA = UnknownCommit
	}
	outcome.CommitSHA = commitSHA

	if pushError := client.Push(executionContext, repositoryTarget.path, orchestrator.options.RemoteName, orchestrator.options.BranchName); pushError != nil {
		return failed(outcome, fmt.Sprintf(pushErrorReasonTemplate, gitrepo.FailureDetail(pushError)))
	}
	outcome.Status = StatusPushed
	return outcome
}

func skipped(outcome Outcome, kind SkipKind, reason string) Outcome {
	outcome.Status = StatusSkipped
	outcome.SkipKind = kind
	outcome.Reason = reason
	return outcome
}

func failed(outcome Outcome, reason string) Outcome {
	outcome.Status = StatusFailed
	outcome.Reason = reason
	return outcome
}

func describeOutcome(outcome Outcome) string {
	switch outcome.Status {
	case StatusPushed:
		return fmt.Sprintf("Pushed %d file(s), commit %s", len(outcome.Changes), outcome.CommitSHA)
	case StatusWouldPush:
		return fmt.Sprintf("[DRY RUN] Would commit and push %d file(s)", len(outcome.Changes))
	case StatusSkipped:
		return fmt.Sprintf("No changes: %s", outcome.Reason)
	default:
		return fmt.Sprintf("Failed: %s", outcome.Reason)
	}
}
