package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/hallmonitor/internal/gitrepo"
)

// State is the terminal state of a reconciliation.
type State string

// Terminal states.
const (
	StateReady   State = "ready"
	StateSkipped State = "skipped"
	StateFailed  State = "failed"
)

const (
	// DefaultRemoteName is the upstream remote used when none is configured.
	DefaultRemoteName = "upstream"

	divergedPhraseConstant          = "have diverged"
	aheadPhraseConstant             = "Your branch is ahead of"
	unstagedPhraseConstant          = "Changes not staged for commit"
	stagedPhraseConstant            = "Changes to be committed"
	unmergedPhraseConstant          = "Unmerged paths"
	remoteBranchTemplateConstant    = "%s/%s"
	branchMissingReasonTemplate     = "branch '%s' not found on remote"
	checkoutErrorReasonTemplate     = "checkout error: %s"
	resetErrorReasonTemplate        = "reset error: %s"
	verifyErrorReasonTemplate       = "branch verification error: %s"
	plannedCheckoutTemplateConstant = "checkout %s"
	plannedCreateBranchTemplate     = "checkout -b %s %s"
	plannedResetTemplateConstant    = "reset --hard %s"
	plannedPullTemplateConstant     = "pull %s %s"
	fetchWarningTemplateConstant    = "fetch failed: %s"
	statusWarningTemplateConstant   = "status failed: %s"
	pullWarningTemplateConstant     = "pull failed: %s"
	logFieldRepositoryConstant      = "repository"
	logFieldBranchConstant          = "branch"
	logFieldRemoteBranchConstant    = "remote_branch"
)

var driftPhrases = []string{divergedPhraseConstant, aheadPhraseConstant, unstagedPhraseConstant, stagedPhraseConstant, unmergedPhraseConstant}

var (
	// ErrClientNotConfigured indicates a missing version control client.
	ErrClientNotConfigured = errors.New("reconcile: version control client not configured")
	// ErrLoggerNotConfigured indicates a missing logger.
	ErrLoggerNotConfigured = errors.New("reconcile: logger not configured")
)

// Dependencies enumerates collaborators required by the Reconciler.
type Dependencies struct {
	Client gitrepo.VersionControlClient
	Logger *zap.Logger
}

// Options configures the Reconciler.
type Options struct {
	RemoteName string
	DryRun     bool
}

// Result describes how a reconciliation ended. PlannedActions lists the
// mutating git commands a dry run would have executed.
type Result struct {
	State          State
	Reason         string
	BranchCreated  bool
	ResetApplied   bool
	Warnings       []string
	PlannedActions []string
}

// Reconciler drives the fetch, verify, checkout and divergence steps.
type Reconciler struct {
	client     gitrepo.VersionControlClient
	logger     *zap.Logger
	remoteName string
	dryRun     bool
}

// NewReconciler validates dependencies.
func NewReconciler(dependencies Dependencies, options Options) (*Reconciler, error) {
	if dependencies.Client == nil {
		return nil, ErrClientNotConfigured
	}
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	remoteName := strings.TrimSpace(options.RemoteName)
	if len(remoteName) == 0 {
		remoteName = DefaultRemoteName
	}
	return &Reconciler{client: dependencies.Client, logger: dependencies.Logger, remoteName: remoteName, dryRun: options.DryRun}, nil
}

// RemoteName reports the configured upstream remote.
func (reconciler *Reconciler) RemoteName() string {
	return reconciler.remoteName
}

// Reconcile prepares branchName in the working copy at repositoryPath.
func (reconciler *Reconciler) Reconcile(executionContext context.Context, repositoryPath string, branchName string) Result {
	result := Result{}
	remoteBranch := fmt.Sprintf(remoteBranchTemplateConstant, reconciler.remoteName, branchName)
	logger := reconciler.logger.With(
		zap.String(logFieldRepositoryConstant, repositoryPath),
		zap.String(logFieldBranchConstant, branchName),
		zap.String(logFieldRemoteBranchConstant, remoteBranch),
	)

	if fetchError := reconciler.client.Fetch(executionContext, repositoryPath, reconciler.remoteName); fetchError != nil {
		logger.Warn("Fetch failed, continuing with local state", zap.Error(fetchError))
		result.Warnings = append(result.Warnings, fmt.Sprintf(fetchWarningTemplateConstant, gitrepo.FailureDetail(fetchError)))
	}

	localExists, localError := reconciler.client.RevisionExists(executionContext, repositoryPath, branchName)
	if localError != nil {
		return failed(result, verifyErrorReasonTemplate, gitrepo.FailureDetail(localError))
	}
	remoteExists, remoteError := reconciler.client.RevisionExists(executionContext, repositoryPath, remoteBranch)
	if remoteError != nil {
		return failed(result, verifyErrorReasonTemplate, gitrepo.FailureDetail(remoteError))
	}
	if !remoteExists {
		logger.Info("Branch not found on remote, skipping")
		result.State = StateSkipped
		result.Reason = fmt.Sprintf(branchMissingReasonTemplate, branchName)
		return result
	}

	if localExists {
		if reconciler.dryRun {
			result.PlannedActions = append(result.PlannedActions, fmt.Sprintf(plannedCheckoutTemplateConstant, branchName))
		} else if checkoutError := reconciler.client.Checkout(executionContext, repositoryPath, branchName); checkoutError != nil {
			logger.Warn("Checkout failed", zap.Error(checkoutError))
			return failed(result, checkoutErrorReasonTemplate, gitrepo.FailureDetail(checkoutError))
		}
	} else {
		result.BranchCreated = true
		if reconciler.dryRun {
			result.PlannedActions = append(result.PlannedActions, fmt.Sprintf(plannedCreateBranchTemplate, branchName, remoteBranch))
		} else if createError := reconciler.client.CreateTrackingBranch(executionContext, repositoryPath, branchName, remoteBranch); createError != nil {
			logger.Warn("Branch creation failed", zap.Error(createError))
			return failed(result, checkoutErrorReasonTemplate, gitrepo.FailureDetail(createError))
		}
		result.State = StateReady
		return result
	}

	status, statusError := reconciler.client.Status(executionContext, repositoryPath)
	if statusError != nil {
		logger.Warn("Status failed, falling back to pull", zap.Error(statusError))
		result.Warnings = append(result.Warnings, fmt.Sprintf(statusWarningTemplateConstant, gitrepo.FailureDetail(statusError)))
	}

	if statusError == nil && indicatesLocalDrift(status) {
		logger.Info("Local branch diverged, ahead or dirty, resetting to remote")
		result.ResetApplied = true
		if reconciler.dryRun {
			result.PlannedActions = append(result.PlannedActions, fmt.Sprintf(plannedResetTemplateConstant, remoteBranch))
		} else if resetError := reconciler.client.ResetHard(executionContext, repositoryPath, remoteBranch); resetError != nil {
			return failed(result, resetErrorReasonTemplate, gitrepo.FailureDetail(resetError))
		}
		result.State = StateReady
		return result
	}

	if reconciler.dryRun {
		result.PlannedActions = append(result.PlannedActions, fmt.Sprintf(plannedPullTemplateConstant, reconciler.remoteName, branchName))
	} else if pullError := reconciler.client.Pull(executionContext, repositoryPath, reconciler.remoteName, branchName); pullError != nil {
		logger.Warn("Pull failed, continuing with checked out state", zap.Error(pullError))
		result.Warnings = append(result.Warnings, fmt.Sprintf(pullWarningTemplateConstant, gitrepo.FailureDetail(pullError)))
	}
	result.State = StateReady
	return result
}

// indicatesLocalDrift reports local commits or tracked edits that the remote
// branch does not have, including rewrites left behind by an earlier failed commit.
func indicatesLocalDrift(status string) bool {
	for _, phrase := range driftPhrases {
		if strings.Contains(status, phrase) {
			return true
		}
	}
	return false
}

func failed(result Result, template string, detail string) Result {
	result.State = StateFailed
	result.Reason = fmt.Sprintf(template, detail)
	return result
}
