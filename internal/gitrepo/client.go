package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/hallmonitor/internal/execshell"
	"github.com/temirov/hallmonitor/internal/repos/shared"
)

const (
	gitFetchSubcommandConstant                  = "fetch"
	gitRevParseSubcommandConstant               = "rev-parse"
	gitVerifyFlagConstant                       = "--verify"
	gitQuietFlagConstant                        = "--quiet"
	gitHeadReferenceConstant                    = "HEAD"
	gitCheckoutSubcommandConstant               = "checkout"
	gitCreateBranchFlagConstant                 = "-b"
	gitStatusSubcommandConstant                 = "status"
	gitResetSubcommandConstant                  = "reset"
	gitHardFlagConstant                         = "--hard"
	gitPullSubcommandConstant                   = "pull"
	gitAddSubcommandConstant                    = "add"
	gitCommitSubcommandConstant                 = "commit"
	gitMessageFlagConstant                      = "-m"
	gitPushSubcommandConstant                   = "push"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	gitFetchFailureTemplateConstant             = "failed to fetch %s: %w"
	gitVerifyFailureTemplateConstant            = "failed to verify revision %q: %w"
	gitCheckoutFailureTemplateConstant          = "failed to checkout branch %q: %w"
	gitCreateBranchFailureTemplateConstant      = "failed to create branch %q from %q: %w"
	gitStatusFailureTemplateConstant            = "failed to read status: %w"
	gitResetFailureTemplateConstant             = "failed to reset to %q: %w"
	gitPullFailureTemplateConstant              = "failed to pull %s from %s: %w"
	gitAddFailureTemplateConstant               = "failed to stage %q: %w"
	gitCommitFailureTemplateConstant            = "failed to commit: %w"
	gitHeadFailureTemplateConstant              = "failed to resolve HEAD: %w"
	gitPushFailureTemplateConstant              = "failed to push %s to %s: %w"
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New("gitrepo: git executor not configured")

// VersionControlClient is the git capability used by reconciliation and remediation.
type VersionControlClient interface {
	Fetch(executionContext context.Context, repositoryPath string, remoteName string) error
	RevisionExists(executionContext context.Context, repositoryPath string, revision string) (bool, error)
	Checkout(executionContext context.Context, repositoryPath string, branchName string) error
	CreateTrackingBranch(executionContext context.Context, repositoryPath string, branchName string, startPoint string) error
	Status(executionContext context.Context, repositoryPath string) (string, error)
	ResetHard(executionContext context.Context, repositoryPath string, revision string) error
	Pull(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error
	Add(executionContext context.Context, repositoryPath string, relativePath string) error
	Commit(executionContext context.Context, repositoryPath string, message string) error
	CurrentHead(executionContext context.Context, repositoryPath string) (string, error)
	Push(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error
}

// CommandClient implements VersionControlClient with the git binary.
type CommandClient struct {
	executor shared.GitExecutor
}

// NewCommandClient validates the executor.
func NewCommandClient(executor shared.GitExecutor) (*CommandClient, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &CommandClient{executor: executor}, nil
}

// Fetch runs "git fetch <remote>".
func (client *CommandClient) Fetch(executionContext context.Context, repositoryPath string, remoteName string) error {
	if _, executionError := client.run(executionContext, repositoryPath, gitFetchSubcommandConstant, remoteName); executionError != nil {
		return fmt.Errorf(gitFetchFailureTemplateConstant, remoteName, executionError)
	}
	return nil
}

// RevisionExists runs "git rev-parse --verify --quiet <revision>". A non-zero
// exit means the revision is absent; only failures to run git are errors.
func (client *CommandClient) RevisionExists(executionContext context.Context, repositoryPath string, revision string) (bool, error) {
	_, executionError := client.run(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitVerifyFlagConstant, gitQuietFlagConstant, revision)
	if executionError == nil {
		return true, nil
	}
	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) {
		return false, nil
	}
	return false, fmt.Errorf(gitVerifyFailureTemplateConstant, revision, executionError)
}

// Checkout switches to an existing local branch.
func (client *CommandClient) Checkout(executionContext context.Context, repositoryPath string, branchName string) error {
	if _, executionError := client.run(executionContext, repositoryPath, gitCheckoutSubcommandConstant, branchName); executionError != nil {
		return fmt.Errorf(gitCheckoutFailureTemplateConstant, branchName, executionError)
	}
	return nil
}

// CreateTrackingBranch runs "git checkout -b <branch> <startPoint>".
func (client *CommandClient) CreateTrackingBranch(executionContext context.Context, repositoryPath string, branchName string, startPoint string) error {
	if _, executionError := client.run(executionContext, repositoryPath, gitCheckoutSubcommandConstant, gitCreateBranchFlagConstant, branchName, startPoint); executionError != nil {
		return fmt.Errorf(gitCreateBranchFailureTemplateConstant, branchName, startPoint, executionError)
	}
	return nil
}

// Status returns the output of "git status".
func (client *CommandClient) Status(executionContext context.Context, repositoryPath string) (string, error) {
	result, executionError := client.run(executionContext, repositoryPath, gitStatusSubcommandConstant)
	if executionError != nil {
		return "", fmt.Errorf(gitStatusFailureTemplateConstant, executionError)
	}
	return result.StandardOutput, nil
}

// ResetHard runs "git reset --hard <revision>".
func (client *CommandClient) ResetHard(executionContext context.Context, repositoryPath string, revision string) error {
	if _, executionError := client.run(executionContext, repositoryPath, gitResetSubcommandConstant, gitHardFlagConstant, revision); executionError != nil {
		return fmt.Errorf(gitResetFailureTemplateConstant, revision, executionError)
	}
	return nil
}

// Pull runs "git pull <remote> <branch>".
func (client *CommandClient) Pull(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	if _, executionError := client.run(executionContext, repositoryPath, gitPullSubcommandConstant, remoteName, branchName); executionError != nil {
		return fmt.Errorf(gitPullFailureTemplateConstant, branchName, remoteName, executionError)
	}
	return nil
}

// Add stages one path relative to the repository root.
func (client *CommandClient) Add(executionContext context.Context, repositoryPath string, relativePath string) error {
	if _, executionError := client.run(executionContext, repositoryPath, gitAddSubcommandConstant, relativePath); executionError != nil {
		return fmt.Errorf(gitAddFailureTemplateConstant, relativePath, executionError)
	}
	return nil
}

// Commit records staged changes with the message.
func (client *CommandClient) Commit(executionContext context.Context, repositoryPath string, message string) error {
	if _, executionError := client.run(executionContext, repositoryPath, gitCommitSubcommandConstant, gitMessageFlagConstant, message); executionError != nil {
		return fmt.Errorf(gitCommitFailureTemplateConstant, executionError)
	}
	return nil
}

// CurrentHead returns the commit hash at HEAD.
func (client *CommandClient) CurrentHead(executionContext context.Context, repositoryPath string) (string, error) {
	result, executionError := client.run(executionContext, repositoryPath, gitRevParseSubcommandConstant, gitHeadReferenceConstant)
	if executionError != nil {
		return "", fmt.Errorf(gitHeadFailureTemplateConstant, executionError)
	}
	return strings.TrimSpace(result.StandardOutput), nil
}

// Push runs "git push <remote> <branch>".
func (client *CommandClient) Push(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	if _, executionError := client.run(executionContext, repositoryPath, gitPushSubcommandConstant, remoteName, branchName); executionError != nil {
		return fmt.Errorf(gitPushFailureTemplateConstant, branchName, remoteName, executionError)
	}
	return nil
}

func (client *CommandClient) run(executionContext context.Context, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	return client.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     repositoryPath,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant},
	})
}

// FailureDetail extracts the most useful text from a git failure: standard
// error for commands that exited non-zero, the error text otherwise.
func FailureDetail(failure error) string {
	if failure == nil {
		return ""
	}
	var failedError execshell.CommandFailedError
	if errors.As(failure, &failedError) {
		if detail := failedError.StandardErrorText(); len(detail) > 0 {
			return detail
		}
	}
	return failure.Error()
}
