// Package gitrepotest provides an in-memory VersionControlClient for tests.
package gitrepotest

import (
	"context"
	"strings"
	"sync"

	"github.com/temirov/hallmonitor/internal/gitrepo"
)

var _ gitrepo.VersionControlClient = (*Client)(nil)

// Operation names used as Failures keys.
const (
	OperationFetch        = "fetch"
	OperationVerify       = "rev-parse --verify"
	OperationCheckout     = "checkout"
	OperationCreateBranch = "checkout -b"
	OperationStatus       = "status"
	OperationReset        = "reset"
	OperationPull         = "pull"
	OperationAdd          = "add"
	OperationCommit       = "commit"
	OperationCurrentHead  = "rev-parse HEAD"
	OperationPush         = "push"
)

// mutatingOperations lists operations that change the working copy or remote.
var mutatingOperations = map[string]struct{}{
	OperationCheckout:     {},
	OperationCreateBranch: {},
	OperationReset:        {},
	OperationPull:         {},
	OperationAdd:          {},
	OperationCommit:       {},
	OperationPush:         {},
}

// Repository configures the fake state of one working copy. OnReset, when
// set, runs after a successful hard reset so tests can restore files.
type Repository struct {
	Revisions    map[string]bool
	StatusOutput string
	Head         string
	Failures     map[string]error
	OnReset      func(revision string)
}

// Call is one recorded invocation.
type Call struct {
	RepositoryPath string
	Operation      string
	Arguments      []string
}

// Command renders the call as a git command line without the binary name.
func (call Call) Command() string {
	return strings.TrimSpace(call.Operation + " " + strings.Join(call.Arguments, " "))
}

// Client records calls and answers from per-repository state.
type Client struct {
	mutex        sync.Mutex
	Repositories map[string]*Repository
	Calls        []Call
}

// NewClient creates an empty fake.
func NewClient() *Client {
	return &Client{Repositories: map[string]*Repository{}}
}

// Repository returns (creating when needed) the state for a path.
func (client *Client) Repository(repositoryPath string) *Repository {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	return client.repositoryLocked(repositoryPath)
}

func (client *Client) repositoryLocked(repositoryPath string) *Repository {
	repository, exists := client.Repositories[repositoryPath]
	if !exists {
		repository = &Repository{Revisions: map[string]bool{}, Failures: map[string]error{}}
		client.Repositories[repositoryPath] = repository
	}
	if repository.Revisions == nil {
		repository.Revisions = map[string]bool{}
	}
	if repository.Failures == nil {
		repository.Failures = map[string]error{}
	}
	return repository
}

func (client *Client) record(repositoryPath string, operation string, arguments ...string) (*Repository, error) {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	client.Calls = append(client.Calls, Call{RepositoryPath: repositoryPath, Operation: operation, Arguments: arguments})
	repository := client.repositoryLocked(repositoryPath)
	return repository, repository.Failures[operation]
}

// Commands returns the recorded command lines for one repository.
func (client *Client) Commands(repositoryPath string) []string {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	commands := []string{}
	for _, call := range client.Calls {
		if call.RepositoryPath == repositoryPath {
			commands = append(commands, call.Command())
		}
	}
	return commands
}

// MutatingCalls returns every recorded call that would change state.
func (client *Client) MutatingCalls() []Call {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	mutating := []Call{}
	for _, call := range client.Calls {
		if _, isMutating := mutatingOperations[call.Operation]; isMutating {
			mutating = append(mutating, call)
		}
	}
	return mutating
}

// Fetch records a fetch.
func (client *Client) Fetch(executionContext context.Context, repositoryPath string, remoteName string) error {
	_, failure := client.record(repositoryPath, OperationFetch, remoteName)
	return failure
}

// RevisionExists answers from Repository.Revisions.
func (client *Client) RevisionExists(executionContext context.Context, repositoryPath string, revision string) (bool, error) {
	repository, failure := client.record(repositoryPath, OperationVerify, revision)
	if failure != nil {
		return false, failure
	}
	return repository.Revisions[revision], nil
}

// Checkout records a checkout.
func (client *Client) Checkout(executionContext context.Context, repositoryPath string, branchName string) error {
	_, failure := client.record(repositoryPath, OperationCheckout, branchName)
	return failure
}

// CreateTrackingBranch records a branch creation and marks the branch present.
func (client *Client) CreateTrackingBranch(executionContext context.Context, repositoryPath string, branchName string, startPoint string) error {
	repository, failure := client.record(repositoryPath, OperationCreateBranch, branchName, startPoint)
	if failure == nil {
		client.mutex.Lock()
		repository.Revisions[branchName] = true
		client.mutex.Unlock()
	}
	return failure
}

// Status returns Repository.StatusOutput.
func (client *Client) Status(executionContext context.Context, repositoryPath string) (string, error) {
	repository, failure := client.record(repositoryPath, OperationStatus)
	if failure != nil {
		return "", failure
	}
	return repository.StatusOutput, nil
}

// ResetHard records a reset and invokes Repository.OnReset on success.
func (client *Client) ResetHard(executionContext context.Context, repositoryPath string, revision string) error {
	repository, failure := client.record(repositoryPath, OperationReset, "--hard", revision)
	if failure == nil && repository.OnReset != nil {
		repository.OnReset(revision)
	}
	return failure
}

// Pull records a pull.
func (client *Client) Pull(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	_, failure := client.record(repositoryPath, OperationPull, remoteName, branchName)
	return failure
}

// Add records staging of a path.
func (client *Client) Add(executionContext context.Context, repositoryPath string, relativePath string) error {
	_, failure := client.record(repositoryPath, OperationAdd, relativePath)
	return failure
}

// Commit records a commit.
func (client *Client) Commit(executionContext context.Context, repositoryPath string, message string) error {
	_, failure := client.record(repositoryPath, OperationCommit, "-m", message)
	return failure
}

// CurrentHead returns Repository.Head.
func (client *Client) CurrentHead(executionContext context.Context, repositoryPath string) (string, error) {
	repository, failure := client.record(repositoryPath, OperationCurrentHead)
	if failure != nil {
		return "", failure
	}
	return repository.Head, nil
}

// Push records a push.
func (client *Client) Push(executionContext context.Context, repositoryPath string, remoteName string, branchName string) error {
	_, failure := client.record(repositoryPath, OperationPush, remoteName, branchName)
	return failure
}
