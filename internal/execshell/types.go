package execshell

import (
	"context"
	"errors"
	"strings"
)

// CommandName identifies an executable.
type CommandName string

// CommandGit is the git binary.
const CommandGit CommandName = "git"

var (
	// ErrLoggerNotConfigured indicates a missing logger.
	ErrLoggerNotConfigured = errors.New("execshell: logger not configured")
	// ErrCommandRunnerNotConfigured indicates a missing command runner.
	ErrCommandRunnerNotConfigured = errors.New("execshell: command runner not configured")
)

// CommandDetails carries the per-invocation settings of a command.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand is a named executable plus its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// Label renders the command line for logs and error messages.
func (command ShellCommand) Label() string {
	parts := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(parts, commandArgumentsJoinSeparatorConstant)
}

// Subcommand returns the first argument, which for git is the subcommand.
func (command ShellCommand) Subcommand() string {
	if len(command.Details.Arguments) == 0 {
		return emptyStringConstant
	}
	return strings.TrimSpace(command.Details.Arguments[0])
}

// ExecutionResult captures process output.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes a single command.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that ran and exited non-zero.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failure including trimmed standard error.
func (failure CommandFailedError) Error() string {
	return CommandMessageFormatter{}.BuildFailureMessage(failure.Command, failure.Result)
}

// StandardErrorText returns the trimmed standard error, falling back to standard output.
func (failure CommandFailedError) StandardErrorText() string {
	trimmed := strings.TrimSpace(failure.Result.StandardError)
	if len(trimmed) > 0 {
		return trimmed
	}
	return strings.TrimSpace(failure.Result.StandardOutput)
}

// CommandExecutionError reports a command that could not be started.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return CommandMessageFormatter{}.BuildExecutionFailureMessage(failure.Command, failure.Cause)
}

// Unwrap exposes the underlying cause.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}
