package execshell

import (
	"fmt"
	"strings"
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed to start: %s"
	standardErrorSuffixTemplateConstant     = ": %s"
	commandArgumentsJoinSeparatorConstant   = " "
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	gitMessageFlagConstant                  = "-m"
	gitBranchFlagConstant                   = "-b"
	gitVerifyFlagConstant                   = "--verify"
)

const (
	gitFetchSubcommandNameConstant    = "fetch"
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitCheckoutSubcommandNameConstant = "checkout"
	gitStatusSubcommandNameConstant   = "status"
	gitResetSubcommandNameConstant    = "reset"
	gitPullSubcommandNameConstant     = "pull"
	gitAddSubcommandNameConstant      = "add"
	gitCommitSubcommandNameConstant   = "commit"
	gitPushSubcommandNameConstant     = "push"
)

const (
	gitFetchStartTemplateConstant          = "Fetching %s in %s"
	gitFetchSuccessTemplateConstant        = "Fetched %s in %s"
	gitVerifyStartTemplateConstant         = "Checking revision %s in %s"
	gitVerifySuccessTemplateConstant       = "Revision %s exists in %s"
	gitHeadStartTemplateConstant           = "Reading HEAD of %s"
	gitHeadSuccessTemplateConstant         = "Read HEAD of %s"
	gitCheckoutStartTemplateConstant       = "Switching %s to %s"
	gitCheckoutSuccessTemplateConstant     = "Switched %s to %s"
	gitCreateBranchStartTemplateConstant   = "Creating branch %s from %s in %s"
	gitCreateBranchSuccessTemplateConstant = "Created branch %s from %s in %s"
	gitStatusStartTemplateConstant         = "Inspecting status of %s"
	gitStatusSuccessTemplateConstant       = "Inspected status of %s"
	gitResetStartTemplateConstant          = "Resetting %s to %s"
	gitResetSuccessTemplateConstant        = "Reset %s to %s"
	gitPullStartTemplateConstant           = "Pulling %s from %s in %s"
	gitPullSuccessTemplateConstant         = "Pulled %s from %s in %s"
	gitAddStartTemplateConstant            = "Staging %s in %s"
	gitAddSuccessTemplateConstant          = "Staged %s in %s"
	gitCommitStartTemplateConstant         = "Committing in %s: %s"
	gitCommitSuccessTemplateConstant       = "Committed in %s: %s"
	gitPushStartTemplateConstant           = "Pushing %s to %s from %s"
	gitPushSuccessTemplateConstant         = "Pushed %s to %s from %s"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
)

// CommandMessageFormatter renders human readable lifecycle messages for git subcommands.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	if message, ok := formatter.describeGit(command, messageStageStart); ok {
		return message
	}
	return fmt.Sprintf(genericStartTemplateConstant, command.Label())
}

// BuildSuccessMessage describes a command that exited zero.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	if message, ok := formatter.describeGit(command, messageStageSuccess); ok {
		return message
	}
	return fmt.Sprintf(genericSuccessTemplateConstant, command.Label())
}

// BuildFailureMessage describes a command that exited non-zero.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	standardErrorSuffix := emptyStringConstant
	trimmedStandardError := strings.TrimSpace(result.StandardError)
	if len(trimmedStandardError) > 0 {
		standardErrorSuffix = fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
	}
	return fmt.Sprintf(genericFailureTemplateConstant, command.Label(), result.ExitCode, standardErrorSuffix)
}

// BuildExecutionFailureMessage describes a command that could not be started.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	failureText := unknownFailureMessageConstant
	if failure != nil {
		failureText = failure.Error()
	}
	return fmt.Sprintf(genericExecutionFailureTemplateConstant, command.Label(), failureText)
}

func (formatter CommandMessageFormatter) describeGit(command ShellCommand, stage messageStage) (string, bool) {
	if command.Name != CommandGit {
		return emptyStringConstant, false
	}
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return emptyStringConstant, false
	}
	directory := formatter.describeWorkingDirectory(command)
	remaining := arguments[1:]
	pick := func(startTemplate string, successTemplate string) string {
		if stage == messageStageStart {
			return startTemplate
		}
		return successTemplate
	}

	switch command.Subcommand() {
	case gitFetchSubcommandNameConstant:
		return fmt.Sprintf(pick(gitFetchStartTemplateConstant, gitFetchSuccessTemplateConstant), formatter.positional(remaining, 0), directory), true
	case gitRevParseSubcommandNameConstant:
		if containsArgument(remaining, gitVerifyFlagConstant) {
			return fmt.Sprintf(pick(gitVerifyStartTemplateConstant, gitVerifySuccessTemplateConstant), formatter.positional(remaining, 0), directory), true
		}
		return fmt.Sprintf(pick(gitHeadStartTemplateConstant, gitHeadSuccessTemplateConstant), directory), true
	case gitCheckoutSubcommandNameConstant:
		if containsArgument(remaining, gitBranchFlagConstant) {
			return fmt.Sprintf(pick(gitCreateBranchStartTemplateConstant, gitCreateBranchSuccessTemplateConstant), formatter.positional(remaining, 0), formatter.positional(remaining, 1), directory), true
		}
		return fmt.Sprintf(pick(gitCheckoutStartTemplateConstant, gitCheckoutSuccessTemplateConstant), directory, formatter.positional(remaining, 0)), true
	case gitStatusSubcommandNameConstant:
		return fmt.Sprintf(pick(gitStatusStartTemplateConstant, gitStatusSuccessTemplateConstant), directory), true
	case gitResetSubcommandNameConstant:
		return fmt.Sprintf(pick(gitResetStartTemplateConstant, gitResetSuccessTemplateConstant), directory, formatter.positional(remaining, 0)), true
	case gitPullSubcommandNameConstant:
		return fmt.Sprintf(pick(gitPullStartTemplateConstant, gitPullSuccessTemplateConstant), formatter.positional(remaining, 1), formatter.positional(remaining, 0), directory), true
	case gitAddSubcommandNameConstant:
		return fmt.Sprintf(pick(gitAddStartTemplateConstant, gitAddSuccessTemplateConstant), formatter.positional(remaining, 0), directory), true
	case gitCommitSubcommandNameConstant:
		return fmt.Sprintf(pick(gitCommitStartTemplateConstant, gitCommitSuccessTemplateConstant), directory, formatter.flagValue(remaining, gitMessageFlagConstant)), true
	case gitPushSubcommandNameConstant:
		return fmt.Sprintf(pick(gitPushStartTemplateConstant, gitPushSuccessTemplateConstant), formatter.positional(remaining, 1), formatter.positional(remaining, 0), directory), true
	default:
		return emptyStringConstant, false
	}
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

// positional returns the index-th argument that is neither a flag nor a flag value.
func (formatter CommandMessageFormatter) positional(arguments []string, index int) string {
	position := 0
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		trimmed := strings.TrimSpace(arguments[argumentIndex])
		if len(trimmed) == 0 {
			continue
		}
		if trimmed == gitMessageFlagConstant {
			argumentIndex++
			continue
		}
		if strings.HasPrefix(trimmed, "-") {
			continue
		}
		if position == index {
			return trimmed
		}
		position++
	}
	return fallbackUnknownValueLabelConstant
}

func (formatter CommandMessageFormatter) flagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return fallbackUnknownValueLabelConstant
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
