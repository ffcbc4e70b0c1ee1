// Package dependencies supplies production defaults for optional collaborators.
package dependencies

import (
	"go.uber.org/zap"

	"github.com/temirov/hallmonitor/internal/execshell"
	"github.com/temirov/hallmonitor/internal/gitrepo"
	"github.com/temirov/hallmonitor/internal/repos/filesystem"
	"github.com/temirov/hallmonitor/internal/repos/shared"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing shared.FileSystem) shared.FileSystem {
	if existing != nil {
		return existing
	}
	return filesystem.OSFileSystem{}
}

// ResolveClock returns the provided clock or the system clock.
func ResolveClock(existing shared.Clock) shared.Clock {
	if existing != nil {
		return existing
	}
	return shared.SystemClock{}
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveVersionControlClient returns the provided client or wraps the executor.
func ResolveVersionControlClient(existing gitrepo.VersionControlClient, executor shared.GitExecutor) (gitrepo.VersionControlClient, error) {
	if existing != nil {
		return existing, nil
	}
	return gitrepo.NewCommandClient(executor)
}
