package dependencies_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/hallmonitor/internal/execshell"
	"github.com/temirov/hallmonitor/internal/gitrepo"
	"github.com/temirov/hallmonitor/internal/gitrepo/gitrepotest"
	"github.com/temirov/hallmonitor/internal/repos/dependencies"
	"github.com/temirov/hallmonitor/internal/repos/filesystem"
	"github.com/temirov/hallmonitor/internal/repos/shared"
)

func TestResolveDefaults(testInstance *testing.T) {
	require.Equal(testInstance, filesystem.OSFileSystem{}, dependencies.ResolveFileSystem(nil))
	require.Equal(testInstance, shared.SystemClock{}, dependencies.ResolveClock(nil))

	executor, executorError := dependencies.ResolveGitExecutor(nil, zap.NewNop())
	require.NoError(testInstance, executorError)
	require.IsType(testInstance, &execshell.ShellExecutor{}, executor)

	client, clientError := dependencies.ResolveVersionControlClient(nil, executor)
	require.NoError(testInstance, clientError)
	require.IsType(testInstance, &gitrepo.CommandClient{}, client)
}

func TestResolveKeepsProvidedValues(testInstance *testing.T) {
	fixedClock := shared.FixedClock{Instant: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)}
	require.Equal(testInstance, fixedClock, dependencies.ResolveClock(fixedClock))

	fakeClient := gitrepotest.NewClient()
	client, clientError := dependencies.ResolveVersionControlClient(fakeClient, nil)
	require.NoError(testInstance, clientError)
	require.Same(testInstance, fakeClient, client)

	_, missingLoggerError := dependencies.ResolveGitExecutor(nil, nil)
	require.ErrorIs(testInstance, missingLoggerError, execshell.ErrLoggerNotConfigured)
}
