package cli_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"

	"github.com/temirov/hallmonitor/cmd/cli"
	"github.com/temirov/hallmonitor/internal/execshell"
	"github.com/temirov/hallmonitor/internal/repos/shared"
)

const (
	testCommitHashConstant     = "0123456789abcdef0123456789abcdef01234567"
	testPinnedManifestConstant = `apiVersion: tekton.dev/v1
kind: PipelineRun
metadata:
  annotations:
    pipelinesascode.tekton.dev/pipeline: https://github.com/RedHatInsights/konflux-pipelines/raw/v1.40.1/pipelines/docker-build.yaml
`
)

// scriptedGitExecutor answers git invocations as a repository with the
// automation branch present locally and upstream.
type scriptedGitExecutor struct {
	mutex    sync.Mutex
	commands map[string][]string
}

func (executor *scriptedGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	if executor.commands == nil {
		executor.commands = map[string][]string{}
	}
	repositoryName := filepath.Base(details.WorkingDirectory)
	executor.commands[repositoryName] = append(executor.commands[repositoryName], strings.Join(details.Arguments, " "))

	switch {
	case len(details.Arguments) > 0 && details.Arguments[0] == "status":
		return execshell.ExecutionResult{StandardOutput: "On branch security-compliance\nYour branch is up to date with 'upstream/security-compliance'.\n"}, nil
	case strings.Join(details.Arguments, " ") == "rev-parse HEAD":
		return execshell.ExecutionResult{StandardOutput: testCommitHashConstant + "\n"}, nil
	default:
		return execshell.ExecutionResult{}, nil
	}
}

func (executor *scriptedGitExecutor) commandsFor(repositoryName string) []string {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()
	return append([]string(nil), executor.commands[repositoryName]...)
}

func TestRunCommandUpdatesStaleRepositories(testInstance *testing.T) {
	directory := testInstance.TempDir()
	repositoriesRoot := filepath.Join(directory, "repos")
	for _, repositoryName := range []string{"notifications-backend", "rbac"} {
		repositoryPath := filepath.Join(repositoriesRoot, repositoryName)
		_, initError := git.PlainInit(repositoryPath, false)
		require.NoError(testInstance, initError)
		require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryPath, ".tekton"), 0o755))
		require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, ".tekton", repositoryName+"-sc-push.yaml"), []byte(testPinnedManifestConstant), 0o644))
	}

	server := newQuayServer(testInstance, map[string]string{
		"cloudservices/notifications-engine":     `{"name":"sc-20240101-aaaaaa"}`,
		"cloudservices/notifications-aggregator": `{"name":"sc-20240102-bbbbbb"}`,
		"cloudservices/rbac":                     `{"name":"sc-20240310-cccccc"}`,
	})
	mappingPath := writeFile(testInstance, directory, testMappingFileNameConstant, `{
  "notifications-engine-sc": "quay.io/cloudservices/notifications-engine",
  "notifications-aggregator": "quay.io/cloudservices/notifications-aggregator",
  "rbac": "quay.io/cloudservices/rbac"
}`)
	configurationPath := writeFile(testInstance, directory, testConfigurationFileNameConstant, fmt.Sprintf(
		"registry:\n  base_url: %s\n  concurrency: 2\nstale_check:\n  repos_config: %s\nremediation:\n  git_repos_dir: %s\n",
		server.URL, mappingPath, repositoriesRoot))

	executor := &scriptedGitExecutor{}
	application := cli.NewApplicationWithDependencies(cli.ApplicationDependencies{
		GitExecutor: executor,
		Clock:       shared.FixedClock{Instant: time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)},
	})
	output := &bytes.Buffer{}
	application.SetOutput(output)
	application.SetLogOutput(&bytes.Buffer{})
	application.SetArguments([]string{"run", "--config", configurationPath})
	require.NoError(testInstance, application.Execute())

	rendered := output.String()
	require.Contains(testInstance, rendered, "SUMMARY: 1 updated, 2 not updated, 0 errors")
	require.Contains(testInstance, rendered, "Note: 2 stale service(s) map to 1 repositories")
	require.Contains(testInstance, rendered, "  notifications-backend: "+testCommitHashConstant)
	require.Contains(testInstance, rendered, "Summary: 1 updated, 0 no changes, 0 failed, 1 total")

	require.Equal(testInstance, []string{
		"fetch upstream",
		"rev-parse --verify --quiet security-compliance",
		"rev-parse --verify --quiet upstream/security-compliance",
		"checkout security-compliance",
		"status",
		"pull upstream security-compliance",
		"add .tekton/notifications-backend-sc-push.yaml",
		"commit -m Update Tekton SC pipeline URLs to use main branch",
		"rev-parse HEAD",
		"push upstream security-compliance",
	}, executor.commandsFor("notifications-backend"))
	require.Empty(testInstance, executor.commandsFor("rbac"))

	content, readError := os.ReadFile(filepath.Join(repositoriesRoot, "notifications-backend", ".tekton", "notifications-backend-sc-push.yaml"))
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(content), "/raw/main/pipelines/docker-build.yaml")
}
