package manifest_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/hallmonitor/internal/manifest"
	"github.com/temirov/hallmonitor/internal/repos/filesystem"
)

const (
	pinnedManifestConstant = `apiVersion: tekton.dev/v1
kind: PipelineRun
metadata:
  name: rbac-sc-push
  annotations:
    # pinned by release tooling
    pipelinesascode.tekton.dev/pipeline: "https://github.com/RedHatInsights/konflux-pipelines/raw/v1.32.0/pipelines/docker-build-oci-ta.yaml"
    pipelinesascode.tekton.dev/on-cel-expression: event == "push"
spec:
  params:
    - name: git-url
`
	mainManifestConstant = `apiVersion: tekton.dev/v1
kind: PipelineRun
metadata:
  annotations:
    pipelinesascode.tekton.dev/pipeline: https://github.com/RedHatInsights/konflux-pipelines/raw/main/pipelines/docker-build-oci-ta.yaml
`
	noAnnotationManifestConstant = "apiVersion: tekton.dev/v1\nkind: PipelineRun\nmetadata:\n  name: plain\n"
	noMetadataManifestConstant   = "apiVersion: tekton.dev/v1\nkind: PipelineRun\n"
	brokenManifestConstant       = "metadata: [unterminated\n"
)

func writeManifest(testInstance *testing.T, repositoryPath string, name string, content string, mode os.FileMode) string {
	testInstance.Helper()
	directory := filepath.Join(repositoryPath, ".tekton")
	require.NoError(testInstance, os.MkdirAll(directory, 0o755))
	filePath := filepath.Join(directory, name)
	require.NoError(testInstance, os.WriteFile(filePath, []byte(content), mode))
	return filePath
}

func TestPatcherRewritesCandidates(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	pinnedPath := writeManifest(testInstance, repositoryPath, "rbac-sc-push.yaml", pinnedManifestConstant, 0o640)
	writeManifest(testInstance, repositoryPath, "rbac-sc-pull-request.yml", mainManifestConstant, 0o644)
	writeManifest(testInstance, repositoryPath, "rbac-sc-plain.yaml", noAnnotationManifestConstant, 0o644)
	writeManifest(testInstance, repositoryPath, "rbac-sc-bare.yaml", noMetadataManifestConstant, 0o644)
	writeManifest(testInstance, repositoryPath, "rbac-sc-broken.yaml", brokenManifestConstant, 0o644)
	writeManifest(testInstance, repositoryPath, "rbac-push.yaml", pinnedManifestConstant, 0o644)
	writeManifest(testInstance, repositoryPath, "rbac-sc-notes.txt", pinnedManifestConstant, 0o644)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryPath, ".tekton", "nested-sc.yaml"), 0o755))

	patcher := manifest.NewPatcher(zap.NewNop(), manifest.Options{})
	result, patchError := patcher.PatchRepository(context.Background(), repositoryPath)
	require.NoError(testInstance, patchError)

	require.Equal(testInstance, []string{
		filepath.Join(".tekton", "rbac-sc-bare.yaml"),
		filepath.Join(".tekton", "rbac-sc-broken.yaml"),
		filepath.Join(".tekton", "rbac-sc-plain.yaml"),
		filepath.Join(".tekton", "rbac-sc-pull-request.yml"),
		filepath.Join(".tekton", "rbac-sc-push.yaml"),
	}, result.Candidates)
	require.Equal(testInstance, []string{filepath.Join(".tekton", "rbac-sc-push.yaml")}, result.ModifiedFiles())
	require.Equal(testInstance, "v1.32.0", result.Changes[0].PreviousVersion)

	require.Len(testInstance, result.Problems, 1)
	require.Equal(testInstance, filepath.Join(".tekton", "rbac-sc-broken.yaml"), result.Problems[0].RelativePath)
	var parseError manifest.ParseError
	require.ErrorAs(testInstance, result.Problems[0].Err, &parseError)

	require.Len(testInstance, result.Skipped, 3)

	updatedContent, readError := os.ReadFile(pinnedPath)
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(updatedContent), "raw/main/pipelines/docker-build-oci-ta.yaml")
	require.Contains(testInstance, string(updatedContent), "# pinned by release tooling")
	require.Contains(testInstance, string(updatedContent), `event == "push"`)
	require.Equal(testInstance, len(pinnedManifestConstant)-len("v1.32.0")+len("main"), len(updatedContent))

	fileInfo, statError := os.Stat(pinnedPath)
	require.NoError(testInstance, statError)
	require.Equal(testInstance, os.FileMode(0o640), fileInfo.Mode().Perm())

	secondResult, secondError := patcher.PatchRepository(context.Background(), repositoryPath)
	require.NoError(testInstance, secondError)
	require.Empty(testInstance, secondResult.ModifiedFiles())
}

func TestPatcherSkipsManifestsWithoutAnnotationMap(testInstance *testing.T) {
	testCases := []struct {
		name           string
		content        string
		expectedReason string
	}{
		{name: "annotations_list", content: "metadata:\n  annotations:\n    - pipelinesascode.tekton.dev/pipeline\n", expectedReason: "annotations is not a map"},
		{name: "top_level_list", content: "- kind: PipelineRun\n- kind: Pipeline\n", expectedReason: "document is not a map"},
		{name: "scalar_metadata", content: "metadata: plain\n", expectedReason: "metadata is not a map"},
		{name: "null_annotations", content: "metadata:\n  annotations:\n", expectedReason: "no pipeline annotation found"},
		{name: "empty_document", content: "", expectedReason: "no metadata found"},
		{name: "non_string_annotation", content: "metadata:\n  annotations:\n    pipelinesascode.tekton.dev/pipeline:\n      url: x\n", expectedReason: "pipeline annotation is not a string"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repositoryPath := testInstance.TempDir()
			writeManifest(testInstance, repositoryPath, "svc-sc-push.yaml", testCase.content, 0o644)

			result, patchError := manifest.NewPatcher(zap.NewNop(), manifest.Options{}).PatchRepository(context.Background(), repositoryPath)
			require.NoError(testInstance, patchError)
			require.Empty(testInstance, result.Problems)
			require.Empty(testInstance, result.ModifiedFiles())
			require.Equal(testInstance, []manifest.Skip{{RelativePath: filepath.Join(".tekton", "svc-sc-push.yaml"), Reason: testCase.expectedReason}}, result.Skipped)
		})
	}
}

func TestPatcherLogsPinnedVersion(testInstance *testing.T) {
	testCases := []struct {
		name            string
		pinnedVersion   string
		expectedVersion string
		expectWarning   bool
	}{
		{name: "semver_pin", pinnedVersion: "v1.32", expectedVersion: "v1.32.0"},
		{name: "non_semver_pin", pinnedVersion: "v1.2.3.4", expectedVersion: "v1.2.3.4 (not semver)", expectWarning: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			repositoryPath := testInstance.TempDir()
			content := "metadata:\n  annotations:\n    pipelinesascode.tekton.dev/pipeline: https://github.com/org/pipelines/raw/" + testCase.pinnedVersion + "/build.yaml\n"
			writeManifest(testInstance, repositoryPath, "svc-sc-push.yaml", content, 0o644)
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)

			result, patchError := manifest.NewPatcher(zap.New(observerCore), manifest.Options{DryRun: true}).PatchRepository(context.Background(), repositoryPath)
			require.NoError(testInstance, patchError)
			require.Len(testInstance, result.Changes, 1)

			rewritten := observedLogs.FilterMessage("Rewrote pipeline reference").All()
			require.Len(testInstance, rewritten, 1)
			require.Equal(testInstance, testCase.expectedVersion, rewritten[0].ContextMap()["previous_version"])
			require.Equal(testInstance, testCase.expectWarning, observedLogs.FilterMessage("Pinned pipeline version is not semver").Len() == 1)
		})
	}
}

func TestPatcherDryRunLeavesFilesUntouched(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	pinnedPath := writeManifest(testInstance, repositoryPath, "svc-sc-push.yaml", pinnedManifestConstant, 0o644)

	result, patchError := manifest.NewPatcher(zap.NewNop(), manifest.Options{DryRun: true}).PatchRepository(context.Background(), repositoryPath)
	require.NoError(testInstance, patchError)
	require.True(testInstance, result.DryRun)
	require.Equal(testInstance, []string{filepath.Join(".tekton", "svc-sc-push.yaml")}, result.ModifiedFiles())

	content, readError := os.ReadFile(pinnedPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, pinnedManifestConstant, string(content))
}

func TestPatcherWithoutManifestDirectory(testInstance *testing.T) {
	result, patchError := manifest.NewPatcher(nil, manifest.Options{}).PatchRepository(context.Background(), testInstance.TempDir())
	require.NoError(testInstance, patchError)
	require.Empty(testInstance, result.Candidates)
	require.Empty(testInstance, result.ModifiedFiles())
}

func TestPatcherCustomManifestDirectory(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	directory := filepath.Join(repositoryPath, "pipelines")
	require.NoError(testInstance, os.MkdirAll(directory, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(directory, "app-sc.yaml"), []byte(pinnedManifestConstant), 0o644))

	result, patchError := manifest.NewPatcher(zap.NewNop(), manifest.Options{ManifestDirectory: "pipelines"}).PatchRepository(context.Background(), repositoryPath)
	require.NoError(testInstance, patchError)
	require.Equal(testInstance, []string{filepath.Join("pipelines", "app-sc.yaml")}, result.ModifiedFiles())
}

type failingWriteFileSystem struct {
	filesystem.OSFileSystem
	writes []string
}

func (fileSystem *failingWriteFileSystem) WriteFile(path string, data []byte, permissions os.FileMode) error {
	fileSystem.writes = append(fileSystem.writes, path)
	return errors.New("read-only file system")
}

func TestPatcherRecordsWriteFailures(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	pinnedPath := writeManifest(testInstance, repositoryPath, "rbac-sc-push.yaml", pinnedManifestConstant, 0o644)
	fileSystem := &failingWriteFileSystem{}

	patcher := manifest.NewPatcher(zap.NewNop(), manifest.Options{FileSystem: fileSystem})
	result, patchError := patcher.PatchRepository(context.Background(), repositoryPath)
	require.NoError(testInstance, patchError)
	require.Empty(testInstance, result.Changes)
	require.Len(testInstance, result.Problems, 1)
	require.ErrorContains(testInstance, result.Problems[0].Err, "read-only file system")
	require.Equal(testInstance, []string{pinnedPath}, fileSystem.writes)

	content, readError := os.ReadFile(pinnedPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, pinnedManifestConstant, string(content))
}
