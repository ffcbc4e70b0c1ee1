package discovery_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"

	"github.com/temirov/hallmonitor/internal/repos/discovery"
)

func initializeRepository(testInstance *testing.T, path string) {
	testInstance.Helper()
	_, initError := git.PlainInit(path, false)
	require.NoError(testInstance, initError)
}

func TestScanChildrenFindsImmediateWorkingCopies(testInstance *testing.T) {
	root := testInstance.TempDir()
	initializeRepository(testInstance, filepath.Join(root, "rbac"))
	initializeRepository(testInstance, filepath.Join(root, "export-service"))
	initializeRepository(testInstance, filepath.Join(root, "group", "nested"))
	require.NoError(testInstance, os.MkdirAll(filepath.Join(root, "plain"), 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))

	discoverer := discovery.NewWorkingCopyDiscoverer()
	repositories, scanError := discoverer.ScanChildren(root)
	require.NoError(testInstance, scanError)
	require.Equal(testInstance, []string{filepath.Join(root, "export-service"), filepath.Join(root, "rbac")}, repositories)
}

func TestLocate(testInstance *testing.T) {
	root := testInstance.TempDir()
	initializeRepository(testInstance, filepath.Join(root, "rbac"))
	require.NoError(testInstance, os.MkdirAll(filepath.Join(root, "plain"), 0o755))

	discoverer := discovery.NewWorkingCopyDiscoverer()

	path, found := discoverer.Locate(root, "rbac")
	require.True(testInstance, found)
	require.Equal(testInstance, filepath.Join(root, "rbac"), path)

	_, plainFound := discoverer.Locate(root, "plain")
	require.False(testInstance, plainFound)

	_, missingFound := discoverer.Locate(root, "absent")
	require.False(testInstance, missingFound)
}

func TestScanChildrenRejectsMissingRoot(testInstance *testing.T) {
	discoverer := discovery.NewWorkingCopyDiscoverer()
	_, scanError := discoverer.ScanChildren(filepath.Join(testInstance.TempDir(), "absent"))
	require.ErrorIs(testInstance, scanError, discovery.ErrRootNotDirectory)
	require.ErrorIs(testInstance, discoverer.EnsureRoot(filepath.Join(testInstance.TempDir(), "absent")), discovery.ErrRootNotDirectory)
}
