package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"
)

// ErrRootNotDirectory indicates the repositories root is missing or not a directory.
var ErrRootNotDirectory = errors.New("repositories root is not a directory")

// WorkingCopyDiscoverer finds git working copies directly beneath a root.
type WorkingCopyDiscoverer struct{}

// NewWorkingCopyDiscoverer constructs a discoverer backed by go-git.
func NewWorkingCopyDiscoverer() *WorkingCopyDiscoverer {
	return &WorkingCopyDiscoverer{}
}

// IsWorkingCopy reports whether path opens as a git repository. Parent
// directories are not searched.
func (discoverer *WorkingCopyDiscoverer) IsWorkingCopy(path string) bool {
	info, statError := os.Stat(path)
	if statError != nil || !info.IsDir() {
		return false
	}
	_, openError := git.PlainOpen(path)
	return openError == nil
}

// ScanChildren returns the immediate subdirectories of root that are working
// copies, sorted by path.
func (discoverer *WorkingCopyDiscoverer) ScanChildren(root string) ([]string, error) {
	if err := ensureDirectory(root); err != nil {
		return nil, err
	}
	entries, readError := os.ReadDir(root)
	if readError != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, readError)
	}

	repositories := []string{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(root, entry.Name())
		if discoverer.IsWorkingCopy(candidate) {
			repositories = append(repositories, candidate)
		}
	}
	sort.Strings(repositories)
	return repositories, nil
}

// Locate resolves a repository name under root and reports whether it is a working copy.
func (discoverer *WorkingCopyDiscoverer) Locate(root string, repositoryName string) (string, bool) {
	candidate := filepath.Join(root, repositoryName)
	return candidate, discoverer.IsWorkingCopy(candidate)
}

// EnsureRoot validates that root exists and is a directory.
func (discoverer *WorkingCopyDiscoverer) EnsureRoot(root string) error {
	return ensureDirectory(root)
}

func ensureDirectory(root string) error {
	info, statError := os.Stat(root)
	if statError != nil {
		return fmt.Errorf("%w: %s: %v", ErrRootNotDirectory, root, statError)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootNotDirectory, root)
	}
	return nil
}
