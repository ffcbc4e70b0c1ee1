package shared

import (
	"context"
	"io/fs"
	"time"

	"github.com/temirov/hallmonitor/internal/execshell"
)

// Clock abstracts time acquisition for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time source.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	Instant time.Time
}

// Now returns the fixed instant.
func (clock FixedClock) Now() time.Time {
	return clock.Instant
}

// GitExecutor is the subset of shell execution used by git-backed services.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// FileSystem is the file access used by manifest patching.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadDir(path string) ([]fs.DirEntry, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, permissions fs.FileMode) error
}
