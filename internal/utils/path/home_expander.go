package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const homeShortcutConstant = "~"

// HomeDirectoryProvider resolves the current user's home directory.
type HomeDirectoryProvider func() (string, error)

// HomeExpander replaces a leading ~ with the user's home directory.
type HomeExpander struct {
	provider      HomeDirectoryProvider
	resolveOnce   sync.Once
	homeDirectory string
}

// NewHomeExpander uses os.UserHomeDir.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider uses the supplied provider, or os.UserHomeDir when nil.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{provider: provider}
}

// Expand resolves "~" and "~/..." paths. Other paths, including "~user",
// and every path when the home directory is unknown, are returned unchanged.
func (expander *HomeExpander) Expand(candidatePath string) string {
	trimmed := strings.TrimSpace(candidatePath)
	if expander == nil || !strings.HasPrefix(trimmed, homeShortcutConstant) {
		return candidatePath
	}
	remainder := strings.TrimPrefix(trimmed, homeShortcutConstant)
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != filepath.Separator {
		return candidatePath
	}

	expander.resolveOnce.Do(func() {
		if homeDirectory, resolveError := expander.provider(); resolveError == nil {
			expander.homeDirectory = homeDirectory
		}
	})
	if len(expander.homeDirectory) == 0 {
		return candidatePath
	}
	return filepath.Join(expander.homeDirectory, remainder)
}
