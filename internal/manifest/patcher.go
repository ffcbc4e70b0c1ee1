package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/hallmonitor/internal/repos/dependencies"
	"github.com/temirov/hallmonitor/internal/repos/shared"
)

const (
	// DefaultManifestDirectory is where pipeline manifests live inside a repository.
	DefaultManifestDirectory = ".tekton"

	alreadyMainReasonConstant     = "pipeline reference already uses main"
	logFieldManifestConstant      = "manifest"
	logFieldOldURLConstant        = "old_url"
	logFieldNewURLConstant        = "new_url"
	logFieldReasonConstant        = "reason"
	logFieldDryRunConstant        = "dry_run"
	logFieldPreviousVersion       = "previous_version"
	readManifestDirectoryTemplate = "reading manifest directory %s: %w"
	readManifestTemplateConstant  = "reading manifest %s: %w"
	writeManifestTemplateConstant = "writing manifest %s: %w"
	statManifestTemplateConstant  = "inspecting manifest %s: %w"
)

var candidatePatterns = []string{"*-sc*.yaml", "*-sc*.yml"}

// Change records one rewritten manifest.
type Change struct {
	RelativePath string
	Rewrite
}

// Skip records a candidate left alone and why.
type Skip struct {
	RelativePath string
	Reason       string
}

// Problem records a candidate that could not be processed.
type Problem struct {
	RelativePath string
	Err          error
}

// PatchResult summarizes one repository.
type PatchResult struct {
	ManifestDirectory string
	Candidates        []string
	Changes           []Change
	Skipped           []Skip
	Problems          []Problem
	DryRun            bool
}

// ModifiedFiles lists the repository relative paths that were (or, in a dry
// run, would be) rewritten.
func (result PatchResult) ModifiedFiles() []string {
	modified := make([]string, 0, len(result.Changes))
	for _, change := range result.Changes {
		modified = append(modified, change.RelativePath)
	}
	return modified
}

// Options configures the Patcher.
type Options struct {
	ManifestDirectory string
	DryRun            bool
	FileSystem        shared.FileSystem
}

// Patcher rewrites pinned pipeline references in candidate manifests.
type Patcher struct {
	logger            *zap.Logger
	fileSystem        shared.FileSystem
	manifestDirectory string
	dryRun            bool
}

// NewPatcher constructs a Patcher.
func NewPatcher(logger *zap.Logger, options Options) *Patcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	manifestDirectory := strings.TrimSpace(options.ManifestDirectory)
	if len(manifestDirectory) == 0 {
		manifestDirectory = DefaultManifestDirectory
	}
	return &Patcher{logger: logger, fileSystem: dependencies.ResolveFileSystem(options.FileSystem), manifestDirectory: manifestDirectory, dryRun: options.DryRun}
}

// PatchRepository processes every candidate manifest of the repository.
// Per-file failures are collected as Problems; the error is reserved for an
// unreadable manifest directory. A missing directory yields no candidates.
func (patcher *Patcher) PatchRepository(executionContext context.Context, repositoryPath string) (PatchResult, error) {
	result := PatchResult{ManifestDirectory: patcher.manifestDirectory, DryRun: patcher.dryRun}
	candidates, listError := patcher.findCandidates(repositoryPath)
	if listError != nil {
		return result, listError
	}
	result.Candidates = candidates

	for _, relativePath := range candidates {
		if contextError := executionContext.Err(); contextError != nil {
			return result, contextError
		}
		patcher.patchFile(repositoryPath, relativePath, &result)
	}
	return result, nil
}

func (patcher *Patcher) findCandidates(repositoryPath string) ([]string, error) {
	manifestRoot := filepath.Join(repositoryPath, patcher.manifestDirectory)
	entries, readError := patcher.fileSystem.ReadDir(manifestRoot)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf(readManifestDirectoryTemplate, manifestRoot, readError)
	}

	candidates := []string{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !isCandidateName(entry.Name()) {
			continue
		}
		candidates = append(candidates, filepath.Join(patcher.manifestDirectory, entry.Name()))
	}
	slices.Sort(candidates)
	return candidates, nil
}

func isCandidateName(fileName string) bool {
	for _, pattern := range candidatePatterns {
		if matched, _ := filepath.Match(pattern, fileName); matched {
			return true
		}
	}
	return false
}

func (patcher *Patcher) patchFile(repositoryPath string, relativePath string, result *PatchResult) {
	absolutePath := filepath.Join(repositoryPath, relativePath)
	logger := patcher.logger.With(zap.String(logFieldManifestConstant, absolutePath))

	content, readError := patcher.fileSystem.ReadFile(absolutePath)
	if readError != nil {
		result.Problems = append(result.Problems, Problem{RelativePath: relativePath, Err: fmt.Errorf(readManifestTemplateConstant, relativePath, readError)})
		return
	}

	reference, lookupError := lookupPipelineReference(relativePath, content)
	if lookupError != nil {
		logger.Warn("Manifest could not be parsed", zap.Error(lookupError))
		result.Problems = append(result.Problems, Problem{RelativePath: relativePath, Err: lookupError})
		return
	}
	if !reference.present() {
		logger.Debug("Manifest skipped", zap.String(logFieldReasonConstant, reference.absenceReason))
		result.Skipped = append(result.Skipped, Skip{RelativePath: relativePath, Reason: reference.absenceReason})
		return
	}

	rewrite, changed := RewritePipelineURL(reference.url)
	if !changed {
		logger.Debug("Manifest already up to date")
		result.Skipped = append(result.Skipped, Skip{RelativePath: relativePath, Reason: alreadyMainReasonConstant})
		return
	}

	if !patcher.dryRun {
		fileInfo, statError := patcher.fileSystem.Stat(absolutePath)
		if statError != nil {
			result.Problems = append(result.Problems, Problem{RelativePath: relativePath, Err: fmt.Errorf(statManifestTemplateConstant, relativePath, statError)})
			return
		}
		updatedContent := strings.ReplaceAll(string(content), rewrite.OldURL, rewrite.NewURL)
		if writeError := patcher.fileSystem.WriteFile(absolutePath, []byte(updatedContent), fileInfo.Mode().Perm()); writeError != nil {
			result.Problems = append(result.Problems, Problem{RelativePath: relativePath, Err: fmt.Errorf(writeManifestTemplateConstant, relativePath, writeError)})
			return
		}
	}

	if !rewrite.SemanticPin() {
		logger.Warn("Pinned pipeline version is not semver", zap.String(logFieldPreviousVersion, rewrite.PreviousVersion))
	}
	logger.Info("Rewrote pipeline reference",
		zap.String(logFieldOldURLConstant, rewrite.OldURL),
		zap.String(logFieldNewURLConstant, rewrite.NewURL),
		zap.String(logFieldPreviousVersion, rewrite.PinnedVersion()),
		zap.Bool(logFieldDryRunConstant, patcher.dryRun),
	)
	result.Changes = append(result.Changes, Change{RelativePath: relativePath, Rewrite: rewrite})
}
