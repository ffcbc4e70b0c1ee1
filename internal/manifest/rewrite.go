package manifest

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

const (
	pinnedReferenceReplacementConstant = "${1}main${3}"
	pinDescriptionTemplateConstant     = "%s → main"
	semanticPinTemplateConstant        = "v%s"
	nonSemanticPinTemplateConstant     = "%s (not semver)"
)

var pinnedReferencePattern = regexp.MustCompile(`(https://github\.com/[^/]+/[^/]+/raw/)(v[\d.]+)(/.*)`)

// Rewrite describes a pipeline URL change.
type Rewrite struct {
	OldURL          string
	NewURL          string
	PreviousVersion string
	PreviousSemver  *semver.Version
}

// RewritePipelineURL replaces a "raw/v<digits.dots>/" segment with "raw/main/".
// The second result is false when the URL is unchanged.
func RewritePipelineURL(pipelineURL string) (Rewrite, bool) {
	updatedURL := pinnedReferencePattern.ReplaceAllString(pipelineURL, pinnedReferenceReplacementConstant)
	if updatedURL == pipelineURL {
		return Rewrite{OldURL: pipelineURL, NewURL: pipelineURL}, false
	}

	rewrite := Rewrite{OldURL: pipelineURL, NewURL: updatedURL}
	if submatches := pinnedReferencePattern.FindStringSubmatch(pipelineURL); len(submatches) > 2 {
		rewrite.PreviousVersion = submatches[2]
		if parsedVersion, parseError := semver.NewVersion(submatches[2]); parseError == nil {
			rewrite.PreviousSemver = parsedVersion
		}
	}
	return rewrite, true
}

// SemanticPin reports whether the replaced version parsed as semver.
func (rewrite Rewrite) SemanticPin() bool {
	return rewrite.PreviousSemver != nil
}

// PinnedVersion renders the replaced version, normalized when it is semver.
func (rewrite Rewrite) PinnedVersion() string {
	if rewrite.PreviousSemver != nil {
		return fmt.Sprintf(semanticPinTemplateConstant, rewrite.PreviousSemver.String())
	}
	return fmt.Sprintf(nonSemanticPinTemplateConstant, rewrite.PreviousVersion)
}

// Describe renders the change as "<pinned version> → main".
func (rewrite Rewrite) Describe() string {
	return fmt.Sprintf(pinDescriptionTemplateConstant, rewrite.PinnedVersion())
}
