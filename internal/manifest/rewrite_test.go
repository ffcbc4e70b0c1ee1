package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/hallmonitor/internal/manifest"
)

func TestRewritePipelineURL(testInstance *testing.T) {
	testCases := []struct {
		name            string
		input           string
		expectedURL     string
		expectedVersion string
		expectSemver    string
		expectDescribed string
		expectChanged   bool
	}{
		{
			name:            "pinned_semver",
			input:           "https://github.com/RedHatInsights/konflux-pipelines/raw/v1.32.0/pipelines/docker-build-oci-ta.yaml",
			expectedURL:     "https://github.com/RedHatInsights/konflux-pipelines/raw/main/pipelines/docker-build-oci-ta.yaml",
			expectedVersion: "v1.32.0",
			expectSemver:    "1.32.0",
			expectDescribed: "v1.32.0 → main",
			expectChanged:   true,
		},
		{
			name:            "four_part_version",
			input:           "https://github.com/org/repo/raw/v1.2.3.4/pipeline.yaml",
			expectedURL:     "https://github.com/org/repo/raw/main/pipeline.yaml",
			expectedVersion: "v1.2.3.4",
			expectDescribed: "v1.2.3.4 (not semver) → main",
			expectChanged:   true,
		},
		{
			name:            "short_version_normalized",
			input:           "https://github.com/org/repo/raw/v2.1/pipeline.yaml",
			expectedURL:     "https://github.com/org/repo/raw/main/pipeline.yaml",
			expectedVersion: "v2.1",
			expectSemver:    "2.1.0",
			expectDescribed: "v2.1.0 → main",
			expectChanged:   true,
		},
		{
			name:        "already_main",
			input:       "https://github.com/org/repo/raw/main/pipeline.yaml",
			expectedURL: "https://github.com/org/repo/raw/main/pipeline.yaml",
		},
		{
			name:        "branch_name_not_version",
			input:       "https://github.com/org/repo/raw/release-1/pipeline.yaml",
			expectedURL: "https://github.com/org/repo/raw/release-1/pipeline.yaml",
		},
		{
			name:        "other_host",
			input:       "https://gitlab.com/org/repo/raw/v1.0.0/pipeline.yaml",
			expectedURL: "https://gitlab.com/org/repo/raw/v1.0.0/pipeline.yaml",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			rewrite, changed := manifest.RewritePipelineURL(testCase.input)
			require.Equal(testInstance, testCase.expectChanged, changed)
			require.Equal(testInstance, testCase.input, rewrite.OldURL)
			require.Equal(testInstance, testCase.expectedURL, rewrite.NewURL)
			require.Equal(testInstance, testCase.expectedVersion, rewrite.PreviousVersion)
			if len(testCase.expectSemver) > 0 {
				require.NotNil(testInstance, rewrite.PreviousSemver)
				require.Equal(testInstance, testCase.expectSemver, rewrite.PreviousSemver.String())
			} else {
				require.Nil(testInstance, rewrite.PreviousSemver)
			}
			require.Equal(testInstance, len(testCase.expectSemver) > 0, rewrite.SemanticPin())
			if testCase.expectChanged {
				require.Equal(testInstance, testCase.expectDescribed, rewrite.Describe())
			}
		})
	}
}

func TestRewritePipelineURLIsIdempotent(testInstance *testing.T) {
	first, changed := manifest.RewritePipelineURL("https://github.com/org/repo/raw/v0.9/pipeline.yaml")
	require.True(testInstance, changed)
	second, changedAgain := manifest.RewritePipelineURL(first.NewURL)
	require.False(testInstance, changedAgain)
	require.Equal(testInstance, first.NewURL, second.NewURL)
}
