package references_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/hallmonitor/internal/references"
	"github.com/temirov/hallmonitor/internal/services"
)

const sampleMarkdownConstant = `# Konflux service references

Generated listing of services.

## Services

| Service | Image | Pipeline |
|---------|-------|----------|
| rbac | [quay.io](https://quay.io/repository/redhat-services-prod/hcc-tenant/rbac/rbac) | push |
| sources-api | [quay.io](https://quay.io/repository/redhat-services-prod/hcc-tenant/sources/sources-api) | push |
| no-image | n/a | push |
|  | [quay.io](https://quay.io/repository/org/orphan) | push |
| export-service | [docs](https://example.com) | push |
`

func TestExtractQuayReference(testInstance *testing.T) {
	testCases := []struct {
		name              string
		cell              string
		expectedReference string
		expectedFound     bool
	}{
		{name: "link", cell: "[quay.io](https://quay.io/repository/org/team/app)", expectedReference: "quay.io/org/team/app", expectedFound: true},
		{name: "surrounding_text", cell: "image: [quay.io](https://quay.io/repository/org/app) (prod)", expectedReference: "quay.io/org/app", expectedFound: true},
		{name: "other_host", cell: "[ghcr.io](https://ghcr.io/org/app)"},
		{name: "plain_text", cell: "quay.io/org/app"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			reference, found := references.ExtractQuayReference(testCase.cell)
			require.Equal(testInstance, testCase.expectedFound, found)
			require.Equal(testInstance, testCase.expectedReference, reference)
		})
	}
}

func TestParseMarkdownTable(testInstance *testing.T) {
	mapping, parseError := references.ParseMarkdownTable(strings.NewReader(sampleMarkdownConstant))
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, map[string]string{
		"rbac":        "quay.io/redhat-services-prod/hcc-tenant/rbac/rbac",
		"sources-api": "quay.io/redhat-services-prod/hcc-tenant/sources/sources-api",
	}, mapping)
}

func TestConvertFileWritesSortedMapping(testInstance *testing.T) {
	directory := testInstance.TempDir()
	markdownPath := filepath.Join(directory, "references.md")
	outputPath := filepath.Join(directory, "repos.json")
	require.NoError(testInstance, os.WriteFile(markdownPath, []byte(sampleMarkdownConstant), 0o644))

	result, convertError := references.ConvertFile(markdownPath, outputPath)
	require.NoError(testInstance, convertError)
	require.Equal(testInstance, []string{"rbac", "sources-api"}, result.SortedServices())

	content, readError := os.ReadFile(outputPath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, `{
  "rbac": "quay.io/redhat-services-prod/hcc-tenant/rbac/rbac",
  "sources-api": "quay.io/redhat-services-prod/hcc-tenant/sources/sources-api"
}
`, string(content))

	mapping, loadError := services.LoadMapping(outputPath)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, 2, mapping.Len())
}

func TestConvertFileErrors(testInstance *testing.T) {
	_, emptyPathError := references.ConvertFile(" ", "out.json")
	require.ErrorIs(testInstance, emptyPathError, references.ErrMarkdownPathRequired)

	_, missingError := references.ConvertFile(filepath.Join(testInstance.TempDir(), "missing.md"), "out.json")
	require.ErrorIs(testInstance, missingError, os.ErrNotExist)
}
