package registry_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/hallmonitor/internal/registry"
)

func TestParseCredentialSource(testInstance *testing.T) {
	testCases := []struct {
		name           string
		declaration    string
		expectedSource registry.CredentialSource
		expectedError  string
	}{
		{name: "empty", declaration: "  "},
		{name: "bare_variable", declaration: "QUAY_TOKEN", expectedSource: registry.CredentialSource{Kind: registry.CredentialFromEnvironment, Reference: "QUAY_TOKEN"}},
		{name: "environment", declaration: "env: QUAY_TOKEN", expectedSource: registry.CredentialSource{Kind: registry.CredentialFromEnvironment, Reference: "QUAY_TOKEN"}},
		{name: "file", declaration: "FILE:/run/secrets/quay", expectedSource: registry.CredentialSource{Kind: registry.CredentialFromFile, Reference: "/run/secrets/quay"}},
		{name: "missing_reference", declaration: "file:", expectedError: "token source reference must be provided"},
		{name: "unsupported", declaration: "vault:secret/quay", expectedError: `unsupported token source type "vault"`},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			source, parseError := registry.ParseCredentialSource(testCase.declaration)
			if len(testCase.expectedError) > 0 {
				require.EqualError(testInstance, parseError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedSource, source)
		})
	}
}

func TestCredentialResolver(testInstance *testing.T) {
	tokenPath := filepath.Join(testInstance.TempDir(), "token")
	require.NoError(testInstance, os.WriteFile(tokenPath, []byte("  file-secret\n"), 0o600))
	emptyPath := filepath.Join(testInstance.TempDir(), "empty")
	require.NoError(testInstance, os.WriteFile(emptyPath, []byte("\n"), 0o600))

	environment := map[string]string{"QUAY_TOKEN": " env-secret ", "BLANK": " "}
	resolver := registry.NewCredentialResolver(func(key string) (string, bool) {
		value, found := environment[key]
		return value, found
	}, nil)

	testCases := []struct {
		name          string
		source        registry.CredentialSource
		expectedToken string
		expectError   bool
	}{
		{name: "zero_source", source: registry.CredentialSource{}},
		{name: "environment", source: registry.CredentialSource{Kind: registry.CredentialFromEnvironment, Reference: "QUAY_TOKEN"}, expectedToken: "env-secret"},
		{name: "environment_missing", source: registry.CredentialSource{Kind: registry.CredentialFromEnvironment, Reference: "ABSENT"}, expectError: true},
		{name: "environment_blank", source: registry.CredentialSource{Kind: registry.CredentialFromEnvironment, Reference: "BLANK"}, expectError: true},
		{name: "file", source: registry.CredentialSource{Kind: registry.CredentialFromFile, Reference: tokenPath}, expectedToken: "file-secret"},
		{name: "file_empty", source: registry.CredentialSource{Kind: registry.CredentialFromFile, Reference: emptyPath}, expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			token, resolveError := resolver.Resolve(testCase.source)
			if testCase.expectError {
				require.Error(testInstance, resolveError)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedToken, token)
		})
	}
}

func TestCredentialResolverWrapsReadFailures(testInstance *testing.T) {
	readFailure := errors.New("permission denied")
	resolver := registry.NewCredentialResolver(nil, func(path string) ([]byte, error) {
		return nil, readFailure
	})
	_, resolveError := resolver.Resolve(registry.CredentialSource{Kind: registry.CredentialFromFile, Reference: "/secret"})
	require.ErrorIs(testInstance, resolveError, readFailure)
}
