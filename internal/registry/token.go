package registry

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	credentialSeparatorConstant        = ":"
	credentialKindEnvironmentConstant  = "env"
	credentialKindFileConstant         = "file"
	environmentCredentialMissingFormat = "environment variable %s is not set"
	fileCredentialReadFormat           = "unable to read token file %s: %w"
	fileCredentialEmptyFormat          = "token file %s is empty"
	unsupportedCredentialKindFormat    = "unsupported token source type %q"
)

// ErrCredentialReferenceMissing indicates a token source without a variable name or path.
var ErrCredentialReferenceMissing = errors.New("token source reference must be provided")

// CredentialKind enumerates where a registry token is read from.
type CredentialKind string

// Credential kinds.
const (
	CredentialFromEnvironment CredentialKind = credentialKindEnvironmentConstant
	CredentialFromFile        CredentialKind = credentialKindFileConstant
)

// CredentialSource locates a registry bearer token.
type CredentialSource struct {
	Kind      CredentialKind
	Reference string
}

// ParseCredentialSource reads "env:NAME", "file:PATH" or a bare variable name.
// An empty declaration yields a zero source and no error.
func ParseCredentialSource(declaration string) (CredentialSource, error) {
	trimmed := strings.TrimSpace(declaration)
	if len(trimmed) == 0 {
		return CredentialSource{}, nil
	}
	kind, reference, qualified := strings.Cut(trimmed, credentialSeparatorConstant)
	if !qualified {
		return CredentialSource{Kind: CredentialFromEnvironment, Reference: trimmed}, nil
	}
	reference = strings.TrimSpace(reference)
	if len(reference) == 0 {
		return CredentialSource{}, ErrCredentialReferenceMissing
	}
	switch CredentialKind(strings.ToLower(strings.TrimSpace(kind))) {
	case CredentialFromEnvironment:
		return CredentialSource{Kind: CredentialFromEnvironment, Reference: reference}, nil
	case CredentialFromFile:
		return CredentialSource{Kind: CredentialFromFile, Reference: reference}, nil
	default:
		return CredentialSource{}, fmt.Errorf(unsupportedCredentialKindFormat, kind)
	}
}

// EnvironmentLookup obtains an environment variable value.
type EnvironmentLookup func(key string) (string, bool)

// FileReader reads the contents of a file path.
type FileReader func(path string) ([]byte, error)

// CredentialResolver reads tokens from their sources.
type CredentialResolver struct {
	environmentLookup EnvironmentLookup
	fileReader        FileReader
}

// NewCredentialResolver falls back to the process environment and os.ReadFile.
func NewCredentialResolver(environmentLookup EnvironmentLookup, fileReader FileReader) CredentialResolver {
	if environmentLookup == nil {
		environmentLookup = os.LookupEnv
	}
	if fileReader == nil {
		fileReader = os.ReadFile
	}
	return CredentialResolver{environmentLookup: environmentLookup, fileReader: fileReader}
}

// Resolve returns the trimmed token. A zero source resolves to an empty token.
func (resolver CredentialResolver) Resolve(source CredentialSource) (string, error) {
	switch source.Kind {
	case "":
		return "", nil
	case CredentialFromEnvironment:
		value, found := resolver.environmentLookup(source.Reference)
		value = strings.TrimSpace(value)
		if !found || len(value) == 0 {
			return "", fmt.Errorf(environmentCredentialMissingFormat, source.Reference)
		}
		return value, nil
	case CredentialFromFile:
		contents, readError := resolver.fileReader(source.Reference)
		if readError != nil {
			return "", fmt.Errorf(fileCredentialReadFormat, source.Reference, readError)
		}
		value := strings.TrimSpace(string(contents))
		if len(value) == 0 {
			return "", fmt.Errorf(fileCredentialEmptyFormat, source.Reference)
		}
		return value, nil
	default:
		return "", fmt.Errorf(unsupportedCredentialKindFormat, source.Kind)
	}
}
