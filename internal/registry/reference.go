package registry

import (
	"fmt"
	"strings"
)

const (
	pathSeparatorConstant           = "/"
	localhostSegmentConstant        = "localhost"
	referenceFormatTemplateConstant = "%s. Expected: namespace/repository"
)

// RepositoryReference identifies one registry repository.
type RepositoryReference struct {
	Host      string
	Namespace string
	Path      string
}

// ReferenceFormatError reports a reference that cannot be split into namespace and path.
type ReferenceFormatError struct {
	Value string
}

func (formatError ReferenceFormatError) Error() string {
	return fmt.Sprintf(referenceFormatTemplateConstant, formatError.Value)
}

// ParseRepositoryReference splits "[host/]namespace/path..." into its parts.
// The first segment is a host when it contains "." or ":" or is "localhost";
// otherwise defaultHost is used. The path keeps any further slashes.
func ParseRepositoryReference(value string, defaultHost string) (RepositoryReference, error) {
	trimmed := strings.Trim(strings.TrimSpace(value), pathSeparatorConstant)
	host := strings.TrimSpace(defaultHost)
	remainder := trimmed

	if first, rest, found := strings.Cut(trimmed, pathSeparatorConstant); found && isHostSegment(first) {
		host = first
		remainder = rest
	}

	namespace, path, found := strings.Cut(remainder, pathSeparatorConstant)
	if !found || len(namespace) == 0 || len(strings.Trim(path, pathSeparatorConstant)) == 0 {
		return RepositoryReference{}, ReferenceFormatError{Value: remainder}
	}

	return RepositoryReference{Host: host, Namespace: namespace, Path: path}, nil
}

// RepositoryPath returns "namespace/path".
func (reference RepositoryReference) RepositoryPath() string {
	return reference.Namespace + pathSeparatorConstant + reference.Path
}

// String returns the fully qualified "host/namespace/path".
func (reference RepositoryReference) String() string {
	if len(reference.Host) == 0 {
		return reference.RepositoryPath()
	}
	return reference.Host + pathSeparatorConstant + reference.RepositoryPath()
}

func isHostSegment(segment string) bool {
	return strings.ContainsAny(segment, ".:") || segment == localhostSegmentConstant
}
