package services

import (
	"slices"
	"strings"
)

// DefaultRepositoryAliases lists services built from a repository named
// differently from the service.
var DefaultRepositoryAliases = map[string]string{
	"notifications-aggregator":          "notifications-backend",
	"notifications-connector-email":     "notifications-backend",
	"notifications-engine-sc":           "notifications-backend",
	"notifications-recipients-resolver": "notifications-backend",
}

// AliasResolver maps service names to git repository names.
type AliasResolver struct {
	aliases map[string]string
}

// NewAliasResolver copies the alias table. A nil table means no aliases.
func NewAliasResolver(aliases map[string]string) AliasResolver {
	copied := make(map[string]string, len(aliases))
	for service, repository := range aliases {
		copied[strings.TrimSpace(service)] = strings.TrimSpace(repository)
	}
	return AliasResolver{aliases: copied}
}

// Repository returns the repository for one service; unaliased services map to themselves.
func (resolver AliasResolver) Repository(service string) string {
	if repository, aliased := resolver.aliases[service]; aliased && len(repository) > 0 {
		return repository
	}
	return service
}

// Repositories resolves services and returns the distinct repository names sorted.
func (resolver AliasResolver) Repositories(serviceNames []string) []string {
	repositories := make([]string, 0, len(serviceNames))
	for _, service := range serviceNames {
		repositories = append(repositories, resolver.Repository(service))
	}
	slices.Sort(repositories)
	return slices.Compact(repositories)
}
