// Package registry lists image tags from container registries.
//
// RepositoryReference parses "host/namespace/path" strings. TagSource is the
// read-only capability consumed by stale detection; QuayTagSource pages through
// the Quay REST API and OCITagSource uses the OCI distribution API through
// go-containerregistry.
package registry
