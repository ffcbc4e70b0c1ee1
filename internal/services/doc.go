// Package services loads the ordered service to registry mapping and resolves
// service names to the git repositories that build them.
package services
