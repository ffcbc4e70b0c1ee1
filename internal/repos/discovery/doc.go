// Package discovery locates git working copies under the repositories root.
package discovery
