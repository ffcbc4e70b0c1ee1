// Package manifest rewrites the pinned pipeline reference in Tekton
// PipelineRun manifests so that they follow the main branch.
//
// Only the pipelinesascode.tekton.dev/pipeline annotation is inspected. The
// rewrite is a literal substring replacement on the raw file text, so
// formatting and comments survive untouched.
package manifest
