// Package gitrepo exposes the git operations hallmonitor performs on local
// working copies.
//
// VersionControlClient is the capability interface consumed by branch
// reconciliation and remediation. CommandClient implements it by running the
// git binary through execshell with terminal prompts disabled.
package gitrepo
