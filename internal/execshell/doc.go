// Package execshell runs external tools on behalf of hallmonitor.
//
// ShellExecutor wraps a CommandRunner with structured logging and typed
// failures. OSCommandRunner is the os/exec backed runner used in production;
// tests substitute recording runners.
package execshell
