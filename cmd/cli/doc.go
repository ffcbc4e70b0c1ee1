// Package cli constructs the hallmonitor command-line interface, wiring the
// Cobra command hierarchy, the Viper backed configuration loader and zap
// logging to the stale check and repository update services.
package cli
