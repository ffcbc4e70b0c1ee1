// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Show what would change without modifying files or pushing"
	// CheckOnlyFlagName exposes the shared check-only flag name.
	CheckOnlyFlagName = "check-only"
	// CheckOnlyFlagUsage describes the shared check-only flag purpose.
	CheckOnlyFlagUsage = "Only run the stale check; do not update repositories"
)

// ExecutionDefaults describes default flag values shared across commands.
type ExecutionDefaults struct {
	DryRun    bool
	CheckOnly bool
}

// ExecutionFlagDefinition captures a single flag's configuration.
type ExecutionFlagDefinition struct {
	Name      string
	Usage     string
	Shorthand string
	Enabled   bool
}

// ExecutionFlagDefinitions groups execution flag definitions.
type ExecutionFlagDefinitions struct {
	DryRun    ExecutionFlagDefinition
	CheckOnly ExecutionFlagDefinition
}

// ExecutionFlags reports execution flag values and whether each was set on the command line.
type ExecutionFlags struct {
	DryRun       bool
	DryRunSet    bool
	CheckOnly    bool
	CheckOnlySet bool
}

// BindExecutionFlags attaches standardized execution flags to the provided command using persistent scope.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults, definitions ExecutionFlagDefinitions) {
	if command == nil {
		return
	}

	persistentFlagSet := command.PersistentFlags()

	bindBoolFlag(persistentFlagSet, definitions.DryRun, defaults.DryRun)
	bindBoolFlag(persistentFlagSet, definitions.CheckOnly, defaults.CheckOnly)
}

// ResolveExecutionFlags reads the execution flags bound to command. The second
// result is false when neither flag is bound.
func ResolveExecutionFlags(command *cobra.Command) (ExecutionFlags, bool) {
	resolved := ExecutionFlags{}
	dryRun, dryRunSet, dryRunError := BoolFlag(command, DryRunFlagName)
	checkOnly, checkOnlySet, checkOnlyError := BoolFlag(command, CheckOnlyFlagName)
	if dryRunError != nil && checkOnlyError != nil {
		return resolved, false
	}
	if dryRunError == nil {
		resolved.DryRun, resolved.DryRunSet = dryRun, dryRunSet
	}
	if checkOnlyError == nil {
		resolved.CheckOnly, resolved.CheckOnlySet = checkOnly, checkOnlySet
	}
	return resolved, true
}

func bindBoolFlag(flagSet *pflag.FlagSet, definition ExecutionFlagDefinition, defaultValue bool) {
	if flagSet == nil {
		return
	}
	if !definition.Enabled {
		return
	}
	if len(definition.Name) == 0 {
		return
	}
	if flagSet.Lookup(definition.Name) != nil {
		return
	}

	if len(definition.Shorthand) > 0 {
		flagSet.BoolP(definition.Name, definition.Shorthand, defaultValue, definition.Usage)
		return
	}

	flagSet.Bool(definition.Name, defaultValue, definition.Usage)
}
