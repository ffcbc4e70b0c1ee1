package cli

import (
	"github.com/spf13/cobra"

	flagutils "github.com/temirov/hallmonitor/internal/utils/flags"
)

const (
	servicesFlagNameConstant          = "services"
	servicesFlagUsageConstant         = "Restrict the check to these services (comma separated or repeated)."
	daysFlagNameConstant              = "days"
	daysFlagUsageConstant             = "Number of days to look back for sc- tags."
	outputStaleFlagNameConstant       = "output-stale"
	outputStaleFlagUsageConstant      = "Write stale service names to this file, one per line."
	reposConfigFlagNameConstant       = "repos-config"
	reposConfigFlagUsageConstant      = "Path to the service to registry mapping file."
	markdownFlagNameConstant          = "markdown"
	markdownFlagUsageConstant         = "Path to the markdown service reference table."
	referencesOutputFlagNameConstant  = "output"
	referencesOutputFlagUsageConstant = "Path of the JSON mapping file to write."
)

func registerStaleCheckFlags(command *cobra.Command) {
	command.Flags().StringSlice(servicesFlagNameConstant, nil, servicesFlagUsageConstant)
	command.Flags().Int(daysFlagNameConstant, 0, daysFlagUsageConstant)
	command.Flags().String(outputStaleFlagNameConstant, "", outputStaleFlagUsageConstant)
	command.Flags().String(reposConfigFlagNameConstant, "", reposConfigFlagUsageConstant)
}

func registerRemediationFlags(command *cobra.Command) {
	flagutils.BindRootFlags(command, flagutils.RootFlagValues{}, flagutils.RootFlagDefinition{Enabled: true})
	flagutils.BindBranchFlags(command, flagutils.BranchFlagValues{}, flagutils.BranchFlagDefinition{
		Name:    flagutils.BranchFlagName,
		Usage:   flagutils.BranchFlagUsage,
		Enabled: true,
	})
	flagutils.EnsureRemoteFlag(command, "", flagutils.RemoteFlagUsage)
	flagutils.BindExecutionFlags(command, flagutils.ExecutionDefaults{}, flagutils.ExecutionFlagDefinitions{
		DryRun: flagutils.ExecutionFlagDefinition{Name: flagutils.DryRunFlagName, Usage: flagutils.DryRunFlagUsage, Enabled: true},
	})
}

// applyStaleCheckFlags overrides configuration with explicitly set flags.
func applyStaleCheckFlags(command *cobra.Command, configuration *StaleCheckConfiguration) {
	overrideStringSlice(command, servicesFlagNameConstant, &configuration.Services)
	overrideInt(command, daysFlagNameConstant, &configuration.LookbackDays)
	overrideString(command, outputStaleFlagNameConstant, &configuration.OutputStale)
	overrideString(command, reposConfigFlagNameConstant, &configuration.ReposConfig)
}

// applyRemediationFlags overrides configuration with explicitly set flags.
func applyRemediationFlags(command *cobra.Command, configuration *RemediationConfiguration) {
	overrideString(command, flagutils.RepositoriesRootFlagName, &configuration.GitReposDir)
	overrideString(command, flagutils.BranchFlagName, &configuration.Branch)
	overrideString(command, flagutils.RemoteFlagName, &configuration.Remote)
	if executionFlags, bound := flagutils.ResolveExecutionFlags(command); bound && executionFlags.DryRunSet {
		configuration.DryRun = executionFlags.DryRun
	}
}

func overrideString(command *cobra.Command, flagName string, target *string) {
	if value, changed, flagError := flagutils.StringFlag(command, flagName); flagError == nil && changed {
		*target = value
	}
}

func overrideInt(command *cobra.Command, flagName string, target *int) {
	if value, changed, flagError := flagutils.IntFlag(command, flagName); flagError == nil && changed {
		*target = value
	}
}

func overrideStringSlice(command *cobra.Command, flagName string, target *[]string) {
	if value, changed, flagError := flagutils.StringSliceFlag(command, flagName); flagError == nil && changed {
		*target = value
	}
}
