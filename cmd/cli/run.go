package cli

import (
	"github.com/spf13/cobra"

	"github.com/temirov/hallmonitor/internal/coordinator"
	"github.com/temirov/hallmonitor/internal/repos/shared"
	flagutils "github.com/temirov/hallmonitor/internal/utils/flags"
	pathutils "github.com/temirov/hallmonitor/internal/utils/path"
)

const (
	runCommandUseConstant              = "run"
	runCommandShortDescriptionConstant = "Check the registry and update repositories of stale services"
	runCommandLongDescriptionConstant  = "run performs the stale check, maps stale services to git repositories and updates their Tekton SC pipeline references. Use --check-only to stop after the report."
)

// RunCommandBuilder assembles the run command.
type RunCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	GitExecutor           shared.GitExecutor
	Clock                 shared.Clock
}

// Build constructs the run command.
func (builder *RunCommandBuilder) Build() *cobra.Command {
	command := &cobra.Command{
		Use:   runCommandUseConstant,
		Short: runCommandShortDescriptionConstant,
		Long:  runCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	registerStaleCheckFlags(command)
	registerRemediationFlags(command)
	flagutils.BindExecutionFlags(command, flagutils.ExecutionDefaults{}, flagutils.ExecutionFlagDefinitions{
		CheckOnly: flagutils.ExecutionFlagDefinition{Name: flagutils.CheckOnlyFlagName, Usage: flagutils.CheckOnlyFlagUsage, Enabled: true},
	})
	return command
}

func (builder *RunCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.ConfigurationProvider()
	applyStaleCheckFlags(command, &configuration.StaleCheck)
	applyRemediationFlags(command, &configuration.Remediation)
	configuration = configuration.expandPaths(pathutils.NewHomeExpander())
	executionFlags, _ := flagutils.ResolveExecutionFlags(command)
	checkOnly := executionFlags.CheckOnly

	if validationError := configuration.Registry.validate(); validationError != nil {
		return validationError
	}
	if validationError := configuration.StaleCheck.validate(); validationError != nil {
		return validationError
	}
	if !checkOnly {
		if validationError := configuration.Remediation.validate(); validationError != nil {
			return validationError
		}
	}
	mapping, mappingError := configuration.StaleCheck.loadMapping()
	if mappingError != nil {
		return mappingError
	}

	factory := componentFactory{logger: builder.LoggerProvider(), output: command.OutOrStdout(), clock: builder.Clock, gitExecutor: builder.GitExecutor}
	detector, detectorError := factory.detector(configuration.Registry)
	if detectorError != nil {
		return detectorError
	}

	var updater coordinator.RepositoryUpdater
	if !checkOnly {
		orchestrator, orchestratorError := factory.orchestrator(configuration.Remediation)
		if orchestratorError != nil {
			return orchestratorError
		}
		updater = orchestrator
	}

	runCoordinator, coordinatorError := factory.coordinator(detector, updater, configuration.Remediation.RepositoryAliases)
	if coordinatorError != nil {
		return coordinatorError
	}

	_, runError := runCoordinator.Run(command.Context(), mapping, coordinator.Options{
		LookbackDays:    configuration.StaleCheck.LookbackDays,
		Services:        configuration.StaleCheck.selectedServices(),
		StaleOutputPath: configuration.StaleCheck.OutputStale,
		CheckOnly:       checkOnly,
	})
	return runError
}
