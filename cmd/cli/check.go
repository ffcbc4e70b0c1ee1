package cli

import (
	"github.com/spf13/cobra"

	"github.com/temirov/hallmonitor/internal/coordinator"
	"github.com/temirov/hallmonitor/internal/repos/shared"
	pathutils "github.com/temirov/hallmonitor/internal/utils/path"
)

const (
	checkCommandUseConstant              = "check"
	checkCommandShortDescriptionConstant = "Report services without recent sc- image tags"
	checkCommandLongDescriptionConstant  = "check queries the registry for every service in the mapping file and reports which services have, and have not, published an sc-<date>-<sha> tag within the lookback window."
)

// CheckCommandBuilder assembles the check command.
type CheckCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Clock                 shared.Clock
}

// Build constructs the check command.
func (builder *CheckCommandBuilder) Build() *cobra.Command {
	command := &cobra.Command{
		Use:   checkCommandUseConstant,
		Short: checkCommandShortDescriptionConstant,
		Long:  checkCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	registerStaleCheckFlags(command)
	return command
}

func (builder *CheckCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.ConfigurationProvider()
	applyStaleCheckFlags(command, &configuration.StaleCheck)
	configuration = configuration.expandPaths(pathutils.NewHomeExpander())

	if validationError := configuration.Registry.validate(); validationError != nil {
		return validationError
	}
	if validationError := configuration.StaleCheck.validate(); validationError != nil {
		return validationError
	}
	mapping, mappingError := configuration.StaleCheck.loadMapping()
	if mappingError != nil {
		return mappingError
	}

	factory := componentFactory{logger: builder.LoggerProvider(), output: command.OutOrStdout(), clock: builder.Clock}
	detector, detectorError := factory.detector(configuration.Registry)
	if detectorError != nil {
		return detectorError
	}
	checkCoordinator, coordinatorError := factory.coordinator(detector, nil, configuration.Remediation.RepositoryAliases)
	if coordinatorError != nil {
		return coordinatorError
	}

	_, checkError := checkCoordinator.Check(command.Context(), mapping, coordinator.Options{
		LookbackDays:    configuration.StaleCheck.LookbackDays,
		Services:        configuration.StaleCheck.selectedServices(),
		StaleOutputPath: configuration.StaleCheck.OutputStale,
	})
	return checkError
}
