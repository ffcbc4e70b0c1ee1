package cli

import (
	"github.com/spf13/cobra"

	"github.com/temirov/hallmonitor/internal/remediation"
	"github.com/temirov/hallmonitor/internal/repos/shared"
	pathutils "github.com/temirov/hallmonitor/internal/utils/path"
)

const (
	updateCommandUseConstant              = "update [repository...]"
	updateCommandShortDescriptionConstant = "Point Tekton SC pipelines at main in local repositories"
	updateCommandLongDescriptionConstant  = "update checks out the automation branch in each named repository (or every working copy under the repositories directory), rewrites version pinned pipeline references in .tekton/*-sc*.yaml to main, then commits and pushes."
)

// UpdateCommandBuilder assembles the update command.
type UpdateCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	GitExecutor           shared.GitExecutor
}

// Build constructs the update command.
func (builder *UpdateCommandBuilder) Build() *cobra.Command {
	command := &cobra.Command{
		Use:   updateCommandUseConstant,
		Short: updateCommandShortDescriptionConstant,
		Long:  updateCommandLongDescriptionConstant,
		RunE:  builder.run,
	}
	registerRemediationFlags(command)
	return command
}

func (builder *UpdateCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.ConfigurationProvider()
	applyRemediationFlags(command, &configuration.Remediation)
	configuration = configuration.expandPaths(pathutils.NewHomeExpander())

	if validationError := configuration.Remediation.validate(); validationError != nil {
		return validationError
	}

	factory := componentFactory{logger: builder.LoggerProvider(), output: command.OutOrStdout(), gitExecutor: builder.GitExecutor}
	orchestrator, orchestratorError := factory.orchestrator(configuration.Remediation)
	if orchestratorError != nil {
		return orchestratorError
	}

	auditLog, runError := orchestrator.Run(command.Context(), arguments)
	if runError != nil {
		return runError
	}
	return remediation.RenderAuditLog(command.OutOrStdout(), auditLog)
}
