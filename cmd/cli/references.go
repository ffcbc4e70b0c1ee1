package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/hallmonitor/internal/references"
	"github.com/temirov/hallmonitor/internal/utils"
	pathutils "github.com/temirov/hallmonitor/internal/utils/path"
)

const (
	referencesCommandUseConstant              = "references"
	referencesCommandShortDescriptionConstant = "Convert a markdown service reference table into the mapping file"
	referencesCommandLongDescriptionConstant  = "references parses rows of the form | service | [quay.io](https://quay.io/repository/...) | from a markdown document and writes the service to registry mapping as JSON."
	referencesSampleSizeConstant              = 5
	logFieldMarkdownPathConstant              = "markdown_path"
	logFieldOutputPathConstant                = "output_path"
	logFieldServiceCountConstant              = "services"
)

// ReferencesCommandBuilder assembles the references command.
type ReferencesCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
}

// Build constructs the references command.
func (builder *ReferencesCommandBuilder) Build() *cobra.Command {
	command := &cobra.Command{
		Use:   referencesCommandUseConstant,
		Short: referencesCommandShortDescriptionConstant,
		Long:  referencesCommandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	command.Flags().String(markdownFlagNameConstant, "", markdownFlagUsageConstant)
	command.Flags().String(referencesOutputFlagNameConstant, "", referencesOutputFlagUsageConstant)
	return command
}

func (builder *ReferencesCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.ConfigurationProvider()
	overrideString(command, markdownFlagNameConstant, &configuration.References.MarkdownPath)
	overrideString(command, referencesOutputFlagNameConstant, &configuration.References.Output)
	configuration = configuration.expandPaths(pathutils.NewHomeExpander())

	markdownPath := strings.TrimSpace(configuration.References.MarkdownPath)
	if len(markdownPath) == 0 {
		return utils.NewConfigurationError("markdown file path not specified; provide --markdown or set references.markdown_path")
	}
	outputPath := strings.TrimSpace(configuration.References.Output)
	if len(outputPath) == 0 {
		return utils.NewConfigurationError("references.output is required")
	}

	output := command.OutOrStdout()
	fmt.Fprintf(output, "Parsing %s...\n", markdownPath)
	result, convertError := references.ConvertFile(markdownPath, outputPath)
	if convertError != nil {
		return convertError
	}
	builder.LoggerProvider().Info("Service references converted",
		zap.String(logFieldMarkdownPathConstant, markdownPath),
		zap.String(logFieldOutputPathConstant, outputPath),
		zap.Int(logFieldServiceCountConstant, len(result.Mapping)),
	)

	fmt.Fprintf(output, "Found %d services\nCreated %s\n", len(result.Mapping), outputPath)
	sortedServices := result.SortedServices()
	if len(sortedServices) > referencesSampleSizeConstant {
		sortedServices = sortedServices[:referencesSampleSizeConstant]
	}
	if len(sortedServices) > 0 {
		fmt.Fprintln(output, "\nSample entries:")
		for _, service := range sortedServices {
			fmt.Fprintf(output, "  %s: %s\n", service, result.Mapping[service])
		}
	}
	return nil
}
