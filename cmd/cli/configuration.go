package cli

import (
	"os"
	"strings"
	"time"

	"github.com/temirov/hallmonitor/internal/registry"
	"github.com/temirov/hallmonitor/internal/services"
	"github.com/temirov/hallmonitor/internal/utils"
	pathutils "github.com/temirov/hallmonitor/internal/utils/path"
)

const (
	registryKindQuayConstant = "quay"
	registryKindOCIConstant  = "oci"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common      ApplicationCommonConfiguration `mapstructure:"common"`
	Registry    RegistryConfiguration          `mapstructure:"registry"`
	StaleCheck  StaleCheckConfiguration        `mapstructure:"stale_check"`
	Remediation RemediationConfiguration       `mapstructure:"remediation"`
	References  ReferencesConfiguration        `mapstructure:"references"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// RegistryConfiguration selects and tunes the registry tag source.
type RegistryConfiguration struct {
	Kind        string        `mapstructure:"kind"`
	Host        string        `mapstructure:"host"`
	BaseURL     string        `mapstructure:"base_url"`
	PageSize    int           `mapstructure:"page_size"`
	Concurrency int           `mapstructure:"concurrency"`
	Token       string        `mapstructure:"token"`
	TokenSource string        `mapstructure:"token_source"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Insecure    bool          `mapstructure:"insecure"`
}

// StaleCheckConfiguration controls stale detection.
type StaleCheckConfiguration struct {
	LookbackDays int      `mapstructure:"lookback_days"`
	ReposConfig  string   `mapstructure:"repos_config"`
	Services     []string `mapstructure:"services"`
	OutputStale  string   `mapstructure:"output_stale"`
}

// RemediationConfiguration controls repository updates.
type RemediationConfiguration struct {
	GitReposDir       string            `mapstructure:"git_repos_dir"`
	Branch            string            `mapstructure:"branch"`
	Remote            string            `mapstructure:"remote"`
	CommitMessage     string            `mapstructure:"commit_message"`
	ManifestDirectory string            `mapstructure:"manifest_directory"`
	DryRun            bool              `mapstructure:"dry_run"`
	RepositoryAliases map[string]string `mapstructure:"repository_aliases"`
}

// ReferencesConfiguration controls markdown reference conversion.
type ReferencesConfiguration struct {
	MarkdownPath string `mapstructure:"markdown_path"`
	Output       string `mapstructure:"output"`
}

func (configuration RegistryConfiguration) validate() error {
	switch strings.ToLower(strings.TrimSpace(configuration.Kind)) {
	case registryKindQuayConstant, registryKindOCIConstant:
	default:
		return utils.NewConfigurationError("registry.kind must be %q or %q, got %q", registryKindQuayConstant, registryKindOCIConstant, configuration.Kind)
	}
	if configuration.PageSize <= 0 {
		return utils.NewConfigurationError("registry.page_size must be positive, got %d", configuration.PageSize)
	}
	if configuration.Concurrency <= 0 {
		return utils.NewConfigurationError("registry.concurrency must be positive, got %d", configuration.Concurrency)
	}
	if configuration.Timeout < 0 {
		return utils.NewConfigurationError("registry.timeout must not be negative, got %s", configuration.Timeout)
	}
	if _, parseError := registry.ParseCredentialSource(configuration.TokenSource); parseError != nil {
		return utils.NewConfigurationError("registry.token_source is invalid: %v", parseError)
	}
	return nil
}

// bearerToken prefers the literal token and otherwise reads registry.token_source.
func (configuration RegistryConfiguration) bearerToken(resolver registry.CredentialResolver) (string, error) {
	literal := strings.TrimSpace(configuration.Token)
	if len(literal) > 0 {
		return literal, nil
	}
	source, parseError := registry.ParseCredentialSource(configuration.TokenSource)
	if parseError != nil {
		return "", utils.NewConfigurationError("registry.token_source is invalid: %v", parseError)
	}
	token, resolveError := resolver.Resolve(source)
	if resolveError != nil {
		return "", utils.NewConfigurationError("registry.token_source could not be resolved: %v", resolveError)
	}
	return token, nil
}

func (configuration RegistryConfiguration) defaultHost() string {
	host := strings.TrimSpace(configuration.Host)
	if len(host) == 0 {
		return registry.DefaultQuayHost
	}
	return host
}

func (configuration StaleCheckConfiguration) validate() error {
	if configuration.LookbackDays <= 0 {
		return utils.NewConfigurationError("stale_check.lookback_days must be positive, got %d", configuration.LookbackDays)
	}
	if len(strings.TrimSpace(configuration.ReposConfig)) == 0 {
		return utils.NewConfigurationError("stale_check.repos_config is required")
	}
	return nil
}

func (configuration StaleCheckConfiguration) selectedServices() []string {
	selected := make([]string, 0, len(configuration.Services))
	for _, service := range configuration.Services {
		trimmed := strings.TrimSpace(service)
		if len(trimmed) > 0 {
			selected = append(selected, trimmed)
		}
	}
	return selected
}

// loadMapping reads the service mapping; an unreadable or empty mapping is a
// configuration error.
func (configuration StaleCheckConfiguration) loadMapping() (services.Mapping, error) {
	mapping, loadError := services.LoadMapping(configuration.ReposConfig)
	if loadError != nil {
		return services.Mapping{}, utils.ConfigurationError{Message: "unable to load service mapping " + configuration.ReposConfig, Cause: loadError}
	}
	return mapping, nil
}

func (configuration RemediationConfiguration) validate() error {
	repositoriesRoot := strings.TrimSpace(configuration.GitReposDir)
	if len(repositoriesRoot) == 0 {
		return utils.NewConfigurationError("remediation.git_repos_dir is required")
	}
	info, statError := os.Stat(repositoriesRoot)
	if statError != nil {
		return utils.ConfigurationError{Message: "remediation.git_repos_dir is not accessible", Cause: statError}
	}
	if !info.IsDir() {
		return utils.NewConfigurationError("remediation.git_repos_dir %s is not a directory", repositoriesRoot)
	}
	return nil
}

func (configuration ApplicationConfiguration) expandPaths(expander *pathutils.HomeExpander) ApplicationConfiguration {
	expanded := configuration
	expanded.StaleCheck.ReposConfig = expander.Expand(configuration.StaleCheck.ReposConfig)
	expanded.StaleCheck.OutputStale = expander.Expand(configuration.StaleCheck.OutputStale)
	expanded.Remediation.GitReposDir = expander.Expand(configuration.Remediation.GitReposDir)
	expanded.References.MarkdownPath = expander.Expand(configuration.References.MarkdownPath)
	expanded.References.Output = expander.Expand(configuration.References.Output)
	return expanded
}
