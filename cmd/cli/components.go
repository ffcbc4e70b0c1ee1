package cli

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/hallmonitor/internal/coordinator"
	"github.com/temirov/hallmonitor/internal/manifest"
	"github.com/temirov/hallmonitor/internal/reconcile"
	"github.com/temirov/hallmonitor/internal/registry"
	"github.com/temirov/hallmonitor/internal/remediation"
	"github.com/temirov/hallmonitor/internal/repos/dependencies"
	"github.com/temirov/hallmonitor/internal/repos/discovery"
	"github.com/temirov/hallmonitor/internal/repos/shared"
	"github.com/temirov/hallmonitor/internal/services"
	"github.com/temirov/hallmonitor/internal/staleness"
)

const (
	tagSourceErrorTemplate      = "unable to construct registry tag source: %w"
	detectorErrorTemplate       = "unable to construct stale detector: %w"
	shellExecutorErrorTemplate  = "unable to construct git executor: %w"
	gitClientErrorTemplate      = "unable to construct git client: %w"
	reconcilerErrorTemplate     = "unable to construct branch reconciler: %w"
	orchestratorErrorTemplate   = "unable to construct remediation orchestrator: %w"
	coordinatorErrorTemplate    = "unable to construct coordinator: %w"
	logFieldRegistryKind        = "registry_kind"
	logFieldRegistryEndpoint    = "registry_endpoint"
	logFieldRepositoriesRoot    = "repositories_root"
	logFieldDryRun              = "dry_run"
	logFieldRegistryConcurrency = "concurrency"
)

// componentFactory assembles domain services from configuration.
type componentFactory struct {
	logger      *zap.Logger
	output      io.Writer
	clock       shared.Clock
	gitExecutor shared.GitExecutor
}

func (factory componentFactory) reporter() shared.Reporter {
	return shared.NewWriterReporter(factory.output)
}

func (factory componentFactory) tagSource(configuration RegistryConfiguration) (registry.TagSource, error) {
	factory.logger.Debug("Creating registry tag source",
		zap.String(logFieldRegistryKind, configuration.Kind),
		zap.String(logFieldRegistryEndpoint, configuration.BaseURL),
		zap.Int(logFieldRegistryConcurrency, configuration.Concurrency),
	)
	token, tokenError := configuration.bearerToken(registry.NewCredentialResolver(nil, nil))
	if tokenError != nil {
		return nil, tokenError
	}
	switch strings.ToLower(strings.TrimSpace(configuration.Kind)) {
	case registryKindOCIConstant:
		source, creationError := registry.NewOCITagSource(factory.logger, registry.OCIOptions{
			Token:     token,
			Insecure:  configuration.Insecure,
			Transport: http.DefaultTransport,
		})
		if creationError != nil {
			return nil, fmt.Errorf(tagSourceErrorTemplate, creationError)
		}
		return source, nil
	default:
		httpClient := &http.Client{Timeout: configuration.Timeout}
		source, creationError := registry.NewQuayTagSource(httpClient, factory.logger, registry.QuayOptions{
			BaseURL:  configuration.BaseURL,
			PageSize: configuration.PageSize,
			Token:    token,
		})
		if creationError != nil {
			return nil, fmt.Errorf(tagSourceErrorTemplate, creationError)
		}
		return source, nil
	}
}

func (factory componentFactory) detector(configuration RegistryConfiguration) (*staleness.Detector, error) {
	tagSource, tagSourceError := factory.tagSource(configuration)
	if tagSourceError != nil {
		return nil, tagSourceError
	}
	detector, detectorError := staleness.NewDetector(
		staleness.Dependencies{TagSource: tagSource, Logger: factory.logger, Reporter: factory.reporter()},
		staleness.Options{DefaultHost: configuration.defaultHost(), Concurrency: configuration.Concurrency},
	)
	if detectorError != nil {
		return nil, fmt.Errorf(detectorErrorTemplate, detectorError)
	}
	return detector, nil
}

func (factory componentFactory) orchestrator(configuration RemediationConfiguration) (*remediation.Orchestrator, error) {
	factory.logger.Debug("Creating remediation orchestrator",
		zap.String(logFieldRepositoriesRoot, configuration.GitReposDir),
		zap.Bool(logFieldDryRun, configuration.DryRun),
	)
	gitExecutor, executorError := dependencies.ResolveGitExecutor(factory.gitExecutor, factory.logger)
	if executorError != nil {
		return nil, fmt.Errorf(shellExecutorErrorTemplate, executorError)
	}
	gitClient, clientError := dependencies.ResolveVersionControlClient(nil, gitExecutor)
	if clientError != nil {
		return nil, fmt.Errorf(gitClientErrorTemplate, clientError)
	}
	reconciler, reconcilerError := reconcile.NewReconciler(
		reconcile.Dependencies{Client: gitClient, Logger: factory.logger},
		reconcile.Options{RemoteName: configuration.Remote, DryRun: configuration.DryRun},
	)
	if reconcilerError != nil {
		return nil, fmt.Errorf(reconcilerErrorTemplate, reconcilerError)
	}
	orchestrator, orchestratorError := remediation.NewOrchestrator(
		remediation.Dependencies{
			Client:     gitClient,
			Reconciler: reconciler,
			Patcher:    manifest.NewPatcher(factory.logger, manifest.Options{ManifestDirectory: configuration.ManifestDirectory, DryRun: configuration.DryRun}),
			Locator:    discovery.NewWorkingCopyDiscoverer(),
			Logger:     factory.logger,
			Reporter:   factory.reporter(),
		},
		remediation.Options{
			RepositoriesRoot: configuration.GitReposDir,
			BranchName:       configuration.Branch,
			RemoteName:       configuration.Remote,
			CommitMessage:    configuration.CommitMessage,
			DryRun:           configuration.DryRun,
		},
	)
	if orchestratorError != nil {
		return nil, fmt.Errorf(orchestratorErrorTemplate, orchestratorError)
	}
	return orchestrator, nil
}

// coordinator wires detection and, when updater is non-nil, remediation.
func (factory componentFactory) coordinator(detector coordinator.StaleDetector, updater coordinator.RepositoryUpdater, aliases map[string]string) (*coordinator.Coordinator, error) {
	if len(aliases) == 0 {
		aliases = services.DefaultRepositoryAliases
	}
	instance, creationError := coordinator.NewCoordinator(coordinator.Dependencies{
		Detector: detector,
		Updater:  updater,
		Aliases:  services.NewAliasResolver(aliases),
		Clock:    dependencies.ResolveClock(factory.clock),
		Logger:   factory.logger,
		Output:   factory.output,
	})
	if creationError != nil {
		return nil, fmt.Errorf(coordinatorErrorTemplate, creationError)
	}
	return instance, nil
}
