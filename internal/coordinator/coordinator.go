package coordinator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/hallmonitor/internal/remediation"
	"github.com/temirov/hallmonitor/internal/repos/shared"
	"github.com/temirov/hallmonitor/internal/services"
	"github.com/temirov/hallmonitor/internal/staleness"
)

const (
	// DefaultLookbackDays is the search window used when none is configured.
	DefaultLookbackDays = 14

	staleOutputErrorTemplate     = "writing stale services: %w"
	renderReportErrorTemplate    = "rendering staleness report: %w"
	renderAuditErrorTemplate     = "rendering remediation report: %w"
	remediationErrorTemplate     = "remediating repositories: %w"
	logFieldStaleCountConstant   = "stale_services"
	logFieldRepositoryCount      = "repositories"
	logFieldWindowConstant       = "window"
	logFieldStaleOutputConstant  = "stale_output"
	logFieldUpdatedCountConstant = "updated_services"
	logFieldErroredCountConstant = "errored_services"
)

var (
	// ErrDetectorNotConfigured indicates a missing stale detector.
	ErrDetectorNotConfigured = errors.New("coordinator: stale detector not configured")
	// ErrLoggerNotConfigured indicates a missing logger.
	ErrLoggerNotConfigured = errors.New("coordinator: logger not configured")
	// ErrUpdaterNotConfigured indicates remediation was requested without an updater.
	ErrUpdaterNotConfigured = errors.New("coordinator: repository updater not configured")
)

// StaleDetector classifies services by recent registry activity.
type StaleDetector interface {
	Detect(executionContext context.Context, mapping services.Mapping, window staleness.Window, filter []string) staleness.Report
}

// RepositoryUpdater remediates named repositories.
type RepositoryUpdater interface {
	Run(executionContext context.Context, repositoryNames []string) (remediation.AuditLog, error)
}

// Dependencies enumerates collaborators required by the Coordinator.
type Dependencies struct {
	Detector StaleDetector
	Updater  RepositoryUpdater
	Aliases  services.AliasResolver
	Clock    shared.Clock
	Logger   *zap.Logger
	Output   io.Writer
}

// Options configures one coordinated run.
type Options struct {
	LookbackDays    int
	Services        []string
	StaleOutputPath string
	CheckOnly       bool
}

// Result summarizes a coordinated run. AuditLog is nil when remediation did
// not run.
type Result struct {
	Report            staleness.Report
	StaleRepositories []string
	AuditLog          *remediation.AuditLog
}

// Coordinator runs the check then update workflow.
type Coordinator struct {
	dependencies Dependencies
}

// NewCoordinator validates dependencies.
func NewCoordinator(dependencies Dependencies) (*Coordinator, error) {
	if dependencies.Detector == nil {
		return nil, ErrDetectorNotConfigured
	}
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.Clock == nil {
		dependencies.Clock = shared.SystemClock{}
	}
	if dependencies.Output == nil {
		dependencies.Output = io.Discard
	}
	return &Coordinator{dependencies: dependencies}, nil
}

// Check detects stale services, renders the report and optionally writes the
// stale service list.
func (coordinator *Coordinator) Check(executionContext context.Context, mapping services.Mapping, options Options) (staleness.Report, error) {
	lookbackDays := options.LookbackDays
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	window := staleness.LookbackWindow(coordinator.dependencies.Clock.Now(), lookbackDays)
	coordinator.dependencies.Logger.Info("Checking registry activity", zap.String(logFieldWindowConstant, window.Describe()))

	report := coordinator.dependencies.Detector.Detect(executionContext, mapping, window, options.Services)
	coordinator.dependencies.Logger.Info("Registry check complete",
		zap.Int(logFieldUpdatedCountConstant, len(report.Updated)),
		zap.Int(logFieldStaleCountConstant, len(report.NotUpdated)),
		zap.Int(logFieldErroredCountConstant, len(report.Errored)),
	)

	if renderError := staleness.RenderReport(coordinator.dependencies.Output, report); renderError != nil {
		return report, fmt.Errorf(renderReportErrorTemplate, renderError)
	}

	if len(options.StaleOutputPath) > 0 {
		if writeError := staleness.WriteStaleServices(options.StaleOutputPath, report); writeError != nil {
			return report, fmt.Errorf(staleOutputErrorTemplate, writeError)
		}
		coordinator.dependencies.Logger.Info("Stale services written", zap.String(logFieldStaleOutputConstant, options.StaleOutputPath))
	}
	return report, nil
}

// Run checks the registry and, unless CheckOnly is set, remediates the
// repositories backing stale services.
func (coordinator *Coordinator) Run(executionContext context.Context, mapping services.Mapping, options Options) (Result, error) {
	report, checkError := coordinator.Check(executionContext, mapping, options)
	result := Result{Report: report, StaleRepositories: []string{}}
	if checkError != nil {
		return result, checkError
	}

	output := coordinator.dependencies.Output
	staleServices := report.StaleServices()
	if len(staleServices) == 0 {
		fmt.Fprintln(output, "\nNo stale services found. Nothing to update.")
		return result, nil
	}

	result.StaleRepositories = coordinator.dependencies.Aliases.Repositories(staleServices)
	if len(result.StaleRepositories) != len(staleServices) {
		fmt.Fprintf(output, "\nNote: %d stale service(s) map to %d repositories\n", len(staleServices), len(result.StaleRepositories))
	}

	if options.CheckOnly {
		fmt.Fprintf(output, "\nCheck only: %d repositories would be updated: %v\n", len(result.StaleRepositories), result.StaleRepositories)
		return result, nil
	}
	if coordinator.dependencies.Updater == nil {
		return result, ErrUpdaterNotConfigured
	}

	coordinator.dependencies.Logger.Info("Updating stale repositories", zap.Int(logFieldRepositoryCount, len(result.StaleRepositories)))
	auditLog, runError := coordinator.dependencies.Updater.Run(executionContext, result.StaleRepositories)
	result.AuditLog = &auditLog
	if runError != nil {
		return result, fmt.Errorf(remediationErrorTemplate, runError)
	}
	if renderError := remediation.RenderAuditLog(output, auditLog); renderError != nil {
		return result, fmt.Errorf(renderAuditErrorTemplate, renderError)
	}
	return result, nil
}
