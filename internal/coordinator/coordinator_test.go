package coordinator_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/hallmonitor/internal/coordinator"
	"github.com/temirov/hallmonitor/internal/registry"
	"github.com/temirov/hallmonitor/internal/remediation"
	"github.com/temirov/hallmonitor/internal/repos/shared"
	"github.com/temirov/hallmonitor/internal/services"
	"github.com/temirov/hallmonitor/internal/staleness"
)

var testNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

type stubDetector struct {
	report          staleness.Report
	receivedWindow  staleness.Window
	receivedFilter  []string
	receivedMapping services.Mapping
}

func (detector *stubDetector) Detect(executionContext context.Context, mapping services.Mapping, window staleness.Window, filter []string) staleness.Report {
	detector.receivedMapping = mapping
	detector.receivedWindow = window
	detector.receivedFilter = filter
	return detector.report
}

type recordingUpdater struct {
	received [][]string
	auditLog remediation.AuditLog
	runError error
}

func (updater *recordingUpdater) Run(executionContext context.Context, repositoryNames []string) (remediation.AuditLog, error) {
	updater.received = append(updater.received, repositoryNames)
	return updater.auditLog, updater.runError
}

type staticTagSource struct {
	tags map[string][]registry.Tag
}

func (source staticTagSource) FetchAllTags(executionContext context.Context, reference registry.RepositoryReference) ([]registry.Tag, error) {
	tags, known := source.tags[reference.RepositoryPath()]
	if !known {
		return nil, registry.ErrRepositoryNotFoundOrPrivate
	}
	return tags, nil
}

func newCoordinator(testInstance *testing.T, detector coordinator.StaleDetector, updater coordinator.RepositoryUpdater, output *bytes.Buffer) *coordinator.Coordinator {
	testInstance.Helper()
	instance, creationError := coordinator.NewCoordinator(coordinator.Dependencies{
		Detector: detector,
		Updater:  updater,
		Aliases:  services.NewAliasResolver(services.DefaultRepositoryAliases),
		Clock:    shared.FixedClock{Instant: testNow},
		Logger:   zap.NewNop(),
		Output:   output,
	})
	require.NoError(testInstance, creationError)
	return instance
}

func TestCoordinatorRunMapsAliasesAndRemediates(testInstance *testing.T) {
	detector := &stubDetector{report: staleness.Report{
		Updated:    []staleness.UpdatedService{{Service: "rbac", Matches: []staleness.DateTaggedMatch{{Tag: registry.Tag{Name: "sc-20240310-abc"}, Date: "20240310"}}}},
		NotUpdated: []string{"notifications-engine-sc", "sources-api", "notifications-aggregator"},
		FoundAny:   true,
	}}
	updater := &recordingUpdater{auditLog: remediation.AuditLog{Outcomes: []remediation.Outcome{
		{Repository: "notifications-backend", Status: remediation.StatusPushed, CommitSHA: "abc123"},
		{Repository: "sources-api", Status: remediation.StatusSkipped, SkipKind: remediation.SkipAlreadyUpToDate, Reason: "SC files already use 'main' branch"},
	}}}
	output := &bytes.Buffer{}

	result, runError := newCoordinator(testInstance, detector, updater, output).Run(context.Background(), services.NewMapping(), coordinator.Options{LookbackDays: 7, Services: []string{"rbac"}})
	require.NoError(testInstance, runError)

	require.Equal(testInstance, staleness.Window{Start: "20240308", End: "20240315"}, detector.receivedWindow)
	require.Equal(testInstance, []string{"rbac"}, detector.receivedFilter)
	require.Equal(testInstance, []string{"notifications-backend", "sources-api"}, result.StaleRepositories)
	require.Equal(testInstance, [][]string{{"notifications-backend", "sources-api"}}, updater.received)
	require.NotNil(testInstance, result.AuditLog)

	rendered := output.String()
	require.Contains(testInstance, rendered, "REPOSITORY UPDATE REPORT")
	require.Contains(testInstance, rendered, "Note: 3 stale service(s) map to 2 repositories")
	require.Contains(testInstance, rendered, "  notifications-backend: abc123")
	require.Contains(testInstance, rendered, "Total: 1 service(s) require investigation")
}

func TestCoordinatorCheckOnlySkipsRemediation(testInstance *testing.T) {
	detector := &stubDetector{report: staleness.Report{NotUpdated: []string{"rbac"}}}
	updater := &recordingUpdater{}
	output := &bytes.Buffer{}

	result, runError := newCoordinator(testInstance, detector, updater, output).Run(context.Background(), services.NewMapping(), coordinator.Options{CheckOnly: true})
	require.NoError(testInstance, runError)
	require.Nil(testInstance, result.AuditLog)
	require.Empty(testInstance, updater.received)
	require.Equal(testInstance, []string{"rbac"}, result.StaleRepositories)
	require.Equal(testInstance, staleness.Window{Start: "20240301", End: "20240315"}, detector.receivedWindow)
	require.Contains(testInstance, output.String(), "Check only: 1 repositories would be updated")
}

func TestCoordinatorRunWithoutStaleServices(testInstance *testing.T) {
	detector := &stubDetector{report: staleness.Report{}}
	updater := &recordingUpdater{}
	output := &bytes.Buffer{}

	result, runError := newCoordinator(testInstance, detector, updater, output).Run(context.Background(), services.NewMapping(), coordinator.Options{})
	require.NoError(testInstance, runError)
	require.Empty(testInstance, updater.received)
	require.Empty(testInstance, result.StaleRepositories)
	require.Contains(testInstance, output.String(), "No stale services found")
}

func TestCoordinatorRunPropagatesUpdaterError(testInstance *testing.T) {
	rootError := errors.New("root missing")
	detector := &stubDetector{report: staleness.Report{NotUpdated: []string{"rbac"}}}
	updater := &recordingUpdater{runError: rootError}

	_, runError := newCoordinator(testInstance, detector, updater, &bytes.Buffer{}).Run(context.Background(), services.NewMapping(), coordinator.Options{})
	require.ErrorIs(testInstance, runError, rootError)
}

func TestCoordinatorRunRequiresUpdater(testInstance *testing.T) {
	detector := &stubDetector{report: staleness.Report{NotUpdated: []string{"rbac"}}}

	_, runError := newCoordinator(testInstance, detector, nil, &bytes.Buffer{}).Run(context.Background(), services.NewMapping(), coordinator.Options{})
	require.ErrorIs(testInstance, runError, coordinator.ErrUpdaterNotConfigured)
}

func TestCoordinatorCheckWritesStaleOutput(testInstance *testing.T) {
	mapping := services.NewMapping(
		services.Entry{Service: "rbac", Reference: "quay.io/cloudservices/rbac"},
		services.Entry{Service: "sources-api", Reference: "quay.io/cloudservices/sources-api"},
		services.Entry{Service: "export-service", Reference: "quay.io/cloudservices/export-service"},
		services.Entry{Service: "broken", Reference: "broken"},
	)
	tagSource := staticTagSource{tags: map[string][]registry.Tag{
		"cloudservices/rbac":           {{Name: "sc-20240312-1a2b3c"}, {Name: "latest"}},
		"cloudservices/sources-api":    {{Name: "sc-20230101-ffffff"}},
		"cloudservices/export-service": {{Name: "latest"}},
	}}
	detector, detectorError := staleness.NewDetector(staleness.Dependencies{TagSource: tagSource, Logger: zap.NewNop()}, staleness.Options{DefaultHost: "quay.io"})
	require.NoError(testInstance, detectorError)

	stalePath := filepath.Join(testInstance.TempDir(), "stale.txt")
	output := &bytes.Buffer{}
	report, checkError := newCoordinator(testInstance, detector, nil, output).Check(context.Background(), mapping, coordinator.Options{StaleOutputPath: stalePath})
	require.NoError(testInstance, checkError)
	require.True(testInstance, report.FoundAny)
	require.Len(testInstance, report.Errored, 1)

	content, readError := os.ReadFile(stalePath)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "export-service\nsources-api\n", string(content))
	require.Contains(testInstance, output.String(), "SUMMARY: 1 updated, 2 not updated, 1 errors")
}

func TestNewCoordinatorValidation(testInstance *testing.T) {
	_, detectorError := coordinator.NewCoordinator(coordinator.Dependencies{Logger: zap.NewNop()})
	require.ErrorIs(testInstance, detectorError, coordinator.ErrDetectorNotConfigured)

	_, loggerError := coordinator.NewCoordinator(coordinator.Dependencies{Detector: &stubDetector{}})
	require.ErrorIs(testInstance, loggerError, coordinator.ErrLoggerNotConfigured)
}
