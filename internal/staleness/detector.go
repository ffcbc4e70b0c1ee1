package staleness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/hallmonitor/internal/registry"
	"github.com/temirov/hallmonitor/internal/repos/shared"
	"github.com/temirov/hallmonitor/internal/services"
)

const (
	invalidReferenceReasonTemplateConstant = "invalid repo format: %v"
	// NoTagsReason is recorded when a listing fails or returns nothing.
	NoTagsReason                  = "no tags found or error accessing repository"
	progressTemplateConstant      = "[%d/%d] Searching %s (%s) (%s)...\n"
	progressMatchTemplateConstant = "  ✓ Found %d match(es), first: %s\n"
	progressNoMatchConstant       = "  ✗ No matches found\n"
	progressErrorTemplateConstant = "  %s\n"
	progressSkipTemplateConstant  = "[%d/%d] Skipping %s: %v\n"
)

var (
	// ErrTagSourceNotConfigured indicates a missing tag source.
	ErrTagSourceNotConfigured = errors.New("staleness: tag source not configured")
	// ErrLoggerNotConfigured indicates a missing logger.
	ErrLoggerNotConfigured = errors.New("staleness: logger not configured")
)

// Dependencies enumerates collaborators required by the Detector.
type Dependencies struct {
	TagSource registry.TagSource
	Logger    *zap.Logger
	Reporter  shared.Reporter
}

// Options configures the Detector.
type Options struct {
	DefaultHost string
	Concurrency int
}

// Detector classifies services against a date window.
type Detector struct {
	tagSource   registry.TagSource
	logger      *zap.Logger
	reporter    shared.Reporter
	defaultHost string
	concurrency int
}

type serviceOutcome struct {
	updated *UpdatedService
	stale   bool
	errored *ErroredService
}

// NewDetector validates dependencies.
func NewDetector(dependencies Dependencies, options Options) (*Detector, error) {
	if dependencies.TagSource == nil {
		return nil, ErrTagSourceNotConfigured
	}
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = shared.NewWriterReporter(nil)
	}
	concurrency := options.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Detector{
		tagSource:   dependencies.TagSource,
		logger:      dependencies.Logger,
		reporter:    reporter,
		defaultHost: options.DefaultHost,
		concurrency: concurrency,
	}, nil
}

// Detect classifies each service of the mapping, restricted to filter when
// non-empty. Per-service failures are recorded, never returned. Results are
// assembled in mapping order regardless of concurrency.
func (detector *Detector) Detect(executionContext context.Context, mapping services.Mapping, window Window, filter []string) Report {
	entries := mapping.Filter(filter).Entries()
	outcomes := make([]serviceOutcome, len(entries))

	group := errgroup.Group{}
	group.SetLimit(detector.concurrency)
	for index, entry := range entries {
		group.Go(func() error {
			outcomes[index] = detector.classify(executionContext, index+1, len(entries), entry, window)
			return nil
		})
	}
	_ = group.Wait()

	report := Report{Updated: []UpdatedService{}, NotUpdated: []string{}, Errored: []ErroredService{}}
	for index, outcome := range outcomes {
		switch {
		case outcome.errored != nil:
			report.Errored = append(report.Errored, *outcome.errored)
		case outcome.updated != nil:
			report.Updated = append(report.Updated, *outcome.updated)
			report.FoundAny = true
		case outcome.stale:
			report.NotUpdated = append(report.NotUpdated, entries[index].Service)
		}
	}
	return report
}

// classify buffers its progress lines and prints them at once, keeping each
// service's block contiguous when several services are scanned in parallel.
func (detector *Detector) classify(executionContext context.Context, position int, total int, entry services.Entry, window Window) serviceOutcome {
	progress := &strings.Builder{}
	outcome := detector.classifyInto(executionContext, progress, position, total, entry, window)
	detector.reporter.Printf("%s", progress.String())
	return outcome
}

func (detector *Detector) classifyInto(executionContext context.Context, progress io.Writer, position int, total int, entry services.Entry, window Window) serviceOutcome {
	reference, parseError := registry.ParseRepositoryReference(entry.Reference, detector.defaultHost)
	if parseError != nil {
		reason := fmt.Sprintf(invalidReferenceReasonTemplateConstant, parseError)
		fmt.Fprintf(progress, progressSkipTemplateConstant, position, total, entry.Service, parseError)
		return serviceOutcome{errored: &ErroredService{Service: entry.Service, Reason: reason, Cause: parseError}}
	}

	fmt.Fprintf(progress, progressTemplateConstant, position, total, entry.Service, reference.RepositoryPath(), window.Describe())
	tags, fetchError := detector.tagSource.FetchAllTags(executionContext, reference)
	if fetchError != nil || len(tags) == 0 {
		detector.logger.Warn("Registry listing unavailable",
			zap.String("service", entry.Service),
			zap.String("repository", reference.String()),
			zap.Error(fetchError),
		)
		fmt.Fprintf(progress, progressErrorTemplateConstant, NoTagsReason)
		return serviceOutcome{errored: &ErroredService{Service: entry.Service, Reason: NoTagsReason, Cause: fetchError}}
	}

	matches := MatchTags(tags, window)
	detector.logger.Debug("Classified service",
		zap.String("service", entry.Service),
		zap.Int("tags", len(tags)),
		zap.Int("matches", len(matches)),
	)
	if len(matches) == 0 {
		fmt.Fprint(progress, progressNoMatchConstant)
		return serviceOutcome{stale: true}
	}
	fmt.Fprintf(progress, progressMatchTemplateConstant, len(matches), matches[0].Tag.Name)
	return serviceOutcome{updated: &UpdatedService{Service: entry.Service, Matches: matches}}
}
