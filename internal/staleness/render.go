package staleness

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	reportRuleWidthConstant       = 80
	reportServiceColumnConstant   = 40
	noMatchesMessageConstant      = "\nNo matching images found.\n"
	searchCompleteMessageConstant = "\nSearch complete.\n"
)

// RenderReport writes the human readable report: each bucket sorted by
// service name, updated services showing their first matching tag. It ends
// with a note saying whether any service matched the window.
func RenderReport(writer io.Writer, report Report) error {
	heavyRule := strings.Repeat("=", reportRuleWidthConstant)
	lightRule := strings.Repeat("-", reportRuleWidthConstant)
	builder := &strings.Builder{}

	fmt.Fprintf(builder, "\n%s\nREPOSITORY UPDATE REPORT\n%s\n", heavyRule, heavyRule)

	fmt.Fprintf(builder, "\n✓ REPOSITORIES WITH UPDATES (%d):\n%s\n", len(report.Updated), lightRule)
	for _, updated := range report.SortedUpdated() {
		fmt.Fprintf(builder, "  %-*s %s\n", reportServiceColumnConstant, updated.Service, updated.Latest().Tag.Name)
	}

	fmt.Fprintf(builder, "\n✗ REPOSITORIES WITHOUT UPDATES (%d):\n%s\n", len(report.NotUpdated), lightRule)
	for _, service := range report.StaleServices() {
		fmt.Fprintf(builder, "  %s\n", service)
	}

	fmt.Fprintf(builder, "\n⚠ REPOSITORIES WITH ERRORS (%d):\n%s\n", len(report.Errored), lightRule)
	for _, errored := range report.SortedErrored() {
		fmt.Fprintf(builder, "  %-*s %s\n", reportServiceColumnConstant, errored.Service, errored.Reason)
	}

	fmt.Fprintf(builder, "\n%s\nSUMMARY: %d updated, %d not updated, %d errors\n%s\n",
		heavyRule, len(report.Updated), len(report.NotUpdated), len(report.Errored), heavyRule)

	if report.FoundAny {
		builder.WriteString(searchCompleteMessageConstant)
	} else {
		builder.WriteString(noMatchesMessageConstant)
	}

	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}

// WriteStaleServices writes the sorted stale service names, one per line.
func WriteStaleServices(filePath string, report Report) error {
	var builder strings.Builder
	for _, service := range report.StaleServices() {
		builder.WriteString(service)
		builder.WriteString("\n")
	}
	if writeError := os.WriteFile(filePath, []byte(builder.String()), 0o644); writeError != nil {
		return fmt.Errorf("writing stale services to %s: %w", filePath, writeError)
	}
	return nil
}
