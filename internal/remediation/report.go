package remediation

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

const (
	auditRuleWidthConstant     = 60
	otherSkipKindLabelConstant = "other"
)

var skipKindOrder = []SkipKind{
	SkipMissingWorkingCopy,
	SkipBranchUnavailable,
	SkipNoQualifyingFiles,
	SkipAlreadyUpToDate,
	SkipNoUpdatableManifest,
}

// RenderAuditLog writes the end-of-run audit: commit SHAs of pushed
// repositories, a warning block for repositories that stayed stale, failures,
// and a one-line summary.
func RenderAuditLog(writer io.Writer, log AuditLog) error {
	heavyRule := strings.Repeat("=", auditRuleWidthConstant)
	lightRule := strings.Repeat("-", auditRuleWidthConstant)
	builder := &strings.Builder{}

	fmt.Fprintf(builder, "\n%s\n", heavyRule)

	pushed := log.WithStatus(StatusPushed)
	if len(pushed) > 0 {
		fmt.Fprintf(builder, "Commit SHAs for pushed changes:\n%s\n", lightRule)
		for _, outcome := range pushed {
			fmt.Fprintf(builder, "  %s: %s\n", outcome.Repository, outcome.CommitSHA)
			writeChanges(builder, outcome)
		}
		fmt.Fprintf(builder, "%s\n", heavyRule)
	}

	wouldPush := log.WithStatus(StatusWouldPush)
	if len(wouldPush) > 0 {
		fmt.Fprintf(builder, "[DRY RUN] Repositories that would be pushed to %s/%s:\n%s\n", log.Remote, log.Branch, lightRule)
		for _, outcome := range wouldPush {
			fmt.Fprintf(builder, "  %s: %s\n", outcome.Repository, strings.Join(outcome.ModifiedFiles(), ", "))
			writeChanges(builder, outcome)
		}
		fmt.Fprintf(builder, "%s\n", heavyRule)
	}

	unchanged := log.WithStatus(StatusSkipped)
	if len(unchanged) > 0 {
		fmt.Fprintf(builder, "\n%s\n⚠ WARNING: STALE SERVICES WITH NO CHANGES\n%s\n", heavyRule, heavyRule)
		builder.WriteString("The following stale services were processed but had no\n")
		builder.WriteString("changes made to their Tekton SC files. This indicates the\n")
		builder.WriteString("stale status was NOT remedied by the update:\n")
		fmt.Fprintf(builder, "%s\n", lightRule)
		for _, group := range groupBySkipKind(unchanged) {
			fmt.Fprintf(builder, "%s (%d):\n", group.label, len(group.outcomes))
			for _, outcome := range group.outcomes {
				fmt.Fprintf(builder, "  %s\n    Reason: %s\n", outcome.Repository, outcome.Reason)
			}
		}
		fmt.Fprintf(builder, "%s\nTotal: %d service(s) require investigation\n%s\n", heavyRule, len(unchanged), heavyRule)
	}

	failures := log.WithStatus(StatusFailed)
	if len(failures) > 0 {
		fmt.Fprintf(builder, "\n%s\n✗ FAILED REPOSITORIES\n%s\n", heavyRule, lightRule)
		for _, outcome := range failures {
			fmt.Fprintf(builder, "  %s\n    Reason: %s\n", outcome.Repository, outcome.Reason)
		}
		fmt.Fprintf(builder, "%s\n", heavyRule)
	}

	updatedLabel := "updated"
	updatedCount := len(pushed)
	if log.DryRun {
		updatedLabel = "would update"
		updatedCount = len(wouldPush)
	}
	fmt.Fprintf(builder, "\nSummary: %d %s, %d no changes, %d failed, %d total\n",
		updatedCount, updatedLabel, len(unchanged), len(failures), len(log.Outcomes))

	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}

func writeChanges(builder *strings.Builder, outcome Outcome) {
	for _, change := range outcome.Changes {
		if len(change.PreviousVersion) == 0 {
			continue
		}
		fmt.Fprintf(builder, "    %s: %s\n", change.RelativePath, change.Describe())
	}
}

type skipGroup struct {
	label    string
	outcomes []Outcome
}

// groupBySkipKind buckets skipped outcomes in skipKindOrder, keeping
// processing order inside each bucket. Unclassified skips go last.
func groupBySkipKind(outcomes []Outcome) []skipGroup {
	buckets := map[SkipKind][]Outcome{}
	var unclassified []Outcome
	for _, outcome := range outcomes {
		if slices.Contains(skipKindOrder, outcome.SkipKind) {
			buckets[outcome.SkipKind] = append(buckets[outcome.SkipKind], outcome)
			continue
		}
		unclassified = append(unclassified, outcome)
	}
	groups := []skipGroup{}
	for _, kind := range skipKindOrder {
		if len(buckets[kind]) > 0 {
			groups = append(groups, skipGroup{label: string(kind), outcomes: buckets[kind]})
		}
	}
	if len(unclassified) > 0 {
		groups = append(groups, skipGroup{label: otherSkipKindLabelConstant, outcomes: unclassified})
	}
	return groups
}
