package staleness

import (
	"strings"

	"github.com/temirov/hallmonitor/internal/registry"
)

const (
	securityComplianceTagPrefixConstant = "sc-"
	tagSegmentSeparatorConstant         = "-"
	minimumTagSegmentsConstant          = 3
	tagDateLengthConstant               = 8
)

// DateTaggedMatch is a tag that satisfied the naming convention and the window.
type DateTaggedMatch struct {
	Tag  registry.Tag
	Date string
}

// ExtractTagDate returns the date segment of an "sc-<YYYYMMDD>-<rest>" tag.
func ExtractTagDate(tagName string) (string, bool) {
	if !strings.HasPrefix(tagName, securityComplianceTagPrefixConstant) {
		return "", false
	}
	segments := strings.Split(tagName, tagSegmentSeparatorConstant)
	if len(segments) < minimumTagSegmentsConstant {
		return "", false
	}
	date := segments[1]
	if len(date) != tagDateLengthConstant {
		return "", false
	}
	for index := 0; index < len(date); index++ {
		if date[index] < '0' || date[index] > '9' {
			return "", false
		}
	}
	return date, true
}

// MatchTag reports whether the tag follows the convention and falls inside window.
func MatchTag(tagName string, window Window) (string, bool) {
	date, conforms := ExtractTagDate(tagName)
	if !conforms || !window.Contains(date) {
		return "", false
	}
	return date, true
}

// MatchTags filters tags keeping listing order.
func MatchTags(tags []registry.Tag, window Window) []DateTaggedMatch {
	matches := []DateTaggedMatch{}
	for _, tag := range tags {
		if date, matched := MatchTag(tag.Name, window); matched {
			matches = append(matches, DateTaggedMatch{Tag: tag, Date: date})
		}
	}
	return matches
}
