package staleness

import (
	"fmt"
	"time"
)

const dateLayoutConstant = "20060102"

// Window is an inclusive YYYYMMDD range. An empty bound is open.
type Window struct {
	Start string
	End   string
}

// LookbackWindow returns the range from now minus days to now.
func LookbackWindow(now time.Time, days int) Window {
	return Window{
		Start: now.AddDate(0, 0, -days).Format(dateLayoutConstant),
		End:   now.Format(dateLayoutConstant),
	}
}

// Contains reports whether an 8 digit date falls inside the window.
// Dates compare lexically, which matches chronological order for YYYYMMDD.
func (window Window) Contains(date string) bool {
	if len(window.Start) > 0 && date < window.Start {
		return false
	}
	if len(window.End) > 0 && date > window.End {
		return false
	}
	return true
}

// Describe renders the window for progress output.
func (window Window) Describe() string {
	switch {
	case len(window.Start) > 0 && len(window.End) > 0:
		return fmt.Sprintf("%s to %s", window.Start, window.End)
	case len(window.Start) > 0:
		return fmt.Sprintf("from %s", window.Start)
	case len(window.End) > 0:
		return fmt.Sprintf("until %s", window.End)
	default:
		return "any date"
	}
}
