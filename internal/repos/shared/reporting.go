package shared

import (
	"fmt"
	"io"
	"sync"
)

// Reporter emits human readable progress lines.
type Reporter interface {
	Printf(format string, args ...any)
}

type writerReporter struct {
	mutex  sync.Mutex
	writer io.Writer
}

// NewWriterReporter writes progress to writer. A nil writer discards output.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil {
		writer = io.Discard
	}
	return &writerReporter{writer: writer}
}

func (reporter *writerReporter) Printf(format string, args ...any) {
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()
	fmt.Fprintf(reporter.writer, format, args...)
}
