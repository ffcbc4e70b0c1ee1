package references

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

const (
	quayRepositoryURLPrefixConstant = "https://quay.io/repository/"
	quayRepositoryPrefixConstant    = "quay.io/"
	tableCellSeparatorConstant      = "|"
	tableDividerMarkerConstant      = "|---"
	headingMarkerConstant           = "##"
	jsonIndentConstant              = "  "
	readMarkdownErrorTemplate       = "reading markdown %s: %w"
	writeMappingErrorTemplate       = "writing mapping %s: %w"
	encodeMappingErrorTemplate      = "encoding mapping: %w"
)

// ErrMarkdownPathRequired indicates no markdown source was configured.
var ErrMarkdownPathRequired = errors.New("markdown file path not specified")

var quayLinkPattern = regexp.MustCompile(`\[quay\.io\]\((https://quay\.io/repository/[^)]+)\)`)

// ExtractQuayReference returns the registry reference of a markdown quay.io
// link, e.g. "[quay.io](https://quay.io/repository/org/app)" becomes
// "quay.io/org/app".
func ExtractQuayReference(cell string) (string, bool) {
	match := quayLinkPattern.FindStringSubmatch(cell)
	if match == nil {
		return "", false
	}
	return strings.Replace(match[1], quayRepositoryURLPrefixConstant, quayRepositoryPrefixConstant, 1), true
}

// ParseMarkdownTable reads table rows of the form
// "| service | [quay.io](https://quay.io/repository/...) | ..." and returns the
// service to reference map. Headings, dividers and rows without a quay.io link
// in the second column are ignored. Later rows win for duplicate services.
func ParseMarkdownTable(reader io.Reader) (map[string]string, error) {
	mapping := map[string]string{}
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, headingMarkerConstant) || strings.Contains(line, tableDividerMarkerConstant) {
			continue
		}
		if !strings.HasPrefix(line, tableCellSeparatorConstant) {
			continue
		}
		cells := strings.Split(line, tableCellSeparatorConstant)
		if len(cells) < 3 {
			continue
		}
		serviceName := strings.TrimSpace(cells[1])
		reference, found := ExtractQuayReference(strings.TrimSpace(cells[2]))
		if len(serviceName) == 0 || !found {
			continue
		}
		mapping[serviceName] = reference
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return mapping, nil
}

// EncodeMapping renders the mapping as JSON with sorted keys and two space indentation.
func EncodeMapping(mapping map[string]string) ([]byte, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", jsonIndentConstant)
	if encodeError := encoder.Encode(mapping); encodeError != nil {
		return nil, fmt.Errorf(encodeMappingErrorTemplate, encodeError)
	}
	return buffer.Bytes(), nil
}

// ConversionResult describes a completed conversion.
type ConversionResult struct {
	MarkdownPath string
	OutputPath   string
	Mapping      map[string]string
}

// SortedServices lists the converted service names.
func (result ConversionResult) SortedServices() []string {
	serviceNames := make([]string, 0, len(result.Mapping))
	for serviceName := range result.Mapping {
		serviceNames = append(serviceNames, serviceName)
	}
	sort.Strings(serviceNames)
	return serviceNames
}

// ConvertFile parses markdownPath and writes the JSON mapping to outputPath.
func ConvertFile(markdownPath string, outputPath string) (ConversionResult, error) {
	result := ConversionResult{MarkdownPath: markdownPath, OutputPath: outputPath}
	if len(strings.TrimSpace(markdownPath)) == 0 {
		return result, ErrMarkdownPathRequired
	}

	markdownFile, openError := os.Open(markdownPath)
	if openError != nil {
		return result, fmt.Errorf(readMarkdownErrorTemplate, markdownPath, openError)
	}
	defer markdownFile.Close()

	mapping, parseError := ParseMarkdownTable(markdownFile)
	if parseError != nil {
		return result, fmt.Errorf(readMarkdownErrorTemplate, markdownPath, parseError)
	}
	result.Mapping = mapping

	encoded, encodeError := EncodeMapping(mapping)
	if encodeError != nil {
		return result, encodeError
	}
	if writeError := os.WriteFile(outputPath, encoded, 0o644); writeError != nil {
		return result, fmt.Errorf(writeMappingErrorTemplate, outputPath, writeError)
	}
	return result, nil
}
