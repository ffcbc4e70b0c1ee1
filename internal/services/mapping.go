package services

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMappingEmpty indicates a mapping file without any service.
	ErrMappingEmpty = errors.New("no repositories found in config file")
	// ErrMappingNotObject indicates a mapping document that is not a key/value object.
	ErrMappingNotObject = errors.New("service mapping must be an object of service: registry reference")
)

// Entry is one service and its registry reference.
type Entry struct {
	Service   string
	Reference string
}

// Mapping is the service list in file order.
type Mapping struct {
	entries []Entry
}

// NewMapping builds a mapping from entries, keeping their order. Later
// duplicates replace the reference but keep the first position.
func NewMapping(entries ...Entry) Mapping {
	mapping := Mapping{}
	positions := map[string]int{}
	for _, entry := range entries {
		if position, exists := positions[entry.Service]; exists {
			mapping.entries[position].Reference = entry.Reference
			continue
		}
		positions[entry.Service] = len(mapping.entries)
		mapping.entries = append(mapping.entries, entry)
	}
	return mapping
}

// Entries returns a copy of the ordered entries.
func (mapping Mapping) Entries() []Entry {
	return append([]Entry(nil), mapping.entries...)
}

// Len reports the number of services.
func (mapping Mapping) Len() int {
	return len(mapping.entries)
}

// Filter keeps only the named services, preserving mapping order. An empty
// filter returns the mapping unchanged.
func (mapping Mapping) Filter(serviceNames []string) Mapping {
	if len(serviceNames) == 0 {
		return mapping
	}
	wanted := map[string]struct{}{}
	for _, serviceName := range serviceNames {
		wanted[strings.TrimSpace(serviceName)] = struct{}{}
	}
	filtered := Mapping{}
	for _, entry := range mapping.entries {
		if _, keep := wanted[entry.Service]; keep {
			filtered.entries = append(filtered.entries, entry)
		}
	}
	return filtered
}

// AsMap returns the mapping as an unordered map.
func (mapping Mapping) AsMap() map[string]string {
	result := make(map[string]string, len(mapping.entries))
	for _, entry := range mapping.entries {
		result[entry.Service] = entry.Reference
	}
	return result
}

// ParseMapping decodes a JSON or YAML object preserving key order.
func ParseMapping(content []byte) (Mapping, error) {
	document := yaml.Node{}
	if decodeError := yaml.Unmarshal(content, &document); decodeError != nil {
		return Mapping{}, fmt.Errorf("invalid service mapping: %w", decodeError)
	}
	if len(document.Content) == 0 {
		return Mapping{}, ErrMappingEmpty
	}
	root := document.Content[0]
	if root.Kind != yaml.MappingNode {
		return Mapping{}, ErrMappingNotObject
	}

	entries := make([]Entry, 0, len(root.Content)/2)
	for index := 0; index+1 < len(root.Content); index += 2 {
		keyNode, valueNode := root.Content[index], root.Content[index+1]
		if valueNode.Kind != yaml.ScalarNode {
			return Mapping{}, fmt.Errorf("service %q: %w", keyNode.Value, ErrMappingNotObject)
		}
		entries = append(entries, Entry{Service: keyNode.Value, Reference: strings.TrimSpace(valueNode.Value)})
	}
	mapping := NewMapping(entries...)
	if mapping.Len() == 0 {
		return Mapping{}, ErrMappingEmpty
	}
	return mapping, nil
}

// LoadMapping reads and parses a mapping file.
func LoadMapping(filePath string) (Mapping, error) {
	content, readError := os.ReadFile(filePath)
	if readError != nil {
		return Mapping{}, fmt.Errorf("reading service mapping %s: %w", filePath, readError)
	}
	return ParseMapping(content)
}
