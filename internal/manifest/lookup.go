package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PipelineAnnotationKey is the annotation holding the pipeline URL.
const PipelineAnnotationKey = "pipelinesascode.tekton.dev/pipeline"

const (
	missingMetadataReasonConstant       = "no metadata found"
	missingAnnotationReasonConstant     = "no pipeline annotation found"
	nonStringAnnotationReason           = "pipeline annotation is not a string"
	documentNotMappingReasonConstant    = "document is not a map"
	metadataNotMappingReasonConstant    = "metadata is not a map"
	annotationsNotMappingReasonConstant = "annotations is not a map"
	metadataKeyConstant                 = "metadata"
	annotationsKeyConstant              = "annotations"
)

// ParseError reports a manifest that is not valid YAML.
type ParseError struct {
	Path  string
	Cause error
}

func (parseError ParseError) Error() string {
	return fmt.Sprintf("parsing manifest %s: %v", parseError.Path, parseError.Cause)
}

func (parseError ParseError) Unwrap() error {
	return parseError.Cause
}

// pipelineReference is the outcome of the annotation lookup: either a URL or
// the reason the file carries none.
type pipelineReference struct {
	url           string
	absenceReason string
}

func (reference pipelineReference) present() bool {
	return len(reference.absenceReason) == 0
}

func lookupPipelineReference(filePath string, content []byte) (pipelineReference, error) {
	document := yaml.Node{}
	if decodeError := yaml.Unmarshal(content, &document); decodeError != nil {
		return pipelineReference{}, ParseError{Path: filePath, Cause: decodeError}
	}
	if document.Kind == 0 || len(document.Content) == 0 {
		return pipelineReference{absenceReason: missingMetadataReasonConstant}, nil
	}
	root := document.Content[0]
	if root.Kind != yaml.MappingNode {
		return pipelineReference{absenceReason: documentNotMappingReasonConstant}, nil
	}

	metadata := mappingValue(root, metadataKeyConstant)
	if metadata == nil || isNull(metadata) {
		return pipelineReference{absenceReason: missingMetadataReasonConstant}, nil
	}
	if metadata.Kind != yaml.MappingNode {
		return pipelineReference{absenceReason: metadataNotMappingReasonConstant}, nil
	}

	annotations := mappingValue(metadata, annotationsKeyConstant)
	if annotations == nil || isNull(annotations) {
		return pipelineReference{absenceReason: missingAnnotationReasonConstant}, nil
	}
	if annotations.Kind != yaml.MappingNode {
		return pipelineReference{absenceReason: annotationsNotMappingReasonConstant}, nil
	}

	value := mappingValue(annotations, PipelineAnnotationKey)
	if value == nil {
		return pipelineReference{absenceReason: missingAnnotationReasonConstant}, nil
	}
	if value.Kind != yaml.ScalarNode || value.Tag != "!!str" {
		return pipelineReference{absenceReason: nonStringAnnotationReason}, nil
	}
	return pipelineReference{url: value.Value}, nil
}

// mappingValue returns the value node stored under key, following aliases.
func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	for index := 0; index+1 < len(mapping.Content); index += 2 {
		if mapping.Content[index].Value != key {
			continue
		}
		value := mapping.Content[index+1]
		for value.Kind == yaml.AliasNode && value.Alias != nil {
			value = value.Alias
		}
		return value
	}
	return nil
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}
