package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultQuayBaseURL is the public Quay endpoint.
	DefaultQuayBaseURL = "https://quay.io"
	// DefaultQuayHost is the registry host assumed for references without one.
	DefaultQuayHost = "quay.io"
	// DefaultPageSize is the number of tags requested per page.
	DefaultPageSize = 100

	quayTagPathTemplateConstant = "%s/api/v1/repository/%s/%s/tag/"
	pageQueryKeyConstant        = "page"
	limitQueryKeyConstant       = "limit"
	authorizationHeaderConstant = "Authorization"
	bearerPrefixConstant        = "Bearer "
	acceptHeaderConstant        = "Accept"
	jsonMediaTypeConstant       = "application/json"
	errorBodyLimitConstant      = 512
)

var (
	// ErrHTTPClientNotConfigured indicates a missing HTTP client.
	ErrHTTPClientNotConfigured = errors.New("registry: http client not configured")
	// ErrLoggerNotConfigured indicates a missing logger.
	ErrLoggerNotConfigured = errors.New("registry: logger not configured")
)

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// QuayOptions configures QuayTagSource.
type QuayOptions struct {
	BaseURL  string
	PageSize int
	Token    string
}

// QuayTagSource lists tags through the Quay REST API.
type QuayTagSource struct {
	client   HTTPClient
	logger   *zap.Logger
	baseURL  string
	pageSize int
	token    string
}

type quayTagPage struct {
	Tags          []json.RawMessage `json:"tags"`
	HasAdditional bool              `json:"has_additional"`
}

type quayTagRecord struct {
	Name           string `json:"name"`
	ManifestDigest string `json:"manifest_digest"`
}

// NewQuayTagSource validates dependencies and applies option defaults.
func NewQuayTagSource(client HTTPClient, logger *zap.Logger, options QuayOptions) (*QuayTagSource, error) {
	if client == nil {
		return nil, ErrHTTPClientNotConfigured
	}
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	baseURL := strings.TrimRight(strings.TrimSpace(options.BaseURL), "/")
	if len(baseURL) == 0 {
		baseURL = DefaultQuayBaseURL
	}
	pageSize := options.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &QuayTagSource{client: client, logger: logger, baseURL: baseURL, pageSize: pageSize, token: strings.TrimSpace(options.Token)}, nil
}

// FetchAllTags requests pages starting at 1 until a page is empty or reports
// no additional pages. Any failed page aborts the listing.
func (source *QuayTagSource) FetchAllTags(executionContext context.Context, reference RepositoryReference) ([]Tag, error) {
	repository := reference.RepositoryPath()
	tags := []Tag{}
	for page := 1; ; page++ {
		tagPage, fetchError := source.fetchPage(executionContext, reference, page)
		if fetchError != nil {
			return nil, fetchError
		}
		if len(tagPage.Tags) == 0 {
			break
		}
		for _, rawTag := range tagPage.Tags {
			record := quayTagRecord{}
			if decodeError := json.Unmarshal(rawTag, &record); decodeError != nil {
				return nil, FetchError{Repository: repository, StatusCode: http.StatusOK, Cause: decodeError}
			}
			tags = append(tags, Tag{Name: record.Name, ManifestDigest: record.ManifestDigest, Raw: rawTag})
		}
		source.logger.Debug("Fetched tag page", zap.String("repository", repository), zap.Int("page", page), zap.Int("tags", len(tagPage.Tags)))
		if !tagPage.HasAdditional {
			break
		}
	}
	return tags, nil
}

func (source *QuayTagSource) fetchPage(executionContext context.Context, reference RepositoryReference, page int) (quayTagPage, error) {
	repository := reference.RepositoryPath()
	query := url.Values{}
	query.Set(pageQueryKeyConstant, strconv.Itoa(page))
	query.Set(limitQueryKeyConstant, strconv.Itoa(source.pageSize))
	requestURL := fmt.Sprintf(quayTagPathTemplateConstant, source.baseURL, reference.Namespace, reference.Path) + "?" + query.Encode()

	request, requestError := http.NewRequestWithContext(executionContext, http.MethodGet, requestURL, nil)
	if requestError != nil {
		return quayTagPage{}, FetchError{Repository: repository, Cause: requestError}
	}
	request.Header.Set(acceptHeaderConstant, jsonMediaTypeConstant)
	if len(source.token) > 0 {
		request.Header.Set(authorizationHeaderConstant, bearerPrefixConstant+source.token)
	}

	response, responseError := source.client.Do(request)
	if responseError != nil {
		return quayTagPage{}, FetchError{Repository: repository, Cause: responseError}
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return quayTagPage{}, FetchError{Repository: repository, StatusCode: response.StatusCode, Cause: ErrRepositoryNotFoundOrPrivate}
	}
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(response.Body, errorBodyLimitConstant))
		return quayTagPage{}, FetchError{Repository: repository, StatusCode: response.StatusCode, Cause: errors.New(strings.TrimSpace(string(body)))}
	}

	tagPage := quayTagPage{}
	if decodeError := json.NewDecoder(response.Body).Decode(&tagPage); decodeError != nil {
		return quayTagPage{}, FetchError{Repository: repository, StatusCode: response.StatusCode, Cause: decodeError}
	}
	return tagPage, nil
}
