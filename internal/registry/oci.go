package registry

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
	"go.uber.org/zap"
)

// OCIOptions configures OCITagSource.
type OCIOptions struct {
	Token     string
	Insecure  bool
	Transport http.RoundTripper
}

// OCITagSource lists tags through the OCI distribution API. Pagination via
// Link headers is handled by go-containerregistry. Tags carry no digest.
type OCITagSource struct {
	logger  *zap.Logger
	options OCIOptions
}

// NewOCITagSource validates dependencies.
func NewOCITagSource(logger *zap.Logger, options OCIOptions) (*OCITagSource, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	options.Token = strings.TrimSpace(options.Token)
	return &OCITagSource{logger: logger, options: options}, nil
}

// FetchAllTags lists every tag of the repository.
func (source *OCITagSource) FetchAllTags(executionContext context.Context, reference RepositoryReference) ([]Tag, error) {
	nameOptions := []name.Option{name.WeakValidation}
	if source.options.Insecure {
		nameOptions = append(nameOptions, name.Insecure)
	}
	repository, parseError := name.NewRepository(reference.String(), nameOptions...)
	if parseError != nil {
		return nil, FetchError{Repository: reference.String(), Cause: parseError}
	}

	remoteOptions := []remote.Option{remote.WithContext(executionContext)}
	if len(source.options.Token) > 0 {
		remoteOptions = append(remoteOptions, remote.WithAuth(&authn.Bearer{Token: source.options.Token}))
	}
	if source.options.Transport != nil {
		remoteOptions = append(remoteOptions, remote.WithTransport(source.options.Transport))
	}

	names, listError := remote.List(repository, remoteOptions...)
	if listError != nil {
		return nil, classifyListError(reference.String(), listError)
	}

	tags := make([]Tag, 0, len(names))
	for _, tagName := range names {
		tags = append(tags, Tag{Name: tagName})
	}
	source.logger.Debug("Listed OCI tags", zap.String("repository", reference.String()), zap.Int("tags", len(tags)))
	return tags, nil
}

func classifyListError(repository string, listError error) error {
	var transportError *transport.Error
	if errors.As(listError, &transportError) {
		if transportError.StatusCode == http.StatusNotFound {
			return FetchError{Repository: repository, StatusCode: transportError.StatusCode, Cause: ErrRepositoryNotFoundOrPrivate}
		}
		return FetchError{Repository: repository, StatusCode: transportError.StatusCode, Cause: listError}
	}
	return FetchError{Repository: repository, Cause: listError}
}
