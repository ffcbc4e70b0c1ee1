package registry_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-containerregistry/pkg/name"
	ggcrregistry "github.com/google/go-containerregistry/pkg/registry"
	"github.com/google/go-containerregistry/pkg/v1/random"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/hallmonitor/internal/registry"
)

func TestOCITagSourceListsTags(testInstance *testing.T) {
	server := httptest.NewServer(ggcrregistry.New())
	defer server.Close()
	host := strings.TrimPrefix(server.URL, "http://")

	image, imageError := random.Image(64, 1)
	require.NoError(testInstance, imageError)
	for _, tagName := range []string{"sc-20240105-abc1234", "latest"} {
		tag, tagError := name.NewTag(host+"/team/app:"+tagName, name.Insecure)
		require.NoError(testInstance, tagError)
		require.NoError(testInstance, remote.Write(tag, image))
	}

	source, creationError := registry.NewOCITagSource(zap.NewNop(), registry.OCIOptions{Insecure: true})
	require.NoError(testInstance, creationError)

	tags, fetchError := source.FetchAllTags(context.Background(), registry.RepositoryReference{Host: host, Namespace: "team", Path: "app"})
	require.NoError(testInstance, fetchError)

	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
		require.Empty(testInstance, tag.ManifestDigest)
	}
	require.ElementsMatch(testInstance, []string{"sc-20240105-abc1234", "latest"}, names)
}

func TestOCITagSourceMissingRepository(testInstance *testing.T) {
	server := httptest.NewServer(ggcrregistry.New())
	defer server.Close()
	host := strings.TrimPrefix(server.URL, "http://")

	source, creationError := registry.NewOCITagSource(zap.NewNop(), registry.OCIOptions{Insecure: true})
	require.NoError(testInstance, creationError)

	_, fetchError := source.FetchAllTags(context.Background(), registry.RepositoryReference{Host: host, Namespace: "team", Path: "missing"})
	require.True(testInstance, errors.Is(fetchError, registry.ErrRepositoryNotFoundOrPrivate))
}
