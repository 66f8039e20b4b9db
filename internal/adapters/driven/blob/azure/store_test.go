package azure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// fakeAPI is an in-memory container.
type fakeAPI struct {
	blobs      map[string][]byte
	containers map[string]bool
	listErr    error
	putErr     error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{blobs: map[string][]byte{}, containers: map[string]bool{}}
}

func notFound(code bloberror.Code) error {
	return &azcore.ResponseError{ErrorCode: string(code), StatusCode: http.StatusNotFound}
}

func (f *fakeAPI) UploadBuffer(_ context.Context, container, name string, data []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.blobs[container+"/"+name] = append([]byte(nil), data...)
	return nil
}

func (f *fakeAPI) DownloadStream(_ context.Context, container, name string) (io.ReadCloser, error) {
	data, ok := f.blobs[container+"/"+name]
	if !ok {
		return nil, notFound(bloberror.BlobNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeAPI) ListNames(_ context.Context, container, prefix string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var names []string
	for key := range f.blobs {
		name := strings.TrimPrefix(key, container+"/")
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (f *fakeAPI) DeleteBlob(_ context.Context, container, name string) error {
	if _, ok := f.blobs[container+"/"+name]; !ok {
		return notFound(bloberror.BlobNotFound)
	}
	delete(f.blobs, container+"/"+name)
	return nil
}

func (f *fakeAPI) CreateContainer(_ context.Context, container string) error {
	if f.containers[container] {
		return &azcore.ResponseError{ErrorCode: string(bloberror.ContainerAlreadyExists), StatusCode: http.StatusConflict}
	}
	f.containers[container] = true
	return nil
}

func newTestStore() (*Store, *fakeAPI) {
	api := newFakeAPI()
	return &Store{api: api, container: domain.DefaultContainerName}, api
}

func TestNew_RequiresConnectionString(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestPutGetListDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore()

	require.NoError(t, s.Put(ctx, "7/chunks.jil", []byte(`["a"]`)))
	require.NoError(t, s.Put(ctx, "7/faiss_index/index.bin", []byte{1, 2}))
	require.NoError(t, s.Put(ctx, "70/chunks.jil", []byte(`[]`)))

	data, err := s.Get(ctx, "7/chunks.jil")
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, string(data))

	names, err := s.List(ctx, "7/")
	require.NoError(t, err)
	assert.Equal(t, []string{"7/chunks.jil", "7/faiss_index/index.bin"}, names)

	require.NoError(t, s.Delete(ctx, "7/chunks.jil"))
	_, err = s.Get(ctx, "7/chunks.jil")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "7/chunks.jil"), domain.ErrNotFound)
}

func TestList_Error(t *testing.T) {
	s, api := newTestStore()
	api.listErr = errors.New("network down")

	_, err := s.List(context.Background(), "1/")
	assert.ErrorContains(t, err, "network down")
}

func TestEnsureContainer_Idempotent(t *testing.T) {
	s, _ := newTestStore()

	require.NoError(t, s.EnsureContainer(context.Background()))
	assert.NoError(t, s.EnsureContainer(context.Background()))
}

func TestServiceErrorsBecomeStorageUnavailable(t *testing.T) {
	s, api := newTestStore()
	api.putErr = &azcore.ResponseError{ErrorCode: "AuthorizationFailure", StatusCode: http.StatusForbidden}
	api.listErr = &azcore.ResponseError{ErrorCode: "ServerBusy", StatusCode: http.StatusServiceUnavailable}

	err := s.Put(context.Background(), "7/chunks.jil", nil)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.EqualError(t, err, "azure: upload 7/chunks.jil: AuthorizationFailure (status 403): storage unavailable")

	_, err = s.List(context.Background(), "7/")
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.ErrorContains(t, err, "ServerBusy (status 503)")
}

func TestMissingBlobIsNotFoundNotUnavailable(t *testing.T) {
	s, _ := newTestStore()

	_, err := s.Get(context.Background(), "9/manifest.json")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrStorageUnavailable)
}
