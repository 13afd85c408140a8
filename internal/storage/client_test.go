package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockObjectAPI records PutObject calls.
type mockObjectAPI struct {
	calls   []putCall
	err     error
	headErr error
	heads   []string
}

type putCall struct {
	bucket      string
	key         string
	body        []byte
	contentType string
}

func (m *mockObjectAPI) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	body, _ := io.ReadAll(input.Body)
	m.calls = append(m.calls, putCall{
		bucket:      *input.Bucket,
		key:         *input.Key,
		body:        body,
		contentType: *input.ContentType,
	})
	return &s3.PutObjectOutput{}, nil
}

func (m *mockObjectAPI) HeadBucket(_ context.Context, input *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if m.headErr != nil {
		return nil, m.headErr
	}
	m.heads = append(m.heads, *input.Bucket)
	return &s3.HeadBucketOutput{}, nil
}

func TestClient_Upload(t *testing.T) {
	mock := &mockObjectAPI{}
	client := NewClient(mock, "https://cloud.example.com/v1", "docs-bucket", "proj-1", nil)

	ref, err := client.Upload(context.Background(), []byte("%PDF-1.4 fake"), "passport.pdf")
	require.NoError(t, err)
	require.NotNil(t, ref)

	require.Len(t, mock.calls, 1)
	assert.Equal(t, "docs-bucket", mock.calls[0].bucket)
	assert.Equal(t, "identification-documents/"+ref.ID, mock.calls[0].key)
	assert.Equal(t, []byte("%PDF-1.4 fake"), mock.calls[0].body)

	assert.Equal(t,
		"https://cloud.example.com/v1/storage/buckets/docs-bucket/files/"+ref.ID+"/view?project=proj-1",
		ref.URL)
}

func TestClient_UploadError(t *testing.T) {
	mock := &mockObjectAPI{err: errors.New("bucket unreachable")}
	client := NewClient(mock, "https://cloud.example.com", "docs-bucket", "proj-1", nil)

	ref, err := client.Upload(context.Background(), []byte("data"), "id.jpg")
	require.Error(t, err)
	assert.Nil(t, ref)
}

func TestClient_Ping(t *testing.T) {
	mock := &mockObjectAPI{}
	client := NewClient(mock, "https://cloud.example.com", "docs-bucket", "proj-1", nil)

	require.NoError(t, client.Ping(context.Background()))
	require.Len(t, mock.heads, 1)
	assert.Equal(t, "docs-bucket", mock.heads[0])

	mock.headErr = errors.New("bucket unreachable")
	assert.Error(t, client.Ping(context.Background()))
}

func TestClient_FileURLTrimsEndpointSlash(t *testing.T) {
	client := NewClient(&mockObjectAPI{}, "https://cloud.example.com/", "b", "p", nil)
	assert.Equal(t, "https://cloud.example.com/storage/buckets/b/files/abc/view?project=p", client.FileURL("abc"))
}
