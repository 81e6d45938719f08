package blob_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/launchkit/pkg/blob"
)

// pngHeader is a minimal valid PNG signature followed by padding so that
// http.DetectContentType recognizes it.
var pngHeader = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, bytes.Repeat([]byte{0}, 64)...)

type fakeS3 struct {
	putKey      string
	putType     string
	deleted     string
	headMissing bool
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putKey = *params.Key
	f.putType = *params.ContentType
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = *params.Key
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	return &s3.HeadObjectOutput{}, nil
}

func TestStorage_Put(t *testing.T) {
	t.Parallel()

	t.Run("uploads detected image", func(t *testing.T) {
		t.Parallel()

		fake := &fakeS3{}
		st, err := blob.New(context.Background(), blob.Config{
			Bucket: "avatars",
			Region: "us-east-1",
		}, blob.WithClient(fake))
		require.NoError(t, err)

		err = st.Put(context.Background(), "/users/42/avatar.png", pngHeader)
		require.NoError(t, err)
		assert.Equal(t, "users/42/avatar.png", fake.putKey)
		assert.Equal(t, "image/png", fake.putType)
	})

	t.Run("rejects non-image content", func(t *testing.T) {
		t.Parallel()

		st, err := blob.New(context.Background(), blob.Config{
			Bucket: "avatars",
			Region: "us-east-1",
		}, blob.WithClient(&fakeS3{}))
		require.NoError(t, err)

		err = st.Put(context.Background(), "users/42/avatar.png", []byte("#!/bin/sh\nrm -rf"))
		require.ErrorIs(t, err, blob.ErrNotAnImage)
	})

	t.Run("rejects oversized content", func(t *testing.T) {
		t.Parallel()

		st, err := blob.New(context.Background(), blob.Config{
			Bucket:        "avatars",
			Region:        "us-east-1",
			MaxObjectSize: 16,
		}, blob.WithClient(&fakeS3{}))
		require.NoError(t, err)

		err = st.Put(context.Background(), "users/42/avatar.png", pngHeader)
		require.ErrorIs(t, err, blob.ErrObjectTooLarge)
	})

	t.Run("rejects traversal keys", func(t *testing.T) {
		t.Parallel()

		st, err := blob.New(context.Background(), blob.Config{
			Bucket: "avatars",
			Region: "us-east-1",
		}, blob.WithClient(&fakeS3{}))
		require.NoError(t, err)

		err = st.Put(context.Background(), "../secrets", pngHeader)
		require.ErrorIs(t, err, blob.ErrInvalidKey)
	})
}

func TestDetectImageType(t *testing.T) {
	t.Parallel()

	contentType, err := blob.DetectImageType(pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)

	_, err = blob.DetectImageType([]byte("plain text"))
	require.ErrorIs(t, err, blob.ErrNotAnImage)

	_, err = blob.DetectImageType(nil)
	require.ErrorIs(t, err, blob.ErrNotAnImage)
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := blob.New(context.Background(), blob.Config{})
	require.ErrorIs(t, err, blob.ErrInvalidConfig)
}
