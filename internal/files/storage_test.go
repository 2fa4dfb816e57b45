package files

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts []s3.PutObjectInput
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, *in)
	return &s3.PutObjectOutput{}, f.err
}

func fixedStorage(fake *fakeS3, at time.Time) *Storage {
	s := NewStorage(fake, "mylg-uploads", "https://cdn.mylg.studio")
	s.now = func() time.Time { return at }
	return s
}

func TestStorageKeys(t *testing.T) {
	assert.Equal(t, "userData-thumbnails/u1/avatar.png", ThumbnailKey("u1", "avatar.png"))
	assert.Equal(t, "projects/p1/uploads/floorplan.pdf", ProjectUploadKey("p1", "floorplan.pdf"))
}

func TestStorage_UploadThumbnail(t *testing.T) {
	fake := &fakeS3{}
	at := time.Unix(1700000000, 0)
	s := fixedStorage(fake, at)

	url, err := s.UploadThumbnail(context.Background(), "u1", "avatar.png", "image/png", strings.NewReader("img"))
	require.NoError(t, err)

	require.Len(t, fake.puts, 1)
	assert.Equal(t, "mylg-uploads", *fake.puts[0].Bucket)
	assert.Equal(t, "userData-thumbnails/u1/avatar.png", *fake.puts[0].Key)
	assert.Equal(t, "image/png", *fake.puts[0].ContentType)
	assert.Equal(t, fmt.Sprintf("https://cdn.mylg.studio/userData-thumbnails/u1/avatar.png?t=%d", at.Unix()), url)
}

func TestStorage_UploadProjectFile(t *testing.T) {
	t.Run("builds the public URL with a cache buster", func(t *testing.T) {
		fake := &fakeS3{}
		s := fixedStorage(fake, time.Unix(42, 0))

		url, err := s.UploadProjectFile(context.Background(), "p1", "floorplan.pdf", "application/pdf", strings.NewReader("pdf"))
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.mylg.studio/projects/p1/uploads/floorplan.pdf?t=42", url)
	})

	t.Run("propagates put failures", func(t *testing.T) {
		fake := &fakeS3{err: assert.AnError}
		s := fixedStorage(fake, time.Unix(42, 0))

		_, err := s.UploadProjectFile(context.Background(), "p1", "x.pdf", "application/pdf", strings.NewReader(""))
		assert.ErrorIs(t, err, assert.AnError)
	})
}
