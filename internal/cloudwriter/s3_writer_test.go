package cloudwriter

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	calls  int
	bucket string
	key    string
	body   []byte
	err    error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.calls++
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3WriterUploadsOnClose(t *testing.T) {
	client := &fakeS3{}
	w, err := NewS3WriterFactoryWithClient(client).NewWriter("pulse-archive", "events/order_placed_events/data.parquet")
	require.NoError(t, err)

	_, _ = w.Write([]byte("PAR1"))
	_, _ = w.Write([]byte("...PAR1"))
	assert.Equal(t, 0, client.calls)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	assert.Equal(t, 1, client.calls)
	assert.Equal(t, "pulse-archive", client.bucket)
	assert.Equal(t, "events/order_placed_events/data.parquet", client.key)
	assert.Equal(t, "PAR1...PAR1", string(client.body))

	_, err = w.Write([]byte("late"))
	assert.Error(t, err)
}

func TestS3WriterReportsUploadFailure(t *testing.T) {
	client := &fakeS3{err: errors.New("access denied")}
	w, _ := NewS3WriterFactoryWithClient(client).NewWriter("pulse-archive", "k")

	err := w.Close()
	assert.ErrorContains(t, err, "access denied")
}

func TestS3WriterRequiresBucket(t *testing.T) {
	_, err := NewS3WriterFactoryWithClient(&fakeS3{}).NewWriter("", "k")
	assert.Error(t, err)
}
