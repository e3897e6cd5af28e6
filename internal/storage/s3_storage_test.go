package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		b, _ := io.ReadAll(params.Body)
		f.body = string(b)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Storage_Archive(t *testing.T) {
	putter := &fakePutter{}
	store := newS3Storage(putter, "bookcity-reports", "ap-south-1", "")

	url, err := store.Archive(context.Background(), []byte("a,b\n1,2\n"), "csv", "text/csv")
	require.NoError(t, err)

	key := aws.ToString(putter.input.Key)
	assert.True(t, strings.HasPrefix(key, "reports/"))
	assert.True(t, strings.HasSuffix(key, ".csv"))
	assert.Equal(t, "bookcity-reports", aws.ToString(putter.input.Bucket))
	assert.Equal(t, "text/csv", aws.ToString(putter.input.ContentType))
	assert.Equal(t, "a,b\n1,2\n", putter.body)
	assert.Equal(t, "https://bookcity-reports.s3.ap-south-1.amazonaws.com/"+key, url)
}

func TestS3Storage_Archive_BaseURL(t *testing.T) {
	putter := &fakePutter{}
	store := newS3Storage(putter, "bucket", "ap-south-1", "https://cdn.example.com/")

	url, err := store.Archive(context.Background(), []byte("x"), ".xlsx", "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/"+aws.ToString(putter.input.Key), url)
	assert.True(t, strings.HasSuffix(url, ".xlsx"))
}

func TestS3Storage_Archive_Error(t *testing.T) {
	store := newS3Storage(&fakePutter{err: errors.New("denied")}, "bucket", "ap-south-1", "")

	url, err := store.Archive(context.Background(), []byte("x"), "csv", "text/csv")
	assert.Error(t, err)
	assert.Empty(t, url)
}
