package upload

import (
	"context"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/summa-dev/summa-bench/errs"
)

type fakeS3 struct {
	s3iface.S3API
	headErr error
}

func (f *fakeS3) HeadBucketWithContext(aws.Context, *s3.HeadBucketInput, ...request.Option) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

type upload struct {
	bucket, key, acl string
	body             []byte
}

type fakeUploader struct {
	uploads []upload
	err     error
}

func (f *fakeUploader) Upload(in *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	return f.UploadWithContext(context.Background(), in, opts...)
}

func (f *fakeUploader) UploadWithContext(_ aws.Context, in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.uploads = append(f.uploads, upload{
		bucket: aws.StringValue(in.Bucket),
		key:    aws.StringValue(in.Key),
		acl:    aws.StringValue(in.ACL),
		body:   body,
	})
	return &s3manager.UploadOutput{}, nil
}

type fakeMetadata struct {
	id  string
	err error
}

func (f fakeMetadata) GetMetadataWithContext(context.Context, string) (string, error) {
	return f.id, f.err
}

func TestKey(t *testing.T) {
	require.Equal(t, "v1_k4_u4_c1_0abc.json", Key("/tmp/out/v1_k4_u4_c1.json", "0abc"))
	require.Equal(t, "report_x", Key("report", "x"))
}

func TestBenchmarkID(t *testing.T) {
	h := &Helper{metadata: fakeMetadata{id: "i-0123456789abcdef0"}, log: zerolog.Nop()}
	require.Equal(t, "0123456789abcdef0", h.BenchmarkID(context.Background()))

	h.metadata = fakeMetadata{err: errors.New("no imds")}
	id := h.BenchmarkID(context.Background())
	require.Len(t, id, 12)

	h.metadata = nil
	require.Len(t, h.BenchmarkID(context.Background()), 12)
}

func TestFallbackIDIsRandom(t *testing.T) {
	h := &Helper{log: zerolog.Nop()}
	seen := make(map[string]struct{})
	for i := 0; i < 8; i++ {
		id := h.BenchmarkID(context.Background())
		_, err := hex.DecodeString(id)
		require.NoError(t, err)
		seen[id] = struct{}{}
	}
	// A version 1 UUID would repeat the host MAC address here.
	require.Len(t, seen, 8)
}

func TestUploadFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "v1_k4_u4_c1.json")
	b := filepath.Join(dir, "v2_k3_u2_c1.json")
	require.NoError(t, os.WriteFile(a, []byte(`{"k":4}`), 0o644))
	require.NoError(t, os.WriteFile(b, []byte(`{"k":3}`), 0o644))

	up := &fakeUploader{}
	h := &Helper{bucket: "bench", client: &fakeS3{}, uploader: up, log: zerolog.Nop()}
	require.NoError(t, h.CheckAccess(context.Background()))

	keys, err := h.UploadFiles(context.Background(), "host1", []string{a, b})
	require.NoError(t, err)
	require.Equal(t, []string{"v1_k4_u4_c1_host1.json", "v2_k3_u2_c1_host1.json"}, keys)
	require.Len(t, up.uploads, 2)
	require.Equal(t, upload{bucket: "bench", key: "v1_k4_u4_c1_host1.json", acl: "public-read", body: []byte(`{"k":4}`)}, up.uploads[0])

	_, err = h.UploadFiles(context.Background(), "host1", []string{filepath.Join(dir, "missing.json")})
	require.ErrorIs(t, err, errs.ErrIO)
}

func TestUploadFailures(t *testing.T) {
	h := &Helper{bucket: "bench", client: &fakeS3{headErr: errors.New("403")}, uploader: &fakeUploader{err: errors.New("denied")}, log: zerolog.Nop()}
	require.ErrorIs(t, h.CheckAccess(context.Background()), errs.ErrIO)

	path := filepath.Join(t.TempDir(), "v1_k4_u4_c1.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	keys, err := h.UploadFiles(context.Background(), "x", []string{path})
	require.ErrorIs(t, err, errs.ErrIO)
	require.Empty(t, keys)
}

func TestNewHelperRequiresBucket(t *testing.T) {
	_, err := NewHelper(Settings{}, zerolog.Nop())
	require.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("S3_BUCKET", " results ")
	t.Setenv("REGION_NAME", "")
	require.Equal(t, Settings{Bucket: "results", Region: "us-east-1"}, SettingsFromEnv())
}
