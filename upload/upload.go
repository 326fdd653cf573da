// Package upload publishes result files to S3 under a per-host benchmark id.
package upload

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/ec2metadata"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/summa-dev/summa-bench/errs"
)

const (
	defaultRegion   = "us-east-1"
	metadataTimeout = 3 * time.Second
	publicReadACL   = "public-read"
)

// Settings come from S3_BUCKET and REGION_NAME unless overridden by flags.
type Settings struct {
	Bucket string
	Region string
}

func SettingsFromEnv() Settings {
	s := Settings{
		Bucket: strings.TrimSpace(os.Getenv("S3_BUCKET")),
		Region: strings.TrimSpace(os.Getenv("REGION_NAME")),
	}
	if s.Region == "" {
		s.Region = defaultRegion
	}
	return s
}

type instanceMetadata interface {
	GetMetadataWithContext(ctx context.Context, p string) (string, error)
}

// Helper wraps the S3 clients for one bucket.
type Helper struct {
	bucket   string
	client   s3iface.S3API
	uploader s3manageriface.UploaderAPI
	metadata instanceMetadata
	log      zerolog.Logger
}

func NewHelper(s Settings, log zerolog.Logger) (*Helper, error) {
	if s.Bucket == "" {
		return nil, fmt.Errorf("%w: S3_BUCKET is required for upload", errs.ErrInvalidConfiguration)
	}
	region := s.Region
	if region == "" {
		region = defaultRegion
	}
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("%w: aws session: %w", errs.ErrIO, err)
	}
	return &Helper{
		bucket:   s.Bucket,
		client:   s3.New(sess),
		uploader: s3manager.NewUploader(sess),
		metadata: ec2metadata.New(sess),
		log:      log,
	}, nil
}

// CheckAccess fails when the bucket does not exist or the caller cannot reach it.
func (h *Helper) CheckAccess(ctx context.Context) error {
	_, err := h.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(h.bucket)})
	if err != nil {
		return fmt.Errorf("%w: bucket %s not accessible: %w", errs.ErrIO, h.bucket, err)
	}
	return nil
}

// BenchmarkID identifies this host: the EC2 instance id without its "i-" prefix,
// or the node field of a fresh time-based UUID when no metadata service answers.
func (h *Helper) BenchmarkID(ctx context.Context) string {
	if h.metadata != nil {
		mctx, cancel := context.WithTimeout(ctx, metadataTimeout)
		defer cancel()
		id, err := h.metadata.GetMetadataWithContext(mctx, "instance-id")
		if err == nil && strings.TrimSpace(id) != "" {
			return strings.TrimPrefix(strings.TrimSpace(id), "i-")
		}
		h.log.Debug().Err(err).Msg("instance metadata unavailable, using uuid node id")
	}
	return uuidNodeID()
}

// uuidNodeID is the node field of a random (version 4) UUID.
func uuidNodeID() string {
	return hex.EncodeToString(uuid.New().NodeID())
}

// Key inserts _<id> before the file extension of path's base name.
func Key(path, id string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_" + id + ext
}

// UploadFiles publishes every file with a public-read ACL and returns the keys
// used, in order. It stops at the first failure.
func (h *Helper) UploadFiles(ctx context.Context, id string, files []string) ([]string, error) {
	keys := make([]string, 0, len(files))
	for _, path := range files {
		key := Key(path, id)
		if err := h.uploadFile(ctx, path, key); err != nil {
			return keys, err
		}
		h.log.Info().Str("file", path).Str("bucket", h.bucket).Str("key", key).Msg("uploaded result")
		keys = append(keys, key)
	}
	return keys, nil
}

func (h *Helper) uploadFile(ctx context.Context, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", errs.ErrIO, path, err)
	}
	defer f.Close()

	_, err = h.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(h.bucket),
		Key:         aws.String(key),
		Body:        f,
		ACL:         aws.String(publicReadACL),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("%w: upload %s to s3://%s/%s: %w", errs.ErrIO, path, h.bucket, key, err)
	}
	return nil
}
