package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"placement-backend/internal/shared/storage/object"
)

// Metadata keys written on every object.
const (
	metaKind     = "placement-kind"
	metaUserHash = "placement-user"
)

type api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store keeps job description uploads and resume exports in one bucket,
// encrypted at rest.
type Store struct {
	client   api
	bucket   string
	prefix   string
	kmsKeyID string
}

// New loads the default AWS config and returns a bucket-backed store.
func New(ctx context.Context, region, bucket, prefix, kmsKeyID string) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newStore(s3.NewFromConfig(cfg), bucket, prefix, kmsKeyID), nil
}

func newStore(client api, bucket, prefix, kmsKeyID string) *Store {
	return &Store{
		client:   client,
		bucket:   bucket,
		prefix:   strings.Trim(strings.TrimSpace(prefix), "/"),
		kmsKeyID: strings.TrimSpace(kmsKeyID),
	}
}

// Save buffers the upload so the request carries a content length, then puts
// it under the user's namespace. Resume exports download as attachments.
func (s *Store) Save(ctx context.Context, up object.Upload, r io.Reader) (object.Stored, error) {
	key, mimeType, body, err := object.Prepare(ctx, up, r)
	if err != nil {
		return object.Stored{}, err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return object.Stored{}, fmt.Errorf("read upload: %w", err)
	}

	in := s.putInput(key, up, mimeType, data)
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return object.Stored{}, fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, *in.Key, err)
	}
	return object.Stored{Key: key, SizeBytes: int64(len(data)), MimeType: mimeType}, nil
}

func (s *Store) putInput(key string, up object.Upload, mimeType string, data []byte) *s3.PutObjectInput {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(key)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(mimeType),
		Metadata: map[string]string{
			metaKind:     string(up.Kind),
			metaUserHash: object.UserPrefix(up.UserID),
		},
	}
	if up.Kind == object.KindResumeExport {
		in.ContentDisposition = aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": up.FileName}))
	}
	if s.kmsKeyID != "" {
		in.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		in.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		in.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}
	return in
}

// Open streams a stored object. Keys not produced by Save are rejected
// before any request is made.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := object.KindOf(storageKey); err != nil {
		return nil, err
	}
	objectKey := s.objectKey(storageKey)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, objectKey, err)
	}
	return out.Body, nil
}

func (s *Store) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}

var _ object.ObjectStore = (*Store)(nil)
