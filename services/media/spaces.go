package media

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// SpacesStore uploads media to an S3-compatible bucket (DigitalOcean
// Spaces, MinIO, S3 proper).
type SpacesStore struct {
	s3Client *s3.S3
	bucket   string
	endpoint string
	prefix   string
	cdnURL   string
}

// SpacesConfig holds configuration for the S3-compatible media store.
type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
	Prefix    string
	CDNURL    string
}

// NewSpacesStore creates a new S3-compatible media store.
func NewSpacesStore(config SpacesConfig) (*SpacesStore, error) {
	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Endpoint:         aws.String(config.Endpoint),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create media store session: %w", err)
	}

	return &SpacesStore{
		s3Client: s3.New(sess),
		bucket:   config.Bucket,
		endpoint: config.Endpoint,
		prefix:   config.Prefix,
		cdnURL:   config.CDNURL,
	}, nil
}

// Save uploads data under the sanitized basename and returns a public URL.
// Uploads are skipped when the object already exists, so re-imports never
// replace attached media.
func (s *SpacesStore) Save(ctx context.Context, name string, data []byte) (string, error) {
	key := SafeBasename(name)
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}

	_, err := s.s3Client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return s.publicURL(key), nil
	}

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        aws.ReadSeekCloser(bytes.NewReader(data)),
		ACL:         aws.String("public-read"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload media: %w", err)
	}

	return s.publicURL(key), nil
}

func (s *SpacesStore) publicURL(key string) string {
	if s.cdnURL != "" {
		return fmt.Sprintf("%s/%s", s.cdnURL, key)
	}
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, s.endpoint, key)
}
