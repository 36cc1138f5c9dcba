package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store keeps post images in an S3 bucket
type S3Store struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
}

// NewS3Store creates an S3 image store. Public URLs are built from baseURL,
// or from the bucket's virtual-hosted endpoint when baseURL is empty.
func NewS3Store(ctx context.Context, region, bucket, baseURL string) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &S3Store{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		region:  region,
		baseURL: baseURL,
	}, nil
}

// SaveImage uploads a post image
func (s *S3Store) SaveImage(ctx context.Context, img *Image, authorID uint) (*UploadResult, error) {
	now := time.Now().UTC()
	key := imageKey(authorID, img.Extension, now)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        newReader(img),
		ContentType: aws.String(img.ContentType),

		// Images never change once uploaded; a replacement gets a new key
		CacheControl: aws.String("max-age=31536000"),

		Metadata: map[string]string{
			"author-id":        strconv.FormatUint(uint64(authorID), 10),
			"upload-timestamp": now.Format(time.RFC3339),
			"file-type":        "post-image",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &UploadResult{
		Key:         key,
		URL:         fmt.Sprintf("%s/%s", strings.TrimSuffix(s.baseURL, "/"), key),
		ContentType: img.ContentType,
		Size:        int64(len(img.Data)),
	}, nil
}

// DeleteImage removes an image from S3
func (s *S3Store) DeleteImage(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	return nil
}

// CheckBucketAccess verifies that we can access the S3 bucket
func (s *S3Store) CheckBucketAccess(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", s.bucket, err)
	}

	return nil
}
