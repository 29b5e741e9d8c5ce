package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3StoreCatalogState implements StoreCatalogState backed by S3

type S3StoreCatalogState struct {
	bucket string
	key    string
	s3     *s3.Client
}

func NewS3StoreCatalogState(s3Client *s3.Client, bucket, key string) *S3StoreCatalogState {
	return &S3StoreCatalogState{
		bucket: bucket,
		key:    key,
		s3:     s3Client,
	}
}

func (s *S3StoreCatalogState) Load(ctx context.Context) ([]byte, error) {
	resp, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get store catalog object from S3: %w", err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// S3PriceTableState implements PriceTableState backed by S3

type S3PriceTableState struct {
	bucket string
	key    string
	s3     *s3.Client
}

func NewS3PriceTableState(s3Client *s3.Client, bucket, key string) *S3PriceTableState {
	return &S3PriceTableState{
		bucket: bucket,
		key:    key,
		s3:     s3Client,
	}
}

func (s *S3PriceTableState) Load(ctx context.Context) ([]byte, error) {
	resp, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get price table object from S3: %w", err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
