package minio

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/config"
	"github.com/FelipeCgrillo/liquidapp/internal/models"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioClient struct {
	client *minio.Client
	config config.MinioConfig
}

func NewMinioClient(cfg config.MinioConfig) (*MinioClient, error) {
	endpoint := strings.TrimPrefix(cfg.MinioURL, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	isSecure, err := strconv.ParseBool(cfg.MinioSecure)
	if err != nil {
		log.Printf("Invalid value for MinIO secure flag: %v. Defaulting to false.", err)
		isSecure = false
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: isSecure,
		Region: cfg.MinioLocation,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	mc := &MinioClient{client: minioClient, config: cfg}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mc.ensureBucket(ctx, cfg.EvidenceBucket); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket %s: %w", cfg.EvidenceBucket, err)
	}

	log.Printf("Successfully connected to MinIO at %s", cfg.MinioURL)
	return mc, nil
}

// ensureBucket creates a private bucket if it doesn't exist
func (mc *MinioClient) ensureBucket(ctx context.Context, bucketName string) error {
	exists, err := mc.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	if err := mc.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: mc.config.MinioLocation}); err != nil {
		return fmt.Errorf("error creating bucket %s: %w", bucketName, err)
	}
	log.Printf("Created bucket: %s", bucketName)
	return nil
}

// Bucket scopes object operations to one bucket.
func (mc *MinioClient) Bucket(name string) *Bucket {
	return &Bucket{client: mc.client, name: name}
}

// EvidenceBucket returns the bucket holding claim photos.
func (mc *MinioClient) EvidenceBucket() *Bucket {
	return mc.Bucket(mc.config.EvidenceBucket)
}

type Bucket struct {
	client *minio.Client
	name   string
}

func (b *Bucket) Name() string {
	return b.name
}

func (b *Bucket) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := b.client.PutObject(ctx, b.name, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to upload %s to bucket %s: %w", key, b.name, err)
	}

	log.Printf("Uploaded %d bytes to: %s in bucket: %s", len(data), key, b.name)
	return nil
}

// SignedURL issues a new presigned GET URL on every call.
func (b *Bucket) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	presignedURL, err := b.client.PresignedGetObject(ctx, b.name, key, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL for %s in bucket %s: %w", key, b.name, err)
	}
	return presignedURL.String(), nil
}

func (b *Bucket) Delete(ctx context.Context, key string) error {
	if err := b.client.RemoveObject(ctx, b.name, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete %s from bucket %s: %w", key, b.name, err)
	}

	log.Printf("Deleted object: %s from bucket: %s", key, b.name)
	return nil
}

func (b *Bucket) List(ctx context.Context, prefix string) ([]models.StoredObject, error) {
	var objects []models.StoredObject

	objectCh := b.client.ListObjects(ctx, b.name, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects in bucket %s: %w", b.name, object.Err)
		}
		objects = append(objects, models.StoredObject{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
		})
	}

	return objects, nil
}

func (b *Bucket) Exists(ctx context.Context, key string) (bool, error) {
	_, err := b.client.StatObject(ctx, b.name, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, fmt.Errorf("error checking existence of %s in bucket %s: %w", key, b.name, err)
	}
	return true, nil
}
