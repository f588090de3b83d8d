package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mukkarapavankumar/Thought-organizer-v2/pkg/models"
)

// S3Config configures an S3Store.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

// S3Store keeps the same JSON documents as FileStore in an S3 compatible
// bucket.
type S3Store struct {
	client *minio.Client
	bucket string
	region string
	prefix string

	once      sync.Once
	bucketErr error
}

// NewS3Store connects to the object store described by cfg.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}
	return &S3Store{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (s *S3Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// ensureBucket creates the bucket on first use.
func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.once.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.bucketErr = err
			return
		}
		if !exists {
			s.bucketErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
		}
	})
	return s.bucketErr
}

// LoadSections returns all sections.
func (s *S3Store) LoadSections(ctx context.Context) ([]models.Section, error) {
	sections := []models.Section{}
	if err := s.get(ctx, sectionsFile, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// SaveSections replaces the stored sections.
func (s *S3Store) SaveSections(ctx context.Context, sections []models.Section) error {
	if sections == nil {
		sections = []models.Section{}
	}
	return s.put(ctx, sectionsFile, sections)
}

// LoadThoughts returns the thoughts of a section.
func (s *S3Store) LoadThoughts(ctx context.Context, sectionID string) ([]models.Thought, error) {
	name, err := thoughtsFile(sectionID)
	if err != nil {
		return nil, err
	}
	thoughts := []models.Thought{}
	if err := s.get(ctx, name, &thoughts); err != nil {
		return nil, err
	}
	return thoughts, nil
}

// SaveThoughts replaces the thoughts of a section.
func (s *S3Store) SaveThoughts(ctx context.Context, sectionID string, thoughts []models.Thought) error {
	name, err := thoughtsFile(sectionID)
	if err != nil {
		return err
	}
	if thoughts == nil {
		thoughts = []models.Thought{}
	}
	return s.put(ctx, name, thoughts)
}

// DeleteThoughts removes the thoughts object of a section.
func (s *S3Store) DeleteThoughts(ctx context.Context, sectionID string) error {
	name, err := thoughtsFile(sectionID)
	if err != nil {
		return err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	return s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
}

// Ping checks that the bucket is reachable.
func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

func (s *S3Store) get(ctx context.Context, name string, v any) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

func (s *S3Store) put(ctx context.Context, name string, v any) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	return err
}
