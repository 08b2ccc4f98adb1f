package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/daybook/internal/server/config"
	"github.com/dmitrijs2005/daybook/internal/server/models"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3API is the subset of *s3.Client the store uses.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// NewS3Client builds a client for the S3-compatible endpoint in c using
// static credentials and path-style addressing.
func NewS3Client(ctx context.Context, c *config.Config) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(c.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,
			c.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
		o.UsePathStyle = true
	}), nil
}

// s3Object is the body of one stored day.
type s3Object struct {
	Document  map[string]any `json:"document"`
	CreatedAt *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt *time.Time     `json:"updatedAt,omitempty"`
}

// S3Store keeps each day as users/<user>/days/<date>.json in one bucket.
type S3Store struct {
	client S3API
	bucket string
}

func NewS3Store(client S3API, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

func userPrefix(userID string) string {
	return "users/" + userID + "/days/"
}

// ObjectKey returns the key of the object holding date for userID.
func ObjectKey(userID, date string) string {
	return userPrefix(userID) + date + ".json"
}

func (s *S3Store) Exists(ctx context.Context, userID, date string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ObjectKey(userID, date)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("s3 head error: %w", err)
	}
	return true, nil
}

// Upsert reads the stored object when a stamp must be kept, then writes
// the merged object back. Concurrent writers of the same day race; the last
// PutObject wins.
func (s *S3Store) Upsert(ctx context.Context, w models.DayWrite, now time.Time) error {
	obj := s3Object{Document: w.Document}

	if !w.StampCreatedAt || !w.StampUpdatedAt {
		prev, found, err := s.get(ctx, ObjectKey(w.UserID, w.Date))
		if err != nil {
			return err
		}
		if found {
			obj.CreatedAt, obj.UpdatedAt = prev.CreatedAt, prev.UpdatedAt
		}
	}

	t := now
	if w.StampCreatedAt {
		obj.CreatedAt = &t
	}
	if w.StampUpdatedAt {
		obj.UpdatedAt = &t
	}

	body, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("failed to encode day %s: %w", w.Date, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(ObjectKey(w.UserID, w.Date)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 put error: %w", err)
	}
	return nil
}

func (s *S3Store) List(ctx context.Context, userID string) ([]models.DayDocument, error) {
	prefix := userPrefix(userID)
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	var keys []string
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list error: %w", err)
		}
		for _, o := range page.Contents {
			key := aws.ToString(o.Key)
			if strings.HasSuffix(key, ".json") {
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)

	out := make([]models.DayDocument, 0, len(keys))
	for _, key := range keys {
		obj, found, err := s.get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		out = append(out, models.DayDocument{
			UserID:    userID,
			Date:      strings.TrimSuffix(strings.TrimPrefix(key, prefix), ".json"),
			Document:  obj.Document,
			CreatedAt: obj.CreatedAt,
			UpdatedAt: obj.UpdatedAt,
		})
	}
	return out, nil
}

func (s *S3Store) get(ctx context.Context, key string) (s3Object, bool, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return s3Object{}, false, nil
		}
		return s3Object{}, false, fmt.Errorf("s3 get error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return s3Object{}, false, fmt.Errorf("s3 read error: %w", err)
	}

	var obj s3Object
	if err := json.Unmarshal(body, &obj); err != nil {
		return s3Object{}, false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	if obj.Document == nil {
		obj.Document = map[string]any{}
	}
	return obj, true, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}
