package objectclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mayowa-kalejaiye/docstream/internal/core"
)

type S3Client struct {
	client     *s3.Client
	downloader *manager.Downloader
}

func NewS3Client(awsCfg aws.Config) *S3Client {
	client := s3.NewFromConfig(awsCfg)
	return &S3Client{
		client:     client,
		downloader: manager.NewDownloader(client),
	}
}

// GetFile downloads a whole object into memory. Source documents are
// bounded-size PDFs, so buffering beats streaming complexity here.
func (c *S3Client) GetFile(ctx context.Context, bucket, key string) ([]byte, error) {
	ctxGet, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	buf := manager.NewWriteAtBuffer(nil)
	_, err := c.downloader.Download(ctxGet, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get %s/%s: %w", bucket, key, err)
	}
	return buf.Bytes(), nil
}

// ListKeys returns every key in the bucket whose lower-cased name ends with
// suffix (e.g. ".pdf"). Pagination is handled internally.
func (c *S3Client) ListKeys(ctx context.Context, bucket, suffix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list %s: %w", bucket, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if suffix == "" || strings.HasSuffix(strings.ToLower(key), suffix) {
				keys = append(keys, key)
			}
		}
	}
	return keys, nil
}

var _ core.ObjectStore = (*S3Client)(nil)
