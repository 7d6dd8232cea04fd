package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sample-app/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ItemSnapshot is the document written by an export. It has the same
// shape as the list response.
type ItemSnapshot struct {
	ExportedAt string `json:"exported_at"`
	Count      int    `json:"count"`
	Items      []Item `json:"items"`
}

// ExportResult describes the object written by an export.
type ExportResult struct {
	Bucket string `json:"bucket"`
	Object string `json:"object"`
	Count  int    `json:"count"`
	Size   int64  `json:"size"`
	ETag   string `json:"etag"`
}

// Exporter writes item snapshots to an S3 compatible bucket.
type Exporter struct {
	client *minio.Client
	bucket string
}

// NewExporter builds the object storage client. No request is made until
// the first export.
func NewExporter(cfg config.ObjectStoreConfig) (*Exporter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return &Exporter{client: client, bucket: cfg.Bucket}, nil
}

// ExportItems uploads a snapshot of items, creating the bucket when missing.
func (e *Exporter) ExportItems(ctx context.Context, items []Item, now time.Time) (*ExportResult, error) {
	exists, err := e.client.BucketExists(ctx, e.bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", e.bucket, err)
	}
	if !exists {
		if err := e.client.MakeBucket(ctx, e.bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", e.bucket, err)
		}
	}

	body, err := EncodeSnapshot(items, now)
	if err != nil {
		return nil, err
	}

	object := SnapshotObjectName(now)
	info, err := e.client.PutObject(ctx, e.bucket, object, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return nil, fmt.Errorf("upload %s/%s: %w", e.bucket, object, err)
	}

	return &ExportResult{
		Bucket: info.Bucket,
		Object: info.Key,
		Count:  len(items),
		Size:   info.Size,
		ETag:   info.ETag,
	}, nil
}

// EncodeSnapshot renders the snapshot document.
func EncodeSnapshot(items []Item, now time.Time) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	body, err := json.Marshal(ItemSnapshot{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Count:      len(items),
		Items:      items,
	})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return body, nil
}

// SnapshotObjectName - items/<UTC timestamp>.json, sortable by time
func SnapshotObjectName(now time.Time) string {
	return "items/" + now.UTC().Format("20060102T150405.000Z") + ".json"
}
