package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"time"

	"k2age/config"
	"k2age/core/track"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// TrackSuffix is the file extension of model tracks synced to the bucket.
const TrackSuffix = ".iso"

// BucketStats 存储桶统计信息
type BucketStats struct {
	TotalObjects int64
	TotalSize    int64
	LastModified time.Time
}

// ObjectInfo 文件信息
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
}

// ModelStore keeps model tracks in a MinIO bucket under a key prefix that
// mirrors the on-disk grid layout. It implements track.Source.
type ModelStore struct {
	client *minio.Client
	bucket string
	prefix string
	region string
	logger *zap.Logger
}

// NewModelStore creates the MinIO client described by cfg.
func NewModelStore(cfg *config.Config, logger *zap.Logger) (*ModelStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("create MinIO client: %w", err)
	}

	return &ModelStore{
		client: client,
		bucket: cfg.MinioBucket,
		prefix: strings.Trim(cfg.MinioPrefix, "/"),
		region: cfg.MinioRegion,
		logger: logger.With(zap.String("bucket", cfg.MinioBucket)),
	}, nil
}

// Bucket returns the bucket name.
func (s *ModelStore) Bucket() string { return s.bucket }

// EnsureBucket checks that the bucket exists and creates it otherwise.
func (s *ModelStore) EnsureBucket(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		s.logger.Debug("bucket exists")
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("bucket created")
	return nil
}

// ObjectKey maps a grid locator to its object key.
func (s *ModelStore) ObjectKey(locator string) string {
	if s.prefix == "" {
		return path.Clean(locator)
	}
	return path.Join(s.prefix, locator)
}

// Open implements track.Source.
func (s *ModelStore) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	key := s.ObjectKey(locator)
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, notFound(locator, err)
	}
	// GetObject is lazy; Stat surfaces a missing key before the parser runs.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, notFound(locator, err)
	}
	s.logger.Debug("track object opened", zap.String("key", key))
	return obj, nil
}

func notFound(locator string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return &track.TrackNotFoundError{Locator: locator, Reason: "no such object", Err: err}
	}
	return &track.TrackNotFoundError{Locator: locator, Err: err}
}

// Sync uploads every model track under dir, keeping its relative path.
// It returns the number of objects written.
func (s *ModelStore) Sync(ctx context.Context, dir string) (int, error) {
	var uploaded int
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), TrackSuffix) {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		key := s.ObjectKey(filepath.ToSlash(rel))
		info, err := s.client.FPutObject(ctx, s.bucket, key, p, minio.PutObjectOptions{ContentType: "text/plain"})
		if err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
		uploaded++
		s.logger.Debug("track uploaded", zap.String("key", key), zap.Int64("size", info.Size))
		return nil
	})
	if err != nil {
		return uploaded, err
	}
	s.logger.Info("model grid synced", zap.String("dir", dir), zap.Int("objects", uploaded))
	return uploaded, nil
}

// List returns the model tracks stored under the key prefix.
func (s *ModelStore) List(ctx context.Context) ([]ObjectInfo, *BucketStats, error) {
	stats := &BucketStats{}
	var objects []ObjectInfo

	prefix := s.prefix
	if prefix != "" {
		prefix += "/"
	}
	for object := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if object.Err != nil {
			return nil, nil, fmt.Errorf("list objects: %w", object.Err)
		}
		stats.TotalObjects++
		stats.TotalSize += object.Size
		if object.LastModified.After(stats.LastModified) {
			stats.LastModified = object.LastModified
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ETag:         object.ETag,
		})
	}
	return objects, stats, nil
}

// FormatSize 格式化文件大小
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

// trackFiles lists model tracks under dir relative to it, for dry runs.
func trackFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), TrackSuffix) {
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PlanSync returns the object keys Sync would write for dir.
func (s *ModelStore) PlanSync(dir string) ([]string, error) {
	files, err := trackFiles(dir)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(files))
	for i, f := range files {
		keys[i] = s.ObjectKey(f)
	}
	return keys, nil
}
