package fetch

import (
	"TuneRelay/config"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Archived keeps the raw bytes of every fetched artifact in object
// storage. A later fetch for the same link (after a stale transport
// handle, for example) restores from the archive instead of hitting
// the remote source again.
type Archived struct {
	inner  Fetcher
	client *minio.Client
	bucket string
}

// NewArchived wires an archive in front of the inner fetcher using the
// configured MinIO endpoint.
func NewArchived(inner Fetcher) (*Archived, error) {
	endpoint := fmt.Sprintf("%s:%s", config.AppConfig.MinioHost, config.AppConfig.MinioPort)
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AppConfig.MinioUsername, config.AppConfig.MinioPassword, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}
	bucket := config.AppConfig.ArchiveBucket

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &Archived{inner: inner, client: client, bucket: bucket}, nil
}

// Fetch restores from the archive when possible, otherwise delegates
// and archives the result. Archive failures are logged and swallowed;
// the archive is an optimization, not a source of truth.
func (a *Archived) Fetch(ctx context.Context, sourceURL string) (*Artifact, error) {
	key := objectKey(sourceURL)
	if artifact, err := a.restore(ctx, key); err == nil {
		log.Printf("fetch: archive hit for %s", sourceURL)
		return artifact, nil
	}

	artifact, err := a.inner.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, err
	}
	if err := a.store(ctx, key, artifact); err != nil {
		log.Printf("fetch: archive store failed for %s: %v", sourceURL, err)
	}
	return artifact, nil
}

func (a *Archived) restore(ctx context.Context, key string) (*Artifact, error) {
	stat, err := a.client.StatObject(ctx, a.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, err
	}

	workDir := filepath.Join(os.TempDir(), "tunerelay-"+key[:12])
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(workDir, "input.mp3")
	if err := a.client.FGetObject(ctx, a.bucket, key, path, minio.GetObjectOptions{}); err != nil {
		os.RemoveAll(workDir)
		return nil, err
	}
	return &Artifact{
		Path:      path,
		Size:      stat.Size,
		Title:     stat.UserMetadata["Title"],
		Performer: stat.UserMetadata["Performer"],
		WorkDir:   workDir,
	}, nil
}

func (a *Archived) store(ctx context.Context, key string, artifact *Artifact) error {
	_, err := a.client.FPutObject(ctx, a.bucket, key, artifact.Path, minio.PutObjectOptions{
		ContentType: "audio/mpeg",
		UserMetadata: map[string]string{
			"Title":     artifact.Title,
			"Performer": artifact.Performer,
		},
	})
	return err
}

func objectKey(sourceURL string) string {
	sum := sha256.Sum256([]byte(sourceURL))
	return hex.EncodeToString(sum[:])
}
