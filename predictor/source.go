package predictor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ariebrainware/ml-pipeline-api/config"
	"github.com/minio/minio-go/v7"
)

// ErrArtifactNotFound is returned when an artifact does not exist in its source.
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactSource reads model artifacts by name.
type ArtifactSource interface {
	Read(ctx context.Context, name string) ([]byte, error)
	String() string
}

// FileSource reads artifacts from a local directory.
type FileSource struct {
	Dir string
}

func (s FileSource) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", name, ErrArtifactNotFound)
	}
	return data, err
}

func (s FileSource) String() string { return "dir:" + s.Dir }

// MinIOSource reads artifacts from an object storage bucket.
type MinIOSource struct {
	Client *minio.Client
	Bucket string
}

func (s MinIOSource) Read(ctx context.Context, name string) ([]byte, error) {
	exists, err := s.Client.BucketExists(ctx, s.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", s.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", s.Bucket)
	}

	obj, err := s.Client.GetObject(ctx, s.Bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%s: %w", name, ErrArtifactNotFound)
		}
		return nil, err
	}
	return data, nil
}

func (s MinIOSource) String() string { return "minio:" + s.Bucket }

// SourceFromConfig picks the artifact source named by ARTIFACT_SOURCE.
func SourceFromConfig() (ArtifactSource, error) {
	cfg := config.LoadConfig()
	switch cfg.ArtifactSource {
	case "", "local":
		return FileSource{Dir: cfg.ModelDir}, nil
	case "minio":
		client, err := config.NewMinIOClient()
		if err != nil {
			return nil, err
		}
		return MinIOSource{Client: client, Bucket: cfg.MinIOBucket}, nil
	default:
		return nil, fmt.Errorf("unknown artifact source %q", cfg.ArtifactSource)
	}
}
