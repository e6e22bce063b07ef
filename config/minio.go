package config

import (
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// NewMinIOClient creates the client for the model artifact bucket. It does not
// contact the server; connection and bucket errors surface on the first read.
func NewMinIOClient() (*minio.Client, error) {
	cfg := LoadConfig()
	if cfg.MinIOEndpoint == "" {
		return nil, fmt.Errorf("MINIO_ENDPOINT must be provided when ARTIFACT_SOURCE=minio")
	}

	return minio.New(cfg.MinIOEndpoint, &minio.Options{
		Creds:      credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
		Secure:     cfg.MinIOUseSSL,
		Region:     cfg.MinIORegion,
		MaxRetries: 1,
	})
}
