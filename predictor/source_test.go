package predictor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ariebrainware/ml-pipeline-api/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const noSuchKey = `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`

// fakeObjectStore answers the few S3 calls MinIOSource makes for the bucket
// "models" holding objects.
func fakeObjectStore(t *testing.T, objects map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
		if bucket != "models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch {
		case r.Method == http.MethodHead && key == "":
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodGet:
			data, ok := objects[key]
			if !ok {
				w.Header().Set("Content-Type", "application/xml")
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(noSuchKey))
				return
			}
			w.Header().Set("Content-Length", strconv.Itoa(len(data)))
			w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
			w.Header().Set("ETag", `"0123456789abcdef"`)
			_, _ = w.Write(data)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func minioSource(t *testing.T, url, bucket string) MinIOSource {
	t.Helper()
	client, err := minio.New(strings.TrimPrefix(url, "http://"), &minio.Options{
		Creds:      credentials.NewStaticV4("access", "secret", ""),
		Region:     "us-east-1",
		MaxRetries: 1,
	})
	require.NoError(t, err)
	return MinIOSource{Client: client, Bucket: bucket}
}

func TestMinIOSource_Read(t *testing.T) {
	artifact, err := json.Marshal(ageModel())
	require.NoError(t, err)
	srv := fakeObjectStore(t, map[string][]byte{modelFile: artifact})
	ctx := context.Background()

	data, err := minioSource(t, srv.URL, "models").Read(ctx, modelFile)
	require.NoError(t, err)
	assert.JSONEq(t, string(artifact), string(data))

	_, err = minioSource(t, srv.URL, "models").Read(ctx, scalerFile)
	assert.ErrorIs(t, err, ErrArtifactNotFound)

	_, err = minioSource(t, srv.URL, "archive").Read(ctx, modelFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket archive does not exist")
}

func TestMinIOSource_LoadsModelWithoutScaler(t *testing.T) {
	artifact, err := json.Marshal(ageModel())
	require.NoError(t, err)
	srv := fakeObjectStore(t, map[string][]byte{modelFile: artifact})

	s := NewService(setupRepo(t), minioSource(t, srv.URL, "models"), Options{ModelFile: modelFile, ScalerFile: scalerFile})
	classifier, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, classifier.Scaler)
}

func TestMinIOSource_UnreachableServerIsModelUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	t.Setenv("APPENV", "test")
	t.Setenv("ARTIFACT_SOURCE", "minio")
	t.Setenv("MINIO_ENDPOINT", strings.TrimPrefix(url, "http://"))
	config.ResetForTest()
	t.Cleanup(config.ResetForTest)

	// Building the service never contacts the object store.
	s, err := NewServiceFromConfig(setupRepo(t))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, ErrModelUnavailable)

	id := completePatient(t, s.repo, 45)
	_, err = s.Predict(ctx, id)
	assert.ErrorIs(t, err, ErrModelUnavailable)
}
