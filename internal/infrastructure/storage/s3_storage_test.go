package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sellerdesk/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// ============================================================================
// Helpers
// ============================================================================

type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
}

// createMockS3Server accepts every request and records what it saw
func createMockS3Server(t *testing.T, status int) (*httptest.Server, func() []recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []recordedRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
		})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	return server, func() []recordedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]recordedRequest(nil), seen...)
	}
}

func baseConfig(endpoint string) *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:       "labels",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Region:       "us-east-1",
		Endpoint:     endpoint,
		UsePathStyle: true,
		Prefix:       "labels/",
	}
}

// ============================================================================
// Unit Tests
// ============================================================================

func TestNewS3LabelArchive_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr string
	}{
		{"nil config", nil, "configuration is required"},
		{"missing bucket", &config.StorageConfig{AccessKey: "k", SecretKey: "s"}, "bucket is required"},
		{"missing access key", &config.StorageConfig{Bucket: "b", SecretKey: "s"}, "access key is required"},
		{"missing secret key", &config.StorageConfig{Bucket: "b", AccessKey: "k"}, "secret key is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3LabelArchive(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("endpoint without scheme", func(t *testing.T) {
		cfg := baseConfig("localhost:9000")
		cfg.Region = ""
		archive, err := NewS3LabelArchive(cfg)
		require.NoError(t, err)
		assert.Equal(t, "labels", archive.Bucket())
		assert.Equal(t, 15*time.Minute, archive.presignExpiration)
	})
}

func TestS3LabelArchive_Options(t *testing.T) {
	archive, err := NewS3LabelArchive(baseConfig("http://localhost:9000"),
		WithLogger(zaptest.NewLogger(t)),
		WithPresignExpiration(time.Hour),
	)
	require.NoError(t, err)
	assert.NotNil(t, archive.logger)
	assert.Equal(t, time.Hour, archive.presignExpiration)
}

func TestS3LabelArchive_ObjectKey(t *testing.T) {
	fixed := time.Date(2025, 3, 20, 14, 5, 9, 0, time.UTC)
	archive, err := NewS3LabelArchive(baseConfig("http://localhost:9000"),
		WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	key := archive.objectKey("store-1")
	assert.True(t, strings.HasPrefix(key, "labels/store-1/2025/03/20/140509-"), key)
	assert.True(t, strings.HasSuffix(key, ".pdf"))
	assert.NotEqual(t, key, archive.objectKey("store-1"))
}

func TestS3LabelArchive_DownloadURL(t *testing.T) {
	archive, err := NewS3LabelArchive(baseConfig("http://localhost:9000"))
	require.NoError(t, err)

	_, _, err = archive.DownloadURL(context.Background(), "", 0)
	assert.ErrorContains(t, err, "storage key is required")

	url, expiresAt, err := archive.DownloadURL(context.Background(), "labels/a.pdf", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, url, "localhost:9000")
	assert.Contains(t, url, "/labels/labels/a.pdf")
	assert.True(t, expiresAt.After(time.Now().Add(59*time.Minute)))
}

func TestS3LabelArchive_Archive(t *testing.T) {
	server, requests := createMockS3Server(t, http.StatusOK)
	archive, err := NewS3LabelArchive(baseConfig(server.URL))
	require.NoError(t, err)

	archived, err := archive.Archive(context.Background(), "store-1", []byte("%PDF-1.4"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(archived.Key, "labels/store-1/"))
	assert.Contains(t, archived.URL, archived.Key)
	assert.False(t, archived.ExpiresAt.IsZero())

	seen := requests()
	require.Len(t, seen, 1)
	assert.Equal(t, http.MethodPut, seen[0].Method)
	assert.Equal(t, "/labels/"+archived.Key, seen[0].Path)
	assert.Equal(t, LabelContentType, seen[0].ContentType)
}

func TestS3LabelArchive_ArchiveFailure(t *testing.T) {
	server, _ := createMockS3Server(t, http.StatusForbidden)
	archive, err := NewS3LabelArchive(baseConfig(server.URL))
	require.NoError(t, err)

	_, err = archive.Archive(context.Background(), "store-1", []byte("%PDF-1.4"))
	assert.ErrorContains(t, err, "failed to upload object")
}

func TestS3LabelArchive_EnsureBucketExists(t *testing.T) {
	server, requests := createMockS3Server(t, http.StatusOK)
	archive, err := NewS3LabelArchive(baseConfig(server.URL))
	require.NoError(t, err)

	require.NoError(t, archive.EnsureBucket(context.Background()))
	seen := requests()
	require.Len(t, seen, 1)
	assert.Equal(t, http.MethodHead, seen[0].Method)
}
