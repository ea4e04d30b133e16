package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// FileStore downloads uploaded workbooks from Supabase Storage over its REST
// API. Paths are as stored on the batch record, relative to the bucket.
type FileStore struct {
	baseURL string
	bucket  string
	apiKey  string
	client  *http.Client
}

// NewFileStoreFromEnv builds a FileStore from SUPABASE_URL,
// SUPABASE_SERVICE_KEY, and SUPABASE_BUCKET (defaults to "mpa-uploads").
func NewFileStoreFromEnv() (*FileStore, error) {
	baseURL := strings.TrimRight(os.Getenv("SUPABASE_URL"), "/")
	apiKey := os.Getenv("SUPABASE_SERVICE_KEY")
	if baseURL == "" || apiKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set")
	}
	bucket := os.Getenv("SUPABASE_BUCKET")
	if bucket == "" {
		bucket = "mpa-uploads"
	}
	return &FileStore{
		baseURL: baseURL,
		bucket:  bucket,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Download fetches one object from the bucket.
func (f *FileStore) Download(ctx context.Context, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", f.baseURL, f.bucket, strings.TrimLeft(path, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", f.apiKey)
	req.Header.Set("Authorization", "Bearer "+f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download %s: storage returned %d: %s", path, resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}
