package upload

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bts-green-line/explorer/app/observability/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	metrics.InitAppMetrics()
	os.Exit(m.Run())
}

func setupUploadHandlerTest(t *testing.T) (*Handler, string) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(dir, "http://localhost:4000", logger), dir
}

func multipartBody(t *testing.T, field string, filenames ...string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, name := range filenames {
		part, err := writer.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes for " + name))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHandler_UploadSingle(t *testing.T) {
	t.Run("stores the file and returns its public URL", func(t *testing.T) {
		handler, dir := setupUploadHandlerTest(t)
		body, contentType := multipartBody(t, "image", "cafe.jpg")

		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler.UploadSingle(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp struct {
			Message string            `json:"message"`
			Data    map[string]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		url := resp.Data["url"]
		require.NotEmpty(t, url)
		assert.True(t, strings.HasPrefix(url, "http://localhost:4000/uploads/"))
		assert.True(t, strings.HasSuffix(url, ".jpg"))

		// The written file must exist under the upload dir and keep the content.
		stored := filepath.Join(dir, filepath.Base(url))
		content, err := os.ReadFile(stored)
		require.NoError(t, err)
		assert.Equal(t, "fake image bytes for cafe.jpg", string(content))
	})

	t.Run("missing file part returns 400", func(t *testing.T) {
		handler, dir := setupUploadHandlerTest(t)
		body, contentType := multipartBody(t, "wrong_field", "cafe.jpg")

		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler.UploadSingle(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "No file attached")
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("non-multipart body returns 400", func(t *testing.T) {
		handler, _ := setupUploadHandlerTest(t)
		req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("plain text"))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		handler.UploadSingle(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_UploadGallery(t *testing.T) {
	t.Run("stores every file and preserves upload order", func(t *testing.T) {
		handler, dir := setupUploadHandlerTest(t)
		body, contentType := multipartBody(t, "images", "one.png", "two.png", "three.png")

		req := httptest.NewRequest(http.MethodPost, "/api/upload-gallery", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler.UploadGallery(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp struct {
			Message string              `json:"message"`
			Data    map[string][]string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		urls := resp.Data["urls"]
		require.Len(t, urls, 3)

		seen := map[string]bool{}
		for i, url := range urls {
			assert.True(t, strings.HasSuffix(url, ".png"))
			assert.False(t, seen[url], "duplicate url %s", url)
			seen[url] = true

			stored := filepath.Join(dir, filepath.Base(url))
			content, err := os.ReadFile(stored)
			require.NoError(t, err)
			// Order of returned urls matches order of parts.
			expected := []string{"one.png", "two.png", "three.png"}[i]
			assert.Equal(t, "fake image bytes for "+expected, string(content))
		}
	})

	t.Run("no files attached returns 400", func(t *testing.T) {
		handler, _ := setupUploadHandlerTest(t)
		body, contentType := multipartBody(t, "images")

		req := httptest.NewRequest(http.MethodPost, "/api/upload-gallery", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		handler.UploadGallery(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "No files attached")
	})
}

func TestNewFileName(t *testing.T) {
	t.Run("keeps the original extension", func(t *testing.T) {
		assert.True(t, strings.HasSuffix(newFileName("photo.jpeg"), ".jpeg"))
		assert.False(t, strings.Contains(newFileName("noext"), "."))
	})

	t.Run("names never collide", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 100; i++ {
			name := newFileName("x.jpg")
			assert.False(t, seen[name], "duplicate name %s", name)
			seen[name] = true
		}
	})
}
