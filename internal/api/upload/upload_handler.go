package upload

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bts-green-line/explorer/app/observability/metrics"
	"github.com/bts-green-line/explorer/internal/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const maxUploadSize = 32 << 20 // 32 MB across all parts

// Handler persists image uploads under a public directory and returns
// immediately fetchable URLs. Filenames are timestamp plus random suffix so
// concurrent uploads never collide.
type Handler struct {
	logger        *slog.Logger
	dir           string
	publicBaseURL string
}

func NewHandler(dir, publicBaseURL string, logger *slog.Logger) *Handler {
	return &Handler{
		logger:        logger,
		dir:           dir,
		publicBaseURL: publicBaseURL,
	}
}

// UploadSingle handles POST /api/upload with a single "image" part.
func (h *Handler) UploadSingle(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UploadHandler").Start(r.Context(), "UploadSingle")
	defer span.End()

	l := h.logger.With(slog.String("handler", "UploadSingle"))

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	_, header, err := r.FormFile("image")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "No file attached")
		return
	}

	url, err := h.saveFile(header)
	if err != nil {
		l.ErrorContext(ctx, "Failed to persist upload", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Upload failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to store file")
		return
	}
	metrics.Get().UploadsTotal.Add(ctx, 1)

	api.SuccessResponse(w, r, http.StatusCreated, map[string]string{"url": url})
}

// UploadGallery handles POST /api/upload-gallery with one or more "images"
// parts. Files are written concurrently; the returned URL order matches the
// order of the uploaded parts.
func (h *Handler) UploadGallery(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("UploadHandler").Start(r.Context(), "UploadGallery")
	defer span.End()

	l := h.logger.With(slog.String("handler", "UploadGallery"))

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["images"]) == 0 {
		api.ErrorResponse(w, r, http.StatusBadRequest, "No files attached")
		return
	}
	files := r.MultipartForm.File["images"]

	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i, header := range files {
		i, header := i, header
		g.Go(func() error {
			url, err := h.saveFile(header)
			if err != nil {
				return err
			}
			urls[i] = url
			metrics.Get().UploadsTotal.Add(gctx, 1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l.ErrorContext(ctx, "Failed to persist gallery upload", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Upload failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to store files")
		return
	}

	api.SuccessResponse(w, r, http.StatusCreated, map[string][]string{"urls": urls})
}

func (h *Handler) saveFile(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	name := newFileName(header.Filename)
	dst, err := os.Create(filepath.Join(h.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return h.publicBaseURL + "/uploads/" + name, nil
}

// newFileName builds a collision-free name: millisecond timestamp plus a
// random hex suffix, keeping the original extension.
func newFileName(original string) string {
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), hex.EncodeToString(suffix), filepath.Ext(original))
}
