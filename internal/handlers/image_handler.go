package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/VijayGit-Hub/menu-upload-system/internal/storage"
)

// ImageHandler раздает сохраненные изображения меню.
type ImageHandler struct {
	files  storage.FileStorage
	logger *zap.Logger
}

// NewImageHandler создает новый экземпляр ImageHandler.
func NewImageHandler(files storage.FileStorage, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{files: files, logger: logger.Named("ImageHandler")}
}

// Serve обрабатывает GET /uploads/{filename}.
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	rc, err := h.files.DownloadFile(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("Ошибка чтения изображения", zap.String("file", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			h.logger.Warn("Ошибка закрытия изображения", zap.String("file", name), zap.Error(closeErr))
		}
	}()

	// ServeContent определяет Content-Type по расширению и поддерживает Range.
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(w, r, name, time.Time{}, rs)
		return
	}
	if _, err = io.Copy(w, rc); err != nil {
		h.logger.Warn("Ошибка отправки изображения", zap.String("file", name), zap.Error(err))
	}
}
