package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/VijayGit-Hub/menu-upload-system/internal/metrics"
	"github.com/VijayGit-Hub/menu-upload-system/internal/models"
	"github.com/VijayGit-Hub/menu-upload-system/internal/services"
)

const (
	// Запас на заголовки multipart и текстовые поля формы сверх размера файла.
	multipartOverhead = 1 << 20
	// Часть формы, которая держится в памяти, остальное пишется во временные файлы.
	multipartMemory = 1 << 20

	formFieldVendorName = "vendorName"
)

// Сообщения об ошибках загрузки.
const (
	MsgNoFile           = "No file selected!"
	MsgFileTooLarge     = "File too large"
	MsgImagesOnly       = "Error: Images Only!"
	MsgUnauthorized     = "Unauthorized vendor"
	MsgSaveFailed       = "Error saving vendor data"
	MsgFetchMenusFailed = "Error fetching menus"
)

// MenuHandler обрабатывает загрузку и получение меню.
type MenuHandler struct {
	service services.MenuService
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewMenuHandler создает новый экземпляр MenuHandler.
func NewMenuHandler(s services.MenuService, m *metrics.Metrics, logger *zap.Logger) *MenuHandler {
	return &MenuHandler{service: s, metrics: m, logger: logger.Named("MenuHandler")}
}

// Upload обрабатывает POST /upload (multipart: vendorName, menuImage).
// Ошибки проверки возвращаются со статусом 200 и полем error.
func (h *MenuHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			h.reject(w, "too_large", MsgFileTooLarge)
			return
		}
		h.logger.Info("Ошибка разбора multipart-формы", zap.Error(err))
		h.reject(w, "no_file", MsgNoFile)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.logger.Warn("Ошибка удаления временных файлов формы", zap.Error(err))
		}
	}()

	file, header, err := r.FormFile(services.UploadFieldName)
	if err != nil {
		h.reject(w, "no_file", MsgNoFile)
		return
	}
	defer func(f multipart.File) {
		_ = f.Close()
	}(file)

	h.logger.Info("Загрузка файла",
		zap.String("originalName", header.Filename),
		zap.String("mimeType", header.Header.Get("Content-Type")),
		zap.Int64("size", header.Size))

	res, err := h.service.Upload(r.Context(), services.UploadInput{
		VendorName:  r.FormValue(formFieldVendorName),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoFile):
			h.reject(w, "no_file", MsgNoFile)
		case errors.Is(err, services.ErrFileTooLarge):
			h.reject(w, "too_large", MsgFileTooLarge)
		case errors.Is(err, services.ErrImagesOnly):
			h.reject(w, "images_only", MsgImagesOnly)
		case errors.Is(err, services.ErrUnauthorizedVendor):
			h.reject(w, "unauthorized", MsgUnauthorized)
		default:
			h.logger.Error("Внутренняя ошибка при загрузке меню", zap.Error(err))
			h.reject(w, "error", MsgSaveFailed)
		}
		return
	}

	h.metrics.UploadResult("ok")
	writeJSON(w, h.logger, http.StatusOK, models.UploadResponse{
		Success:    true,
		File:       "uploads/" + res.FileName,
		VendorData: res.Record,
	})
}

// ListToday обрабатывает GET /api/menus.
func (h *MenuHandler) ListToday(w http.ResponseWriter, r *http.Request) {
	menus, err := h.service.ListToday(r.Context())
	if err != nil {
		h.logger.Error("Ошибка получения меню", zap.Error(err))
		writeJSON(w, h.logger, http.StatusInternalServerError, models.ErrorResponse{Error: MsgFetchMenusFailed})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, menus)
}

func (h *MenuHandler) reject(w http.ResponseWriter, result, msg string) {
	h.metrics.UploadResult(result)
	writeJSON(w, h.logger, http.StatusOK, models.ErrorResponse{Error: msg})
}
