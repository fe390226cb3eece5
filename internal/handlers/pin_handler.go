package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/VijayGit-Hub/menu-upload-system/internal/metrics"
	"github.com/VijayGit-Hub/menu-upload-system/internal/models"
	"github.com/VijayGit-Hub/menu-upload-system/internal/services"
)

// PinHandler обрабатывает проверку PIN-кода поставщика.
type PinHandler struct {
	service services.PinService
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewPinHandler создает новый экземпляр PinHandler.
func NewPinHandler(s services.PinService, m *metrics.Metrics, logger *zap.Logger) *PinHandler {
	return &PinHandler{service: s, metrics: m, logger: logger.Named("PinHandler")}
}

// VerifyPin обрабатывает POST /verify-pin.
// Все результаты, включая отказ, возвращаются со статусом 200.
func (h *PinHandler) VerifyPin(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyPinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Info("Ошибка декодирования запроса проверки PIN", zap.Error(err))
		req.PIN = ""
	}

	result := h.service.VerifyPin(req.PIN)
	h.metrics.PinCheck(result.Authorized)
	if result.Authorized {
		h.logger.Info("PIN подтвержден", zap.String("vendor", result.VendorName))
	} else {
		h.logger.Info("PIN отклонен", zap.String("reason", result.Message))
	}
	writeJSON(w, h.logger, http.StatusOK, result)
}
