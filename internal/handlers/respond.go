package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// writeJSON отправляет ответ в формате JSON.
func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Ошибка кодирования ответа", zap.Error(err))
	}
}
