// Package metrics содержит Prometheus-метрики сервиса.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "menu_upload"

// Metrics объединяет коллекторы сервиса в собственном реестре.
type Metrics struct {
	Registry *prometheus.Registry

	uploads      *prometheus.CounterVec
	pinChecks    *prometheus.CounterVec
	sweepRuns    *prometheus.CounterVec
	filesDeleted prometheus.Counter
	httpRequests *prometheus.CounterVec
}

// New создает и регистрирует коллекторы.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Количество загрузок меню по результату.",
		}, []string{"result"}),
		pinChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pin_checks_total",
			Help:      "Количество проверок PIN-кода по результату.",
		}, []string{"result"}),
		sweepRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_runs_total",
			Help:      "Количество запусков очистки устаревших меню.",
		}, []string{"status"}),
		filesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_files_deleted_total",
			Help:      "Количество файлов, удаленных очисткой.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Количество обработанных HTTP-запросов.",
		}, []string{"method", "status"}),
	}
	m.Registry.MustRegister(m.uploads, m.pinChecks, m.sweepRuns, m.filesDeleted, m.httpRequests)
	return m
}

// UploadResult учитывает результат загрузки меню.
func (m *Metrics) UploadResult(result string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
}

// PinCheck учитывает результат проверки PIN-кода.
func (m *Metrics) PinCheck(authorized bool) {
	if m == nil {
		return
	}
	result := "rejected"
	if authorized {
		result = "authorized"
	}
	m.pinChecks.WithLabelValues(result).Inc()
}

// SweepRun учитывает запуск очистки и количество удаленных файлов.
func (m *Metrics) SweepRun(err error, deleted int) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.sweepRuns.WithLabelValues(status).Inc()
	m.filesDeleted.Add(float64(deleted))
}

// HTTPRequest учитывает обработанный HTTP-запрос.
func (m *Metrics) HTTPRequest(method string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Handler возвращает HTTP-обработчик для выдачи метрик.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
