// Package web содержит HTML-страницы для просмотра и загрузки меню.
package web

import (
	"embed"
	"net/http"
)

//go:embed static/*.html
var pages embed.FS

// Page возвращает обработчик, отдающий встроенную HTML-страницу.
func Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := pages.ReadFile("static/" + name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(data)
	}
}
