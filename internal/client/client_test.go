package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VijayGit-Hub/menu-upload-system/internal/client"
	"github.com/VijayGit-Hub/menu-upload-system/internal/models"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestHTTPClient_VerifyPin(t *testing.T) {
	tests := []struct {
		name          string
		serverHandler func(t *testing.T) http.HandlerFunc
		wantResult    *models.PinResult
		wantErr       error
		wantErrMsg    string
	}{
		{
			name: "Успех",
			serverHandler: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, http.MethodPost, r.Method)
					assert.Equal(t, "/verify-pin", r.URL.Path)
					assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

					var req models.VerifyPinRequest
					assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
					assert.Equal(t, "123456", req.PIN)

					writeJSON(t, w, http.StatusOK, models.PinResult{
						Authorized: true, VendorName: "Cafeteria One", VendorID: "CAF1",
					})
				}
			},
			wantResult: &models.PinResult{Authorized: true, VendorName: "Cafeteria One", VendorID: "CAF1"},
		},
		{
			name: "Неверный PIN",
			serverHandler: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, _ *http.Request) {
					writeJSON(t, w, http.StatusOK, models.PinResult{Message: "Unauthorized vendor"})
				}
			},
			wantResult: &models.PinResult{Message: "Unauthorized vendor"},
		},
		{
			name: "Превышен лимит попыток (429)",
			serverHandler: func(_ *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusTooManyRequests)
				}
			},
			wantErr: client.ErrTooManyAttempts,
		},
		{
			name: "Ошибка сервера (500)",
			serverHandler: func(_ *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusInternalServerError)
				}
			},
			wantErrMsg: "статус 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.serverHandler(t))
			defer server.Close()

			res, err := client.NewHTTPClient(server.URL).VerifyPin(context.Background(), "123456")

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantResult, res)
			}
		})
	}
}

func TestHTTPClient_UploadMenu(t *testing.T) {
	record := models.MenuRecord{
		VendorName: "Cafeteria One",
		ImageURL:   "/uploads/menuImage-1.jpg",
		UploadTime: "12:30:15",
		UploadDate: "2024-05-06",
	}

	t.Run("Успех", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/upload", r.URL.Path)
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "Cafeteria One", r.FormValue("vendorName"))

			file, header, err := r.FormFile("menuImage")
			require.NoError(t, err)
			defer file.Close()
			assert.Equal(t, "menu.jpg", header.Filename)
			assert.Equal(t, "image/jpeg", header.Header.Get("Content-Type"))
			data, err := io.ReadAll(file)
			require.NoError(t, err)
			assert.Equal(t, "jpeg-bytes", string(data))

			writeJSON(t, w, http.StatusOK, models.UploadResponse{
				Success: true, File: "uploads/menuImage-1.jpg", VendorData: record,
			})
		}))
		defer server.Close()

		res, err := client.NewHTTPClient(server.URL+"/").UploadMenu(context.Background(), client.Upload{
			VendorName:  "Cafeteria One",
			Filename:    "menu.jpg",
			ContentType: "image/jpeg",
			Body:        strings.NewReader("jpeg-bytes"),
		})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "uploads/menuImage-1.jpg", res.File)
		assert.Equal(t, record, res.VendorData)
	})

	t.Run("Сервер отклонил загрузку", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusOK, models.ErrorResponse{Error: "Error: Images Only!"})
		}))
		defer server.Close()

		_, err := client.NewHTTPClient(server.URL).UploadMenu(context.Background(), client.Upload{
			VendorName: "Cafeteria One",
			Filename:   "virus.exe",
			Body:       strings.NewReader("MZ"),
		})
		require.ErrorIs(t, err, client.ErrUploadRejected)
		assert.Contains(t, err.Error(), "Error: Images Only!")
	})

	t.Run("Нет содержимого файла", func(t *testing.T) {
		_, err := client.NewHTTPClient("http://localhost").UploadMenu(context.Background(), client.Upload{})
		require.Error(t, err)
	})
}

func TestHTTPClient_TodayMenus(t *testing.T) {
	t.Run("Успех", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/menus", r.URL.Path)
			writeJSON(t, w, http.StatusOK, []models.MenuRecord{{VendorName: "Green Bowl", UploadDate: "2024-05-06"}})
		}))
		defer server.Close()

		menus, err := client.NewHTTPClient(server.URL).TodayMenus(context.Background())
		require.NoError(t, err)
		require.Len(t, menus, 1)
		assert.Equal(t, "Green Bowl", menus[0].VendorName)
	})

	t.Run("Пустой список", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("null"))
		}))
		defer server.Close()

		menus, err := client.NewHTTPClient(server.URL).TodayMenus(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, menus)
		assert.Empty(t, menus)
	})

	t.Run("Ошибка сервера с сообщением", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusInternalServerError, models.ErrorResponse{Error: "Error fetching menus"})
		}))
		defer server.Close()

		_, err := client.NewHTTPClient(server.URL).TodayMenus(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Error fetching menus")
	})
}

func TestHTTPClient_DownloadImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/uploads/menuImage-1.jpg" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	c := client.NewHTTPClient(server.URL)

	t.Run("Относительная ссылка", func(t *testing.T) {
		body, err := c.DownloadImage(context.Background(), "/uploads/menuImage-1.jpg")
		require.NoError(t, err)
		defer body.Close()
		data, err := io.ReadAll(body)
		require.NoError(t, err)
		assert.Equal(t, "jpeg-bytes", string(data))
	})

	t.Run("Абсолютная ссылка", func(t *testing.T) {
		body, err := c.DownloadImage(context.Background(), server.URL+"/uploads/menuImage-1.jpg")
		require.NoError(t, err)
		body.Close()
	})

	t.Run("Изображение не найдено", func(t *testing.T) {
		_, err := c.DownloadImage(context.Background(), "/uploads/missing.jpg")
		require.ErrorIs(t, err, client.ErrImageNotFound)
	})
}
