// Package client реализует HTTP-клиент API сервиса меню.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/VijayGit-Hub/menu-upload-system/internal/models"
)

const defaultTimeout = 30 * time.Second

// Client определяет интерфейс для взаимодействия с API сервиса меню.
type Client interface {
	// VerifyPin проверяет PIN-код поставщика.
	VerifyPin(ctx context.Context, pin string) (*models.PinResult, error)
	// UploadMenu загружает изображение меню от имени поставщика.
	UploadMenu(ctx context.Context, upload Upload) (*models.UploadResponse, error)
	// TodayMenus возвращает меню, загруженные сегодня.
	TodayMenus(ctx context.Context) ([]models.MenuRecord, error)
	// DownloadImage скачивает изображение по ссылке из записи меню.
	DownloadImage(ctx context.Context, imageURL string) (io.ReadCloser, error)
}

// Upload описывает загружаемый файл меню.
type Upload struct {
	VendorName  string
	Filename    string
	ContentType string
	Body        io.Reader
}

// httpClient реализует интерфейс Client по HTTP.
type httpClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient создает новый экземпляр API клиента.
func NewHTTPClient(baseURL string) Client {
	return &httpClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// VerifyPin отправляет PIN-код на проверку.
func (c *httpClient) VerifyPin(ctx context.Context, pin string) (*models.PinResult, error) {
	verifyURL, err := url.JoinPath(c.baseURL, "/verify-pin")
	if err != nil {
		return nil, fmt.Errorf("ошибка формирования URL для проверки PIN: %w", err)
	}

	jsonData, err := json.Marshal(models.VerifyPinRequest{PIN: pin})
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования PIN-кода: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, verifyURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса на проверку PIN: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса на проверку PIN: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrTooManyAttempts
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ошибка проверки PIN на сервере: статус %d", resp.StatusCode)
	}

	var result models.PinResult
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("ошибка декодирования ответа проверки PIN: %w", err)
	}
	return &result, nil
}

// uploadReply объединяет оба варианта ответа на загрузку.
type uploadReply struct {
	models.UploadResponse
	Error string `json:"error"`
}

// UploadMenu отправляет multipart-форму с изображением меню.
func (c *httpClient) UploadMenu(ctx context.Context, upload Upload) (*models.UploadResponse, error) {
	if upload.Body == nil {
		return nil, errors.New("не передано содержимое файла")
	}
	uploadURL, err := url.JoinPath(c.baseURL, "/upload")
	if err != nil {
		return nil, fmt.Errorf("ошибка формирования URL для загрузки: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err = mw.WriteField("vendorName", upload.VendorName); err != nil {
		return nil, fmt.Errorf("ошибка формирования формы: %w", err)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="menuImage"; filename=%q`, upload.Filename))
	if upload.ContentType != "" {
		h.Set("Content-Type", upload.ContentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("ошибка формирования формы: %w", err)
	}
	if _, err = io.Copy(part, upload.Body); err != nil {
		return nil, fmt.Errorf("ошибка чтения файла меню: %w", err)
	}
	if err = mw.Close(); err != nil {
		return nil, fmt.Errorf("ошибка формирования формы: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса на загрузку: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса на загрузку: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ошибка загрузки на сервер: статус %d", resp.StatusCode)
	}

	var reply uploadReply
	if err = json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("ошибка декодирования ответа на загрузку: %w", err)
	}
	if reply.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrUploadRejected, reply.Error)
	}
	if !reply.Success {
		return nil, ErrUploadRejected
	}
	return &reply.UploadResponse, nil
}

// TodayMenus получает список меню за сегодня.
func (c *httpClient) TodayMenus(ctx context.Context) ([]models.MenuRecord, error) {
	menusURL, err := url.JoinPath(c.baseURL, "/api/menus")
	if err != nil {
		return nil, fmt.Errorf("ошибка формирования URL для списка меню: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, menusURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса на список меню: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса на список меню: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp models.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&errResp) == nil && errResp.Error != "" {
			return nil, fmt.Errorf("ошибка получения списка меню: %s", errResp.Error)
		}
		return nil, fmt.Errorf("ошибка получения списка меню: статус %d", resp.StatusCode)
	}

	var menus []models.MenuRecord
	if err = json.NewDecoder(resp.Body).Decode(&menus); err != nil {
		return nil, fmt.Errorf("ошибка декодирования списка меню: %w", err)
	}
	if menus == nil {
		menus = []models.MenuRecord{}
	}
	return menus, nil
}

// DownloadImage скачивает изображение. Вызывающий код должен закрыть поток.
func (c *httpClient) DownloadImage(ctx context.Context, imageURL string) (io.ReadCloser, error) {
	target := imageURL
	if !strings.HasPrefix(imageURL, "http://") && !strings.HasPrefix(imageURL, "https://") {
		var err error
		target, err = url.JoinPath(c.baseURL, imageURL)
		if err != nil {
			return nil, fmt.Errorf("ошибка формирования URL изображения: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса на скачивание: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса на скачивание: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, ErrImageNotFound
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("ошибка скачивания изображения: статус %d", resp.StatusCode)
	}
}

var (
	// ErrTooManyAttempts - сервер ограничил число попыток проверки PIN.
	ErrTooManyAttempts = errors.New("слишком много попыток проверки PIN")
	// ErrUploadRejected - сервер отклонил загрузку.
	ErrUploadRejected = errors.New("загрузка отклонена сервером")
	// ErrImageNotFound - изображение отсутствует на сервере.
	ErrImageNotFound = errors.New("изображение не найдено")
)
