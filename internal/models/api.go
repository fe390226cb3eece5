package models

// VerifyPinRequest представляет тело запроса проверки PIN-кода.
type VerifyPinRequest struct {
	PIN string `json:"pin"`
}

// PinResult - результат проверки PIN-кода.
type PinResult struct {
	Authorized bool   `json:"success"`
	VendorName string `json:"vendorName,omitempty"`
	VendorID   string `json:"vendorId,omitempty"`
	Message    string `json:"message,omitempty"`
}

// UploadResponse представляет тело успешного ответа на загрузку меню.
type UploadResponse struct {
	Success    bool       `json:"success"`
	File       string     `json:"file"`
	VendorData MenuRecord `json:"vendorData"`
}

// ErrorResponse представляет тело ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}
