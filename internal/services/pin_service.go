package services

import (
	"unicode/utf8"

	"github.com/VijayGit-Hub/menu-upload-system/internal/models"
)

// Сообщения результата проверки PIN-кода.
const (
	MsgInvalidPINFormat   = "Invalid PIN format"
	MsgUnauthorizedVendor = "Unauthorized vendor"
)

// PinService определяет интерфейс проверки PIN-кода поставщика.
type PinService interface {
	VerifyPin(pin string) models.PinResult
}

var _ PinService = (*pinService)(nil)

type pinService struct {
	vendors VendorDirectory
}

// NewPinService создает сервис проверки PIN-кода.
func NewPinService(vendors VendorDirectory) PinService {
	return &pinService{vendors: vendors}
}

// VerifyPin проверяет формат PIN-кода и ищет поставщика в справочнике.
// Не имеет побочных эффектов.
func (s *pinService) VerifyPin(pin string) models.PinResult {
	if utf8.RuneCountInString(pin) != models.PINLength {
		return models.PinResult{Message: MsgInvalidPINFormat}
	}
	vendor, ok := s.vendors.ByPin(pin)
	if !ok {
		return models.PinResult{Message: MsgUnauthorizedVendor}
	}
	return models.PinResult{
		Authorized: true,
		VendorName: vendor.Name,
		VendorID:   vendor.ID,
	}
}
