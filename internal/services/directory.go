package services

import "github.com/VijayGit-Hub/menu-upload-system/internal/models"

// VendorDirectory определяет справочник поставщиков, необходимый сервисам.
type VendorDirectory interface {
	ByPin(pin string) (models.VendorCredential, bool)
	ByName(name string) (models.VendorCredential, bool)
}
