package models

// PINLength - обязательная длина PIN-кода поставщика.
const PINLength = 6

// VendorCredential описывает авторизованного поставщика.
type VendorCredential struct {
	PIN  string `yaml:"pin,omitempty" json:"-"`
	Name string `yaml:"name" json:"name"`
	ID   string `yaml:"id" json:"id"`
	// PINHash - bcrypt-хеш PIN-кода. Используется вместо PIN в файле поставщиков.
	PINHash string `yaml:"pin_hash,omitempty" json:"-"`
}
