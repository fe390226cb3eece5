// Package vendors содержит неизменяемый справочник авторизованных поставщиков.
package vendors

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/VijayGit-Hub/menu-upload-system/internal/models"
)

// Directory - справочник поставщиков: PIN -> учетные данные.
// После создания не изменяется, поэтому безопасен для конкурентного чтения.
type Directory struct {
	byPin  map[string]models.VendorCredential
	byName map[string]models.VendorCredential
	hashed []models.VendorCredential // Записи, у которых задан только PINHash
}

// defaultVendors - встроенный список поставщиков.
var defaultVendors = []models.VendorCredential{
	{PIN: "123456", Name: "Cafeteria One", ID: "CAF1"},
	{PIN: "234567", Name: "Green Bowl", ID: "GRB2"},
	{PIN: "345678", Name: "Spice Route", ID: "SPR3"},
	{PIN: "456789", Name: "Daily Bakery", ID: "DBK4"},
	{PIN: "567890", Name: "Noodle House", ID: "NDH5"},
}

// Default возвращает справочник со встроенным списком поставщиков.
func Default() *Directory {
	d, err := New(defaultVendors)
	if err != nil {
		// Встроенный список проверяется тестами.
		panic(fmt.Sprintf("некорректный встроенный список поставщиков: %v", err))
	}
	return d
}

// New создает справочник из списка учетных данных.
// Входной срез копируется, дубликаты PIN и имен отклоняются.
func New(creds []models.VendorCredential) (*Directory, error) {
	if len(creds) == 0 {
		return nil, ErrEmptyDirectory
	}
	d := &Directory{
		byPin:  make(map[string]models.VendorCredential, len(creds)),
		byName: make(map[string]models.VendorCredential, len(creds)),
	}
	for i, c := range creds {
		if c.Name == "" {
			return nil, fmt.Errorf("запись %d: %w", i, ErrEmptyName)
		}
		if _, dup := d.byName[c.Name]; dup {
			return nil, fmt.Errorf("поставщик %q: %w", c.Name, ErrDuplicateVendor)
		}
		switch {
		case c.PIN != "":
			if utf8.RuneCountInString(c.PIN) != models.PINLength {
				return nil, fmt.Errorf("поставщик %q: %w", c.Name, ErrInvalidPIN)
			}
			if _, dup := d.byPin[c.PIN]; dup {
				return nil, fmt.Errorf("поставщик %q: %w", c.Name, ErrDuplicatePIN)
			}
			d.byPin[c.PIN] = c
		case c.PINHash != "":
			d.hashed = append(d.hashed, c)
		default:
			return nil, fmt.Errorf("поставщик %q: %w", c.Name, ErrInvalidPIN)
		}
		d.byName[c.Name] = c
	}
	return d, nil
}

// LoadFile читает справочник из YAML-файла со списком поставщиков.
func LoadFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла поставщиков: %w", err)
	}
	var creds []models.VendorCredential
	if err = yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("ошибка разбора файла поставщиков: %w", err)
	}
	return New(creds)
}

// ByPin ищет поставщика по точному совпадению PIN-кода.
func (d *Directory) ByPin(pin string) (models.VendorCredential, bool) {
	if c, ok := d.byPin[pin]; ok {
		return c, true
	}
	for _, c := range d.hashed {
		if bcrypt.CompareHashAndPassword([]byte(c.PINHash), []byte(pin)) == nil {
			return c, true
		}
	}
	return models.VendorCredential{}, false
}

// ByName ищет поставщика по точному совпадению имени.
func (d *Directory) ByName(name string) (models.VendorCredential, bool) {
	c, ok := d.byName[name]
	return c, ok
}

// Len возвращает количество поставщиков в справочнике.
func (d *Directory) Len() int {
	return len(d.byName)
}

// Ошибки справочника.
var (
	ErrEmptyDirectory  = errors.New("список поставщиков пуст")
	ErrEmptyName       = errors.New("не указано имя поставщика")
	ErrInvalidPIN      = errors.New("PIN-код должен состоять из 6 символов")
	ErrDuplicatePIN    = errors.New("PIN-код уже используется другим поставщиком")
	ErrDuplicateVendor = errors.New("поставщик указан дважды")
)
