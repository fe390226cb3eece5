package models

// MenuRecord представляет меню поставщика, загруженное за день.
// Поле VendorName является ключом: в хранилище не более одной записи на поставщика.
type MenuRecord struct {
	VendorName string `json:"vendorName"`
	VendorID   string `json:"vendorId,omitempty"`
	ImageURL   string `json:"imageUrl"`   // Относительный путь к изображению, например /uploads/menuImage-1.png
	UploadTime string `json:"uploadTime"` // Время загрузки (только для отображения)
	UploadDate string `json:"uploadDate"` // Дата загрузки в формате YYYY-MM-DD, ключ фильтрации и очистки
}

// Форматы даты и времени для полей MenuRecord.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)
