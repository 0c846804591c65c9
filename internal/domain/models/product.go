package models

// Product представляет товар каталога
type Product struct {
	ID          int64   // Уникальный идентификатор товара
	ProductName string  // Название товара
	Price       float64 // Цена товара
}
