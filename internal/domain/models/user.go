package models

// User представляет пользователя магазина
type User struct {
	ID      int64
	Name    string
	Address *string // в БД колонка допускает NULL
	Email   string  // уникальный
}
