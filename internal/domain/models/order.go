package models

import "time"

// Order представляет заказ пользователя.
// Состав заказа хранится отдельно, в таблице связей order_product.
type Order struct {
	ID        int64
	OrderDate time.Time // проставляется БД при создании
	UserID    int64
}
