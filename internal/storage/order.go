package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/ecommerce-api/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами и их составом.
// Мутации, входящие в многошаговую операцию, принимают транзакцию,
// которой управляет сервисный слой.
type OrderStorage interface {
	// CreateOrder вставляет новый заказ, дата заказа проставляется БД.
	CreateOrder(ctx context.Context, tx *sql.Tx, userID int64) (*models.Order, error)
	// AddOrderProducts добавляет строки связей заказ-товар.
	AddOrderProducts(ctx context.Context, tx *sql.Tx, orderID int64, productIDs []int64) error
	// DeleteOrderProducts удаляет все строки связей заказа.
	DeleteOrderProducts(ctx context.Context, tx *sql.Tx, orderID int64) error
	// UpdateOrderUser переназначает владельца заказа.
	UpdateOrderUser(ctx context.Context, tx *sql.Tx, orderID, userID int64) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	ListOrders(ctx context.Context) ([]*models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// orderRepository — конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrder(ctx context.Context, tx *sql.Tx, userID int64) (*models.Order, error) {
	order := &models.Order{UserID: userID}
	err := tx.QueryRowContext(ctx,
		"INSERT INTO orders (user_id) VALUES ($1) RETURNING id, order_date",
		userID,
	).Scan(&order.ID, &order.OrderDate)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

// AddOrderProducts вставляет строки связей. Список идентификаторов
// к этому моменту уже дедуплицирован и содержит только существующие
// товары, поэтому составной первичный ключ нарушаться не должен.
func (r *orderRepository) AddOrderProducts(ctx context.Context, tx *sql.Tx, orderID int64, productIDs []int64) error {
	for _, productID := range productIDs {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO order_product (order_id, product_id) VALUES ($1, $2)",
			orderID, productID,
		)
		if err != nil {
			return fmt.Errorf("failed to add order product %d: %w", productID, err)
		}
	}
	return nil
}

func (r *orderRepository) DeleteOrderProducts(ctx context.Context, tx *sql.Tx, orderID int64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM order_product WHERE order_id = $1", orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order products: %w", err)
	}
	return nil
}

func (r *orderRepository) UpdateOrderUser(ctx context.Context, tx *sql.Tx, orderID, userID int64) error {
	res, err := tx.ExecContext(ctx, "UPDATE orders SET user_id = $1 WHERE id = $2", userID, orderID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	order := &models.Order{}
	row := r.db.QueryRowContext(ctx, "SELECT id, order_date, user_id FROM orders WHERE id = $1", id)
	if err := row.Scan(&order.ID, &order.OrderDate, &order.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, order_date, user_id FROM orders ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, order_date, user_id FROM orders WHERE user_id = $1 ORDER BY id",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

// DeleteOrder удаляет заказ; строки связей убираются каскадом
// по внешнему ключу order_product.order_id.
func (r *orderRepository) DeleteOrder(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func scanOrders(rows *sql.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.OrderDate, &order.UserID); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
