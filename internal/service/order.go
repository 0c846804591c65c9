package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/storage"
)

// OrderService определяет операции над заказами и их составом.
type OrderService interface {
	CreateOrder(ctx context.Context, userID int64, productIDs []int64) (*OrderResponse, error)
	ListOrders(ctx context.Context) ([]OrderResponse, error)
	// UpdateOrder: nil-поле означает "не менять"; переданный список
	// product_ids полностью заменяет прежний состав заказа.
	UpdateOrder(ctx context.Context, id int64, userID *int64, productIDs *[]int64) (*OrderResponse, error)
	DeleteOrder(ctx context.Context, id int64) error
}

type orderService struct {
	log         *slog.Logger
	db          *sql.DB
	userRepo    storage.UserStorage
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
}

func NewOrderService(log *slog.Logger, db *sql.DB, userRepo storage.UserStorage, productRepo storage.ProductStorage, orderRepo storage.OrderStorage) OrderService {
	return &orderService{
		log:         log,
		db:          db,
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// OrderResponse — представление заказа с вложенным составом.
type OrderResponse struct {
	ID        int64             `json:"id"`
	OrderDate time.Time         `json:"order_date"`
	UserID    int64             `json:"user_id"`
	Products  []ProductResponse `json:"products"`
}

func orderToResponse(order *models.Order, products []*models.Product) OrderResponse {
	return OrderResponse{
		ID:        order.ID,
		OrderDate: order.OrderDate,
		UserID:    order.UserID,
		Products:  productsToResponse(products),
	}
}

// uniqueIDs сводит список идентификаторов к множеству.
// Порядок входного списка не сохраняется, результат отсортирован.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	unique := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })
	return unique
}

func productIDs(products []*models.Product) []int64 {
	ids := make([]int64, 0, len(products))
	for _, product := range products {
		ids = append(ids, product.ID)
	}
	return ids
}

// CreateOrder создаёт заказ и его состав одной транзакцией.
// Дубликаты в product_ids схлопываются, неизвестные идентификаторы
// молча отбрасываются. Существование пользователя проверяется явно.
func (s *orderService) CreateOrder(ctx context.Context, userID int64, ids []int64) (*OrderResponse, error) {
	const op = "service.OrderService.CreateOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", userID))
	logger.Info("creating order", slog.Int("requestedProducts", len(ids)))

	if _, err := s.userRepo.GetUserByID(ctx, userID); err != nil {
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	// Разрешаем товары до открытия транзакции: выборка не участвует
	// в мутации, а ANY($1) уже отбрасывает неизвестные идентификаторы
	products, err := s.productRepo.GetProductsByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		logger.Error("failed to resolve products", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to resolve products: %w", op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	order, err := s.orderRepo.CreateOrder(ctx, tx, userID)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	if err := s.orderRepo.AddOrderProducts(ctx, tx, order.ID, productIDs(products)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to add order products", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to add order products: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order created", slog.Int64("orderID", order.ID), slog.Int("products", len(products)))
	resp := orderToResponse(order, products)
	return &resp, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]OrderResponse, error) {
	const op = "service.OrderService.ListOrders"

	orders, err := s.orderRepo.ListOrders(ctx)
	if err != nil {
		s.log.Error("failed to list orders", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list orders: %w", op, err)
	}

	resp := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		products, err := s.productRepo.GetProductsByOrderID(ctx, order.ID)
		if err != nil {
			s.log.Error("failed to get order products", slog.String("op", op), slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to get order products: %w", op, err)
		}
		resp = append(resp, orderToResponse(order, products))
	}
	return resp, nil
}

// UpdateOrder меняет владельца и/или состав заказа. Новый список
// product_ids заменяет прежний состав целиком, а не дополняет его.
func (s *orderService) UpdateOrder(ctx context.Context, id int64, userID *int64, ids *[]int64) (*OrderResponse, error) {
	const op = "service.OrderService.UpdateOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", id))

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		logger.Error("failed to get order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get order: %w", op, err)
	}

	if userID != nil {
		if _, err := s.userRepo.GetUserByID(ctx, *userID); err != nil {
			logger.Error("failed to get user", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
		}
	}

	var products []*models.Product
	if ids != nil {
		products, err = s.productRepo.GetProductsByIDs(ctx, uniqueIDs(*ids))
		if err != nil {
			logger.Error("failed to resolve products", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to resolve products: %w", op, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	if userID != nil {
		if err := s.orderRepo.UpdateOrderUser(ctx, tx, id, *userID); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to update order user", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to update order user: %w", op, err)
		}
		order.UserID = *userID
	}

	if ids != nil {
		if err := s.orderRepo.DeleteOrderProducts(ctx, tx, id); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to delete order products", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to delete order products: %w", op, err)
		}
		if err := s.orderRepo.AddOrderProducts(ctx, tx, id, productIDs(products)); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to add order products", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to add order products: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	// Состав не менялся — читаем текущий для ответа
	if ids == nil {
		products, err = s.productRepo.GetProductsByOrderID(ctx, id)
		if err != nil {
			logger.Error("failed to get order products", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to get order products: %w", op, err)
		}
	}

	logger.Info("order updated")
	resp := orderToResponse(order, products)
	return &resp, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, id int64) error {
	const op = "service.OrderService.DeleteOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", id))

	if err := s.orderRepo.DeleteOrder(ctx, id); err != nil {
		logger.Error("failed to delete order", slog.Any("error", err))
		return fmt.Errorf("%s: failed to delete order: %w", op, err)
	}

	logger.Info("order deleted")
	return nil
}
