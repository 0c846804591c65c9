package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/storage"
)

// UserService определяет операции над пользователями.
type UserService interface {
	CreateUser(ctx context.Context, name string, address *string, email string) (*UserResponse, error)
	ListUsers(ctx context.Context) ([]UserResponse, error)
	// UpdateUser: nil-поле означает "не менять".
	UpdateUser(ctx context.Context, id int64, name, address, email *string) (*UserResponse, error)
	DeleteUser(ctx context.Context, id int64) error
}

type userService struct {
	log         *slog.Logger
	userRepo    storage.UserStorage
	orderRepo   storage.OrderStorage
	productRepo storage.ProductStorage
}

func NewUserService(log *slog.Logger, userRepo storage.UserStorage, orderRepo storage.OrderStorage, productRepo storage.ProductStorage) UserService {
	return &userService{
		log:         log,
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// UserResponse — представление пользователя с вложенными заказами.
// Глубина вложенности фиксирована: пользователь -> заказы -> товары.
type UserResponse struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Address *string         `json:"address"`
	Email   string          `json:"email"`
	Orders  []OrderResponse `json:"orders"`
}

func userToResponse(user *models.User, orders []OrderResponse) UserResponse {
	return UserResponse{
		ID:      user.ID,
		Name:    user.Name,
		Address: user.Address,
		Email:   user.Email,
		Orders:  orders,
	}
}

// CreateUser сохраняет нового пользователя. Уникальность email
// контролирует БД; нарушение приходит как storage.ErrEmailTaken.
func (s *userService) CreateUser(ctx context.Context, name string, address *string, email string) (*UserResponse, error) {
	const op = "service.UserService.CreateUser"
	logger := s.log.With(slog.String("op", op), slog.String("email", email))
	logger.Info("creating user")

	user, err := s.userRepo.CreateUser(ctx, &models.User{
		Name:    name,
		Address: address,
		Email:   email,
	})
	if err != nil {
		logger.Error("failed to create user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	logger.Info("user created", slog.Int64("userID", user.ID))
	resp := userToResponse(user, make([]OrderResponse, 0))
	return &resp, nil
}

// ListUsers возвращает всех пользователей с вложенными заказами,
// каждый заказ — со своим составом.
func (s *userService) ListUsers(ctx context.Context) ([]UserResponse, error) {
	const op = "service.UserService.ListUsers"

	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		s.log.Error("failed to list users", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list users: %w", op, err)
	}

	resp := make([]UserResponse, 0, len(users))
	for _, user := range users {
		orders, err := s.orderRepo.GetOrdersByUserID(ctx, user.ID)
		if err != nil {
			s.log.Error("failed to get user orders", slog.String("op", op), slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to get user orders: %w", op, err)
		}
		orderResponses := make([]OrderResponse, 0, len(orders))
		for _, order := range orders {
			products, err := s.productRepo.GetProductsByOrderID(ctx, order.ID)
			if err != nil {
				s.log.Error("failed to get order products", slog.String("op", op), slog.Any("error", err))
				return nil, fmt.Errorf("%s: failed to get order products: %w", op, err)
			}
			orderResponses = append(orderResponses, orderToResponse(order, products))
		}
		resp = append(resp, userToResponse(user, orderResponses))
	}
	return resp, nil
}

// UpdateUser изменяет только переданные поля, остальные остаются прежними.
func (s *userService) UpdateUser(ctx context.Context, id int64, name, address, email *string) (*UserResponse, error) {
	const op = "service.UserService.UpdateUser"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", id))

	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		logger.Error("failed to get user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if name != nil {
		user.Name = *name
	}
	if address != nil {
		user.Address = address
	}
	if email != nil {
		user.Email = *email
	}

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		logger.Error("failed to update user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update user: %w", op, err)
	}

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, id)
	if err != nil {
		logger.Error("failed to get user orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user orders: %w", op, err)
	}
	orderResponses := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		products, err := s.productRepo.GetProductsByOrderID(ctx, order.ID)
		if err != nil {
			logger.Error("failed to get order products", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to get order products: %w", op, err)
		}
		orderResponses = append(orderResponses, orderToResponse(order, products))
	}

	logger.Info("user updated")
	resp := userToResponse(user, orderResponses)
	return &resp, nil
}

// DeleteUser удаляет пользователя. Пользователь с существующими
// заказами не удаляется: приходит storage.ErrUserHasOrders.
func (s *userService) DeleteUser(ctx context.Context, id int64) error {
	const op = "service.UserService.DeleteUser"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", id))

	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		logger.Error("failed to delete user", slog.Any("error", err))
		return fmt.Errorf("%s: failed to delete user: %w", op, err)
	}

	logger.Info("user deleted")
	return nil
}
