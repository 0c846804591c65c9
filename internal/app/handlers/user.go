package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/linemk/ecommerce-api/internal/service"
	"github.com/linemk/ecommerce-api/internal/storage"
)

var validate = validator.New()

// CreateUserRequest — тело запроса POST /api/users.
// Как и в остальных create-запросах, проверяется только наличие
// обязательных полей, без валидации формата.
type CreateUserRequest struct {
	Name    string  `json:"name" validate:"required"`
	Address *string `json:"address"`
	Email   string  `json:"email" validate:"required"`
}

// UpdateUserRequest — тело запроса PUT /api/users/{id}.
// Каждое поле необязательно: применяются только присутствующие.
type UpdateUserRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Email   *string `json:"email"`
}

// MessageResponse — ответ на успешное удаление.
type MessageResponse struct {
	Message string `json:"message"`
}

// idFromRequest извлекает числовой идентификатор из path-параметра.
func idFromRequest(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// CreateUserHandler обрабатывает запрос POST /api/users.
func CreateUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateUserHandler"
		logger := log.With(slog.String("op", op))

		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		user, err := userService.CreateUser(r.Context(), req.Name, req.Address, req.Email)
		if err != nil {
			logger.Error("failed to create user", slog.Any("error", err))
			if errors.Is(err, storage.ErrEmailTaken) {
				http.Error(w, "email already taken", http.StatusConflict)
				return
			}
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, logger, http.StatusCreated, user)
	}
}

// ListUsersHandler обрабатывает запрос GET /api/users.
// Каждый пользователь возвращается с вложенными заказами и их составом.
func ListUsersHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListUsersHandler"
		logger := log.With(slog.String("op", op))

		users, err := userService.ListUsers(r.Context())
		if err != nil {
			logger.Error("failed to list users", slog.Any("error", err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, logger, http.StatusOK, users)
	}
}

// UpdateUserHandler обрабатывает запрос PUT /api/users/{id}.
func UpdateUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateUserHandler"
		logger := log.With(slog.String("op", op))

		id, err := idFromRequest(r)
		if err != nil {
			logger.Error("invalid user id", slog.Any("error", err))
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}

		var req UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		user, err := userService.UpdateUser(r.Context(), id, req.Name, req.Address, req.Email)
		if err != nil {
			logger.Error("failed to update user", slog.Any("error", err))
			switch {
			case errors.Is(err, storage.ErrUserNotFound):
				http.Error(w, "user not found", http.StatusNotFound)
			case errors.Is(err, storage.ErrEmailTaken):
				http.Error(w, "email already taken", http.StatusConflict)
			default:
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, logger, http.StatusOK, user)
	}
}

// DeleteUserHandler обрабатывает запрос DELETE /api/users/{id}.
func DeleteUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteUserHandler"
		logger := log.With(slog.String("op", op))

		id, err := idFromRequest(r)
		if err != nil {
			logger.Error("invalid user id", slog.Any("error", err))
			http.Error(w, "invalid user id", http.StatusBadRequest)
			return
		}

		if err := userService.DeleteUser(r.Context(), id); err != nil {
			logger.Error("failed to delete user", slog.Any("error", err))
			switch {
			case errors.Is(err, storage.ErrUserNotFound):
				http.Error(w, "user not found", http.StatusNotFound)
			case errors.Is(err, storage.ErrUserHasOrders):
				http.Error(w, "user has orders", http.StatusConflict)
			default:
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, logger, http.StatusOK, MessageResponse{Message: "User deleted"})
	}
}
