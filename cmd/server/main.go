package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linemk/ecommerce-api/internal/app"
	"github.com/linemk/ecommerce-api/internal/app/handlers"
	"github.com/linemk/ecommerce-api/internal/config"
	"github.com/linemk/ecommerce-api/internal/lib/logger"
	"github.com/linemk/ecommerce-api/internal/lib/logger/handlers/urllog"
	"github.com/linemk/ecommerce-api/internal/service"
	"github.com/linemk/ecommerce-api/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// реализация слоев по работе с БД по каждой сущности
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)

	userService := service.NewUserService(application.Logger, userRepo, orderRepo, productRepo)
	productService := service.NewProductService(application.Logger, productRepo)
	orderService := service.NewOrderService(application.Logger, application.DB, userRepo, productRepo, orderRepo)

	// эндпоинты для пользователей
	router.Post("/api/users", handlers.CreateUserHandler(application.Logger, userService))
	router.Get("/api/users", handlers.ListUsersHandler(application.Logger, userService))
	router.Put("/api/users/{id}", handlers.UpdateUserHandler(application.Logger, userService))
	router.Delete("/api/users/{id}", handlers.DeleteUserHandler(application.Logger, userService))

	// эндпоинты для товаров
	router.Post("/api/products", handlers.CreateProductHandler(application.Logger, productService))
	router.Get("/api/products", handlers.ListProductsHandler(application.Logger, productService))
	router.Put("/api/products/{id}", handlers.UpdateProductHandler(application.Logger, productService))
	router.Delete("/api/products/{id}", handlers.DeleteProductHandler(application.Logger, productService))

	// эндпоинты для заказов
	router.Post("/api/orders", handlers.CreateOrderHandler(application.Logger, orderService))
	router.Get("/api/orders", handlers.ListOrdersHandler(application.Logger, orderService))
	router.Put("/api/orders/{id}", handlers.UpdateOrderHandler(application.Logger, orderService))
	router.Delete("/api/orders/{id}", handlers.DeleteOrderHandler(application.Logger, orderService))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
