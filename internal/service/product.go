package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/ecommerce-api/internal/domain/models"
	"github.com/linemk/ecommerce-api/internal/storage"
)

// ProductService определяет операции над товарами каталога.
type ProductService interface {
	CreateProduct(ctx context.Context, productName string, price float64) (*ProductResponse, error)
	ListProducts(ctx context.Context) ([]ProductResponse, error)
	UpdateProduct(ctx context.Context, id int64, productName *string, price *float64) (*ProductResponse, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type productService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewProductService(log *slog.Logger, productRepo storage.ProductStorage) ProductService {
	return &productService{
		log:         log,
		productRepo: productRepo,
	}
}

// ProductResponse — представление товара во внешнем API.
type ProductResponse struct {
	ID          int64   `json:"id"`
	ProductName string  `json:"product_name"`
	Price       float64 `json:"price"`
}

// productToResponse — явная проекция товара, нижний уровень вложенности.
func productToResponse(product *models.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		ProductName: product.ProductName,
		Price:       product.Price,
	}
}

// productsToResponse всегда возвращает не-nil срез, чтобы пустой
// список сериализовался как [], а не null.
func productsToResponse(products []*models.Product) []ProductResponse {
	resp := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		resp = append(resp, productToResponse(product))
	}
	return resp
}

// CreateProduct сохраняет новый товар. Цена принимается как есть,
// без проверки на отрицательность.
func (s *productService) CreateProduct(ctx context.Context, productName string, price float64) (*ProductResponse, error) {
	const op = "service.ProductService.CreateProduct"
	logger := s.log.With(slog.String("op", op), slog.String("productName", productName))
	logger.Info("creating product")

	product, err := s.productRepo.CreateProduct(ctx, &models.Product{
		ProductName: productName,
		Price:       price,
	})
	if err != nil {
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create product: %w", op, err)
	}

	resp := productToResponse(product)
	return &resp, nil
}

func (s *productService) ListProducts(ctx context.Context) ([]ProductResponse, error) {
	const op = "service.ProductService.ListProducts"

	products, err := s.productRepo.ListProducts(ctx)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list products: %w", op, err)
	}
	return productsToResponse(products), nil
}

// UpdateProduct изменяет только переданные поля, остальные остаются прежними.
func (s *productService) UpdateProduct(ctx context.Context, id int64, productName *string, price *float64) (*ProductResponse, error) {
	const op = "service.ProductService.UpdateProduct"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		logger.Error("failed to get product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get product: %w", op, err)
	}

	if productName != nil {
		product.ProductName = *productName
	}
	if price != nil {
		product.Price = *price
	}

	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		logger.Error("failed to update product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update product: %w", op, err)
	}

	logger.Info("product updated")
	resp := productToResponse(product)
	return &resp, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id int64) error {
	const op = "service.ProductService.DeleteProduct"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		logger.Error("failed to delete product", slog.Any("error", err))
		return fmt.Errorf("%s: failed to delete product: %w", op, err)
	}

	logger.Info("product deleted")
	return nil
}
