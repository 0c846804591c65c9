package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/ecommerce-api/internal/app/handlers"
	"github.com/linemk/ecommerce-api/internal/service"
	"github.com/linemk/ecommerce-api/internal/storage"
	"github.com/stretchr/testify/assert"
)

// fakeUserService — фиктивная реализация для тестирования.
type fakeUserService struct {
	user  *service.UserResponse
	users []service.UserResponse
	err   error
}

var _ service.UserService = (*fakeUserService)(nil)

func (f *fakeUserService) CreateUser(ctx context.Context, name string, address *string, email string) (*service.UserResponse, error) {
	return f.user, f.err
}

func (f *fakeUserService) ListUsers(ctx context.Context) ([]service.UserResponse, error) {
	return f.users, f.err
}

func (f *fakeUserService) UpdateUser(ctx context.Context, id int64, name, address, email *string) (*service.UserResponse, error) {
	return f.user, f.err
}

func (f *fakeUserService) DeleteUser(ctx context.Context, id int64) error {
	return f.err
}

type fakeProductService struct {
	product  *service.ProductResponse
	products []service.ProductResponse
	err      error
}

var _ service.ProductService = (*fakeProductService)(nil)

func (f *fakeProductService) CreateProduct(ctx context.Context, productName string, price float64) (*service.ProductResponse, error) {
	return f.product, f.err
}

func (f *fakeProductService) ListProducts(ctx context.Context) ([]service.ProductResponse, error) {
	return f.products, f.err
}

func (f *fakeProductService) UpdateProduct(ctx context.Context, id int64, productName *string, price *float64) (*service.ProductResponse, error) {
	return f.product, f.err
}

func (f *fakeProductService) DeleteProduct(ctx context.Context, id int64) error {
	return f.err
}

type fakeOrderService struct {
	order  *service.OrderResponse
	orders []service.OrderResponse
	err    error
}

var _ service.OrderService = (*fakeOrderService)(nil)

func (f *fakeOrderService) CreateOrder(ctx context.Context, userID int64, productIDs []int64) (*service.OrderResponse, error) {
	return f.order, f.err
}

func (f *fakeOrderService) ListOrders(ctx context.Context) ([]service.OrderResponse, error) {
	return f.orders, f.err
}

func (f *fakeOrderService) UpdateOrder(ctx context.Context, id int64, userID *int64, productIDs *[]int64) (*service.OrderResponse, error) {
	return f.order, f.err
}

func (f *fakeOrderService) DeleteOrder(ctx context.Context, id int64) error {
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func TestCreateUserHandler_Success(t *testing.T) {
	fakeSvc := &fakeUserService{user: &service.UserResponse{
		ID:     1,
		Name:   "Ivan",
		Email:  "ivan@example.com",
		Orders: []service.OrderResponse{},
	}}
	handler := handlers.CreateUserHandler(testLogger(), fakeSvc)

	reqBody := `{"name": "Ivan", "email": "ivan@example.com"}`
	req := httptest.NewRequest("POST", "/api/users", bytes.NewBufferString(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code, "Expected status 201 Created")

	var resp service.UserResponse
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err, "Response decoding should succeed")
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "Ivan", resp.Name)
	assert.Nil(t, resp.Address)
	assert.NotNil(t, resp.Orders)
}

func TestCreateUserHandler_InvalidJSON(t *testing.T) {
	handler := handlers.CreateUserHandler(testLogger(), &fakeUserService{})

	reqBody := `{"name": "Ivan", "email":`
	req := httptest.NewRequest("POST", "/api/users", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 for invalid JSON")
}

func TestCreateUserHandler_MissingEmail(t *testing.T) {
	handler := handlers.CreateUserHandler(testLogger(), &fakeUserService{})

	reqBody := `{"name": "Ivan"}`
	req := httptest.NewRequest("POST", "/api/users", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 for missing required field")
}

func TestCreateUserHandler_EmailTaken(t *testing.T) {
	fakeSvc := &fakeUserService{err: storage.ErrEmailTaken}
	handler := handlers.CreateUserHandler(testLogger(), fakeSvc)

	reqBody := `{"name": "Ivan", "email": "taken@example.com"}`
	req := httptest.NewRequest("POST", "/api/users", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code, "Expected status 409 for duplicate email")
}

func TestListUsersHandler_Success(t *testing.T) {
	address := "Lenina st. 1"
	fakeSvc := &fakeUserService{users: []service.UserResponse{
		{ID: 1, Name: "Ivan", Address: &address, Email: "ivan@example.com", Orders: []service.OrderResponse{}},
	}}
	handler := handlers.ListUsersHandler(testLogger(), fakeSvc)

	req := httptest.NewRequest("GET", "/api/users", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp []service.UserResponse
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Len(t, resp, 1)
	assert.Equal(t, "Ivan", resp[0].Name)
}

// updateUserViaRouter прогоняет запрос через chi-роутер,
// чтобы заполнился path-параметр {id}.
func updateUserViaRouter(svc service.UserService, target, body string) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.Put("/api/users/{id}", handlers.UpdateUserHandler(testLogger(), svc))

	req := httptest.NewRequest("PUT", target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestUpdateUserHandler_NotFound(t *testing.T) {
	rr := updateUserViaRouter(&fakeUserService{err: storage.ErrUserNotFound}, "/api/users/42", `{"name": "Ivan"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code, "Expected status 404 for missing user")
}

func TestUpdateUserHandler_InvalidID(t *testing.T) {
	rr := updateUserViaRouter(&fakeUserService{}, "/api/users/abc", `{"name": "Ivan"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 for non-numeric id")
}

func TestDeleteUserHandler_HasOrders(t *testing.T) {
	router := chi.NewRouter()
	router.Delete("/api/users/{id}", handlers.DeleteUserHandler(testLogger(), &fakeUserService{err: storage.ErrUserHasOrders}))

	req := httptest.NewRequest("DELETE", "/api/users/1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code, "Expected status 409 for user with orders")
}

func TestDeleteUserHandler_Success(t *testing.T) {
	router := chi.NewRouter()
	router.Delete("/api/users/{id}", handlers.DeleteUserHandler(testLogger(), &fakeUserService{}))

	req := httptest.NewRequest("DELETE", "/api/users/1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.MessageResponse
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Equal(t, "User deleted", resp.Message)
}

func TestCreateProductHandler_Success(t *testing.T) {
	fakeSvc := &fakeProductService{product: &service.ProductResponse{
		ID:          7,
		ProductName: "keyboard",
		Price:       49.9,
	}}
	handler := handlers.CreateProductHandler(testLogger(), fakeSvc)

	reqBody := `{"product_name": "keyboard", "price": 49.9}`
	req := httptest.NewRequest("POST", "/api/products", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp service.ProductResponse
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, 49.9, resp.Price)
}

func TestCreateProductHandler_ZeroPriceAllowed(t *testing.T) {
	fakeSvc := &fakeProductService{product: &service.ProductResponse{ID: 1, ProductName: "sticker"}}
	handler := handlers.CreateProductHandler(testLogger(), fakeSvc)

	// Нулевая цена проходит: required проверяет наличие поля, а не значение
	reqBody := `{"product_name": "sticker", "price": 0}`
	req := httptest.NewRequest("POST", "/api/products", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestCreateProductHandler_MissingPrice(t *testing.T) {
	handler := handlers.CreateProductHandler(testLogger(), &fakeProductService{})

	reqBody := `{"product_name": "keyboard"}`
	req := httptest.NewRequest("POST", "/api/products", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 for missing price")
}

func TestUpdateProductHandler_NotFound(t *testing.T) {
	router := chi.NewRouter()
	router.Put("/api/products/{id}", handlers.UpdateProductHandler(testLogger(), &fakeProductService{err: storage.ErrProductNotFound}))

	req := httptest.NewRequest("PUT", "/api/products/42", bytes.NewBufferString(`{"price": 10}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteProductHandler_Success(t *testing.T) {
	router := chi.NewRouter()
	router.Delete("/api/products/{id}", handlers.DeleteProductHandler(testLogger(), &fakeProductService{}))

	req := httptest.NewRequest("DELETE", "/api/products/1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp handlers.MessageResponse
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Equal(t, "Product deleted", resp.Message)
}

func TestCreateOrderHandler_Success(t *testing.T) {
	fakeSvc := &fakeOrderService{order: &service.OrderResponse{
		ID:        5,
		OrderDate: time.Now(),
		UserID:    1,
		Products:  []service.ProductResponse{{ID: 2, ProductName: "keyboard", Price: 49.9}},
	}}
	handler := handlers.CreateOrderHandler(testLogger(), fakeSvc)

	reqBody := `{"user_id": 1, "product_ids": [2, 2, 99]}`
	req := httptest.NewRequest("POST", "/api/orders", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp service.OrderResponse
	err := json.NewDecoder(rr.Body).Decode(&resp)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), resp.ID)
	assert.Len(t, resp.Products, 1)
}

func TestCreateOrderHandler_UserNotFound(t *testing.T) {
	handler := handlers.CreateOrderHandler(testLogger(), &fakeOrderService{err: storage.ErrUserNotFound})

	reqBody := `{"user_id": 42, "product_ids": []}`
	req := httptest.NewRequest("POST", "/api/orders", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code, "Expected status 404 for unknown user")
}

func TestCreateOrderHandler_MissingUserID(t *testing.T) {
	handler := handlers.CreateOrderHandler(testLogger(), &fakeOrderService{})

	reqBody := `{"product_ids": [1]}`
	req := httptest.NewRequest("POST", "/api/orders", bytes.NewBufferString(reqBody))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "Expected status 400 for missing user_id")
}

func TestUpdateOrderHandler_NotFound(t *testing.T) {
	router := chi.NewRouter()
	router.Put("/api/orders/{id}", handlers.UpdateOrderHandler(testLogger(), &fakeOrderService{err: storage.ErrOrderNotFound}))

	req := httptest.NewRequest("PUT", "/api/orders/42", bytes.NewBufferString(`{"product_ids": [1]}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteOrderHandler_NotFound(t *testing.T) {
	router := chi.NewRouter()
	router.Delete("/api/orders/{id}", handlers.DeleteOrderHandler(testLogger(), &fakeOrderService{err: storage.ErrOrderNotFound}))

	req := httptest.NewRequest("DELETE", "/api/orders/42", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
