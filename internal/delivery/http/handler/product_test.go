package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/storefront_reviews/internal/domain"
	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
)

// MockProductService is a mock implementation of ProductService
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, prod *domain.Product) error {
	args := m.Called(ctx, prod)
	return args.Error(0)
}

func (m *MockProductService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductService) List(ctx context.Context, limit, offset int) ([]*domain.Product, int, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.Product), args.Int(1), args.Error(2)
}

func (m *MockProductService) Update(ctx context.Context, prod *domain.Product) error {
	args := m.Called(ctx, prod)
	return args.Error(0)
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestProductHandler_Create_Success(t *testing.T) {
	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, logger.New("test"))

	bodyBytes, _ := json.Marshal(CreateProductRequest{Name: "Test Product", Price: 99.99})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	mockService.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.Name == "Test Product" && p.Price == 99.99
	})).Return(nil)

	handler.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)

	var response map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response, "data")
}

func TestProductHandler_Create_InvalidJSON(t *testing.T) {
	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, logger.New("test"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader([]byte("invalid json")))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response["error"], "Invalid request body")
	mockService.AssertNotCalled(t, "Create")
}

func TestProductHandler_Create_ValidationError(t *testing.T) {
	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, logger.New("test"))

	bodyBytes, _ := json.Marshal(CreateProductRequest{Name: "", Price: 99.99})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response["error"], "name is required")
	mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductHandler_Create_StoreUnavailable(t *testing.T) {
	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, logger.New("test"))

	bodyBytes, _ := json.Marshal(CreateProductRequest{Name: "Test Product", Price: 99.99})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()

	mockService.On("Create", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: connection refused", domain.ErrStoreUnavailable))

	handler.Create(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestProductHandler_GetByID_Success(t *testing.T) {
	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, logger.New("test"))

	productID := uuid.New()
	expectedProduct := &domain.Product{
		ID:           productID,
		Name:         "Test Product",
		Price:        99.99,
		Ratings:      4.5,
		NumOfReviews: 2,
		Version:      1,
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String(), nil)
	req = withURLParams(req, map[string]string{"id": productID.String()})
	w := httptest.NewRecorder()

	mockService.On("GetByID", mock.Anything, productID).Return(expectedProduct, nil)

	handler.GetByID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)

	var response struct {
		Data struct {
			Ratings      float64 `json:"ratings"`
			NumOfReviews int     `json:"numOfReviews"`
		} `json:"data"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, 4.5, response.Data.Ratings)
	assert.Equal(t, 2, response.Data.NumOfReviews)
}

func TestProductHandler_GetByID_InvalidUUID(t *testing.T) {
	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, logger.New("test"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/invalid-uuid", nil)
	req = withURLParams(req, map[string]string{"id": "invalid-uuid"})
	w := httptest.NewRecorder()

	handler.GetByID(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Contains(t, response["error"], "Invalid product ID")
}

func TestProductHandler_GetByID_NotFound(t *testing.T) {
	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, logger.New("test"))

	productID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String(), nil)
	req = withURLParams(req, map[string]string{"id": productID.String()})
	w := httptest.NewRecorder()

	mockService.On("GetByID", mock.Anything, productID).Return(nil, domain.ErrNotFound)

	handler.GetByID(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}

func TestProductHandler_List_WithPagination(t *testing.T) {
	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, logger.New("test"))

	products := []*domain.Product{
		{ID: uuid.New(), Name: "Product 1", Price: 10},
		{ID: uuid.New(), Name: "Product 2", Price: 20},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=2&offset=4", nil)
	w := httptest.NewRecorder()

	mockService.On("List", mock.Anything, 2, 4).Return(products, 6, nil)

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)

	var response struct {
		Pagination map[string]int `json:"pagination"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, 6, response.Pagination["total"])
	assert.Equal(t, 2, response.Pagination["limit"])
	assert.Equal(t, 4, response.Pagination["offset"])
}

func TestProductHandler_Update_Success(t *testing.T) {
	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, logger.New("test"))

	productID := uuid.New()
	existing := &domain.Product{ID: productID, Name: "Old", Price: 5, Version: 3}

	bodyBytes, _ := json.Marshal(UpdateProductRequest{Name: "New", Price: 7})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+productID.String(), bytes.NewReader(bodyBytes))
	req = withURLParams(req, map[string]string{"id": productID.String()})
	w := httptest.NewRecorder()

	mockService.On("GetByID", mock.Anything, productID).Return(existing, nil)
	mockService.On("Update", mock.Anything, mock.MatchedBy(func(p *domain.Product) bool {
		return p.ID == productID && p.Name == "New" && p.Version == 3
	})).Return(nil)

	handler.Update(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestProductHandler_Update_Conflict(t *testing.T) {
	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, logger.New("test"))

	productID := uuid.New()

	bodyBytes, _ := json.Marshal(UpdateProductRequest{Name: "New", Price: 7})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+productID.String(), bytes.NewReader(bodyBytes))
	req = withURLParams(req, map[string]string{"id": productID.String()})
	w := httptest.NewRecorder()

	mockService.On("GetByID", mock.Anything, productID).Return(&domain.Product{ID: productID, Version: 1}, nil)
	mockService.On("Update", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	handler.Update(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestProductHandler_Delete_Success(t *testing.T) {
	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, logger.New("test"))

	productID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+productID.String(), nil)
	req = withURLParams(req, map[string]string{"id": productID.String()})
	w := httptest.NewRecorder()

	mockService.On("Delete", mock.Anything, productID).Return(nil)

	handler.Delete(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockService.AssertExpectations(t)
}

func TestProductHandler_Delete_NotFound(t *testing.T) {
	mockService := new(MockProductService)
	handler := NewProductHandler(mockService, logger.New("test"))

	productID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+productID.String(), nil)
	req = withURLParams(req, map[string]string{"id": productID.String()})
	w := httptest.NewRecorder()

	mockService.On("Delete", mock.Anything, productID).Return(domain.ErrNotFound)

	handler.Delete(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
