package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"lending-engine/internal/api/handler"
	"lending-engine/internal/api/handler/dto"
	"lending-engine/internal/api/middleware"
	"lending-engine/internal/domain/authz"
	"lending-engine/internal/domain/customer"
	"lending-engine/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCustomerService struct {
	mock.Mock
}

func (_m *MockCustomerService) CreateCustomer(ctx context.Context, actor authz.Actor, input customer.CustomerInput) (*customer.Customer, error) {
	ret := _m.Called(ctx, actor, input)

	var r0 *customer.Customer
	if rf, ok := ret.Get(0).(func(context.Context, authz.Actor, customer.CustomerInput) *customer.Customer); ok {
		r0 = rf(ctx, actor, input)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*customer.Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, authz.Actor, customer.CustomerInput) error); ok {
		r1 = rf(ctx, actor, input)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockCustomerService) GetCustomer(ctx context.Context, actor authz.Actor, id uuid.UUID) (*customer.Customer, error) {
	ret := _m.Called(ctx, actor, id)

	var r0 *customer.Customer
	if rf, ok := ret.Get(0).(func(context.Context, authz.Actor, uuid.UUID) *customer.Customer); ok {
		r0 = rf(ctx, actor, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*customer.Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, authz.Actor, uuid.UUID) error); ok {
		r1 = rf(ctx, actor, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockCustomerService) ListCustomers(ctx context.Context, actor authz.Actor, limit int, offset int) ([]*customer.Customer, error) {
	ret := _m.Called(ctx, actor, limit, offset)

	var r0 []*customer.Customer
	if rf, ok := ret.Get(0).(func(context.Context, authz.Actor, int, int) []*customer.Customer); ok {
		r0 = rf(ctx, actor, limit, offset)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*customer.Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, authz.Actor, int, int) error); ok {
		r1 = rf(ctx, actor, limit, offset)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockCustomerService) UpdateCustomer(ctx context.Context, actor authz.Actor, id uuid.UUID, input customer.CustomerInput) (*customer.Customer, error) {
	ret := _m.Called(ctx, actor, id, input)

	var r0 *customer.Customer
	if rf, ok := ret.Get(0).(func(context.Context, authz.Actor, uuid.UUID, customer.CustomerInput) *customer.Customer); ok {
		r0 = rf(ctx, actor, id, input)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*customer.Customer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, authz.Actor, uuid.UUID, customer.CustomerInput) error); ok {
		r1 = rf(ctx, actor, id, input)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockCustomerService) DeleteCustomer(ctx context.Context, actor authz.Actor, id uuid.UUID) error {
	ret := _m.Called(ctx, actor, id)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, authz.Actor, uuid.UUID) error); ok {
		r0 = rf(ctx, actor, id)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func installerActor() authz.Actor {
	return authz.Actor{ID: uuid.New(), Role: authz.RoleInstaller}
}

func customerActor(profileID uuid.UUID) authz.Actor {
	return authz.Actor{ID: uuid.New(), Role: authz.RoleCustomer, CustomerID: &profileID}
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func validCreateCustomerRequest() dto.CreateCustomerRequest {
	return dto.CreateCustomerRequest{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		AddressLine1: "12 Analytical Way",
		City:         "Austin",
		State:        "TX",
		PostalCode:   "73301",
	}
}

func setupCustomerHandler() (*MockCustomerService, *MockUserService, *handler.CustomerHandler) {
	mockService := new(MockCustomerService)
	mockUserService := new(MockUserService)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return mockService, mockUserService, handler.NewCustomerHandler(mockService, mockUserService, logger)
}

func TestCreateCustomer(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService, _, h := setupCustomerHandler()
		actor := installerActor()

		created := &customer.Customer{ID: uuid.New(), FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
		mockService.On("CreateCustomer", mock.Anything, actor, mock.MatchedBy(func(in customer.CustomerInput) bool {
			return in.Email == "ada@example.com" && in.UserID == nil
		})).Return(created, nil)

		req := jsonRequest(http.MethodPost, "/customers", validCreateCustomerRequest())
		req = req.WithContext(middleware.WithActor(req.Context(), actor))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.CustomerResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, created.ID.String(), resp.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("links the user account when requested", func(t *testing.T) {
		mockService, mockUserService, h := setupCustomerHandler()
		actor := installerActor()
		userID := uuid.New()

		created := &customer.Customer{ID: uuid.New(), Email: "ada@example.com", UserID: &userID}
		mockService.On("CreateCustomer", mock.Anything, actor, mock.Anything).Return(created, nil)
		mockUserService.On("LinkCustomerProfile", mock.Anything, userID, created.ID).Return(nil)

		body := validCreateCustomerRequest()
		body.UserID = userID.String()
		req := jsonRequest(http.MethodPost, "/customers", body)
		req = req.WithContext(middleware.WithActor(req.Context(), actor))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		mockService.AssertExpectations(t)
		mockUserService.AssertExpectations(t)
	})

	t.Run("missing actor", func(t *testing.T) {
		mockService, _, h := setupCustomerHandler()

		req := jsonRequest(http.MethodPost, "/customers", validCreateCustomerRequest())
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		mockService.AssertNotCalled(t, "CreateCustomer")
	})

	t.Run("invalid payload", func(t *testing.T) {
		mockService, _, h := setupCustomerHandler()

		req := jsonRequest(http.MethodPost, "/customers", dto.CreateCustomerRequest{})
		req = req.WithContext(middleware.WithActor(req.Context(), installerActor()))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp dto.ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Details)
		mockService.AssertNotCalled(t, "CreateCustomer")
	})

	t.Run("customer actor is refused", func(t *testing.T) {
		mockService, _, h := setupCustomerHandler()
		actor := customerActor(uuid.New())

		mockService.On("CreateCustomer", mock.Anything, actor, mock.Anything).Return(nil, apperrors.ErrForbidden)

		req := jsonRequest(http.MethodPost, "/customers", validCreateCustomerRequest())
		req = req.WithContext(middleware.WithActor(req.Context(), actor))
		rec := httptest.NewRecorder()

		h.CreateCustomer(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestGetCustomer(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService, _, h := setupCustomerHandler()
		actor := installerActor()
		cust := &customer.Customer{ID: uuid.New(), FirstName: "Ada", Email: "ada@example.com"}

		mockService.On("GetCustomer", mock.Anything, actor, cust.ID).Return(cust, nil)

		req := httptest.NewRequest(http.MethodGet, "/customers/"+cust.ID.String(), nil)
		req = withURLParam(req, "customerID", cust.ID.String())
		req = req.WithContext(middleware.WithActor(req.Context(), actor))
		rec := httptest.NewRecorder()

		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.CustomerResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, cust.ID.String(), resp.ID)
		mockService.AssertExpectations(t)
	})

	t.Run("invalid customer ID", func(t *testing.T) {
		mockService, _, h := setupCustomerHandler()

		req := httptest.NewRequest(http.MethodGet, "/customers/abc", nil)
		req = withURLParam(req, "customerID", "abc")
		req = req.WithContext(middleware.WithActor(req.Context(), installerActor()))
		rec := httptest.NewRecorder()

		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "GetCustomer")
	})

	t.Run("not found and not owned look the same", func(t *testing.T) {
		mockService, _, h := setupCustomerHandler()
		actor := customerActor(uuid.New())
		otherID := uuid.New()

		mockService.On("GetCustomer", mock.Anything, actor, otherID).Return(nil, apperrors.ErrNotFound)

		req := httptest.NewRequest(http.MethodGet, "/customers/"+otherID.String(), nil)
		req = withURLParam(req, "customerID", otherID.String())
		req = req.WithContext(middleware.WithActor(req.Context(), actor))
		rec := httptest.NewRecorder()

		h.GetCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestListCustomers(t *testing.T) {
	t.Run("uses default pagination", func(t *testing.T) {
		mockService, _, h := setupCustomerHandler()
		actor := installerActor()

		customers := []*customer.Customer{{ID: uuid.New()}, {ID: uuid.New()}}
		mockService.On("ListCustomers", mock.Anything, actor, 50, 0).Return(customers, nil)

		req := httptest.NewRequest(http.MethodGet, "/customers", nil)
		req = req.WithContext(middleware.WithActor(req.Context(), actor))
		rec := httptest.NewRecorder()

		h.ListCustomers(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp []dto.CustomerResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp, 2)
		mockService.AssertExpectations(t)
	})

	t.Run("caps the page size", func(t *testing.T) {
		mockService, _, h := setupCustomerHandler()
		actor := installerActor()

		mockService.On("ListCustomers", mock.Anything, actor, 50, 10).Return([]*customer.Customer{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/customers?limit=9999&offset=10", nil)
		req = req.WithContext(middleware.WithActor(req.Context(), actor))
		rec := httptest.NewRecorder()

		h.ListCustomers(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestUpdateCustomer(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService, _, h := setupCustomerHandler()
		actor := installerActor()
		id := uuid.New()

		updated := &customer.Customer{ID: id, FirstName: "Ada", Email: "ada@example.com"}
		mockService.On("UpdateCustomer", mock.Anything, actor, id, mock.Anything).Return(updated, nil)

		req := jsonRequest(http.MethodPut, "/customers/"+id.String(), validCreateCustomerRequest())
		req = withURLParam(req, "customerID", id.String())
		req = req.WithContext(middleware.WithActor(req.Context(), actor))
		rec := httptest.NewRecorder()

		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("customer not found", func(t *testing.T) {
		mockService, _, h := setupCustomerHandler()
		actor := installerActor()
		id := uuid.New()

		mockService.On("UpdateCustomer", mock.Anything, actor, id, mock.Anything).Return(nil, apperrors.ErrNotFound)

		req := jsonRequest(http.MethodPut, "/customers/"+id.String(), validCreateCustomerRequest())
		req = withURLParam(req, "customerID", id.String())
		req = req.WithContext(middleware.WithActor(req.Context(), actor))
		rec := httptest.NewRecorder()

		h.UpdateCustomer(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		mockService.AssertExpectations(t)
	})
}

func TestDeleteCustomer(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockService, _, h := setupCustomerHandler()
		actor := installerActor()
		id := uuid.New()

		mockService.On("DeleteCustomer", mock.Anything, actor, id).Return(nil)

		req := httptest.NewRequest(http.MethodDelete, "/customers/"+id.String(), nil)
		req = withURLParam(req, "customerID", id.String())
		req = req.WithContext(middleware.WithActor(req.Context(), actor))
		rec := httptest.NewRecorder()

		h.DeleteCustomer(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("customer actor is refused", func(t *testing.T) {
		mockService, _, h := setupCustomerHandler()
		actor := customerActor(uuid.New())
		id := uuid.New()

		mockService.On("DeleteCustomer", mock.Anything, actor, id).Return(apperrors.ErrForbidden)

		req := httptest.NewRequest(http.MethodDelete, "/customers/"+id.String(), nil)
		req = withURLParam(req, "customerID", id.String())
		req = req.WithContext(middleware.WithActor(req.Context(), actor))
		rec := httptest.NewRecorder()

		h.DeleteCustomer(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		mockService.AssertExpectations(t)
	})
}
