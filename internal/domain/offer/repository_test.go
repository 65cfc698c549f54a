package offer

import (
	"context"

	"lending-engine/internal/domain/authz"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) Create(ctx context.Context, o *LoanOffer) error {
	ret := _m.Called(ctx, o)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *LoanOffer) error); ok {
		r0 = rf(ctx, o)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*LoanOffer, error) {
	ret := _m.Called(ctx, id)

	var r0 *LoanOffer
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) *LoanOffer); ok {
		r0 = rf(ctx, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*LoanOffer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) List(ctx context.Context, scope authz.Scope, filter ListFilter) ([]*LoanOffer, error) {
	ret := _m.Called(ctx, scope, filter)

	var r0 []*LoanOffer
	if rf, ok := ret.Get(0).(func(context.Context, authz.Scope, ListFilter) []*LoanOffer); ok {
		r0 = rf(ctx, scope, filter)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*LoanOffer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, authz.Scope, ListFilter) error); ok {
		r1 = rf(ctx, scope, filter)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) Update(ctx context.Context, o *LoanOffer) error {
	ret := _m.Called(ctx, o)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *LoanOffer) error); ok {
		r0 = rf(ctx, o)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ret := _m.Called(ctx, id)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) error); ok {
		r0 = rf(ctx, id)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockRepository) ListPage(ctx context.Context, limit, offset int) ([]*LoanOffer, error) {
	ret := _m.Called(ctx, limit, offset)

	var r0 []*LoanOffer
	if rf, ok := ret.Get(0).(func(context.Context, int, int) []*LoanOffer); ok {
		r0 = rf(ctx, limit, offset)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]*LoanOffer)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, int, int) error); ok {
		r1 = rf(ctx, limit, offset)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

func (_m *MockRepository) UpdateMonthlyPayment(ctx context.Context, id uuid.UUID, payment decimal.Decimal) error {
	ret := _m.Called(ctx, id, payment)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, decimal.Decimal) error); ok {
		r0 = rf(ctx, id, payment)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}
