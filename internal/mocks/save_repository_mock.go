package mocks

import (
	"context"

	"github.com/sefran12/the-garden-of-forking-paths/internal/story"

	"github.com/stretchr/testify/mock"
)

// MockSaveRepository is a mock type for the story.SaveRepository type
type MockSaveRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, record
func (_m *MockSaveRepository) Create(ctx context.Context, record *story.SaveRecord) (string, error) {
	ret := _m.Called(ctx, record)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, *story.SaveRecord) string); ok {
		r0 = rf(ctx, record)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(string)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, *story.SaveRecord) error); ok {
		r1 = rf(ctx, record)
	} else {
		err := ret.Error(1)
		if err != nil {
			r1 = err
		}
	}

	return r0, r1
}

// Update provides a mock function with given fields: ctx, id, record
func (_m *MockSaveRepository) Update(ctx context.Context, id string, record *story.SaveRecord) error {
	ret := _m.Called(ctx, id, record)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, *story.SaveRecord) error); ok {
		r0 = rf(ctx, id, record)
	} else {
		err := ret.Error(0)
		if err != nil {
			r0 = err
		}
	}

	return r0
}

// Load provides a mock function with given fields: ctx, id
func (_m *MockSaveRepository) Load(ctx context.Context, id string) (*story.SaveRecord, error) {
	ret := _m.Called(ctx, id)

	var r0 *story.SaveRecord
	if rf, ok := ret.Get(0).(func(context.Context, string) *story.SaveRecord); ok {
		r0 = rf(ctx, id)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*story.SaveRecord)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, id)
	} else {
		err := ret.Error(1)
		if err != nil {
			r1 = err
		}
	}

	return r0, r1
}

// List provides a mock function with given fields: ctx
func (_m *MockSaveRepository) List(ctx context.Context) ([]story.SaveSummary, error) {
	ret := _m.Called(ctx)

	var r0 []story.SaveSummary
	if rf, ok := ret.Get(0).(func(context.Context) []story.SaveSummary); ok {
		r0 = rf(ctx)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]story.SaveSummary)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		err := ret.Error(1)
		if err != nil {
			r1 = err
		}
	}

	return r0, r1
}

// NewMockSaveRepository creates a new instance of MockSaveRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockSaveRepository(t interface {
	mock.TestingT
	Helper()
}) *MockSaveRepository {
	m := &MockSaveRepository{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ story.SaveRepository = (*MockSaveRepository)(nil)
