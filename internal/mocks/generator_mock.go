package mocks

import (
	"context"

	"github.com/sefran12/the-garden-of-forking-paths/internal/engine"
	"github.com/sefran12/the-garden-of-forking-paths/internal/story"

	"github.com/stretchr/testify/mock"
)

// MockGenerator is a mock type for the story.Generator type
type MockGenerator struct {
	mock.Mock
}

// Generate provides a mock function with given fields: ctx, cfg, in
func (_m *MockGenerator) Generate(ctx context.Context, cfg engine.Config, in engine.Input) (*engine.Outcome, error) {
	ret := _m.Called(ctx, cfg, in)

	var r0 *engine.Outcome
	if rf, ok := ret.Get(0).(func(context.Context, engine.Config, engine.Input) *engine.Outcome); ok {
		r0 = rf(ctx, cfg, in)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*engine.Outcome)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, engine.Config, engine.Input) error); ok {
		r1 = rf(ctx, cfg, in)
	} else {
		err := ret.Error(1)
		if err != nil {
			r1 = err
		}
	}

	return r0, r1
}

// NewMockGenerator creates a new instance of MockGenerator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockGenerator(t interface {
	mock.TestingT
	Helper()
}) *MockGenerator {
	m := &MockGenerator{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ story.Generator = (*MockGenerator)(nil)
