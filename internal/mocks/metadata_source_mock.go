package mocks

import (
	"context"

	"github.com/sefran12/the-garden-of-forking-paths/internal/llm"
	"github.com/sefran12/the-garden-of-forking-paths/internal/story"

	"github.com/stretchr/testify/mock"
)

// MockMetadataSource is a mock type for the story.MetadataSource type
type MockMetadataSource struct {
	mock.Mock
}

// Generate provides a mock function with given fields: ctx, provider, model, plot, messages
func (_m *MockMetadataSource) Generate(ctx context.Context, provider llm.Provider, model string, plot string, messages []story.Message) (*story.SaveMetadata, error) {
	ret := _m.Called(ctx, provider, model, plot, messages)

	var r0 *story.SaveMetadata
	if rf, ok := ret.Get(0).(func(context.Context, llm.Provider, string, string, []story.Message) *story.SaveMetadata); ok {
		r0 = rf(ctx, provider, model, plot, messages)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*story.SaveMetadata)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, llm.Provider, string, string, []story.Message) error); ok {
		r1 = rf(ctx, provider, model, plot, messages)
	} else {
		err := ret.Error(1)
		if err != nil {
			r1 = err
		}
	}

	return r0, r1
}

// NewMockMetadataSource creates a new instance of MockMetadataSource. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockMetadataSource(t interface {
	mock.TestingT
	Helper()
}) *MockMetadataSource {
	m := &MockMetadataSource{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ story.MetadataSource = (*MockMetadataSource)(nil)
