package testing

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockVersionSource is a mock implementation of the workload version source.
type MockVersionSource struct {
	mock.Mock
}

// NewMockVersionSource creates a new mock version source.
func NewMockVersionSource() *MockVersionSource {
	return &MockVersionSource{}
}

// Version returns the mocked version.
func (m *MockVersionSource) Version(ctx context.Context) string {
	args := m.Called(ctx)
	return args.String(0)
}

// WithVersion configures every Version call to return version.
func (m *MockVersionSource) WithVersion(version string) *MockVersionSource {
	m.On("Version", mock.Anything).Return(version)
	return m
}
