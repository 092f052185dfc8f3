package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sjktech/odledger/internal/domain"
)

type MockResultCache struct {
	mock.Mock
}

func (m *MockResultCache) Get(ctx context.Context, key string) (*domain.SimulationResult, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SimulationResult), args.Error(1)
}

func (m *MockResultCache) Set(ctx context.Context, key string, result *domain.SimulationResult) error {
	args := m.Called(ctx, key, result)
	return args.Error(0)
}

// NewMockResultCache creates a new mock result cache instance
func NewMockResultCache() *MockResultCache {
	return &MockResultCache{}
}
