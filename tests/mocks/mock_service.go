package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sjktech/odledger/internal/domain"
	"github.com/sjktech/odledger/internal/report"
)

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Run(ctx context.Context, request *domain.SimulationRequest) (*domain.SimulationResult, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SimulationResult), args.Error(1)
}

func (m *MockLedgerService) Aggregate(ctx context.Context, request *domain.SimulationRequest, query report.Query) (report.Result, error) {
	args := m.Called(ctx, request, query)
	return args.Get(0).(report.Result), args.Error(1)
}

// NewMockLedgerService creates a new mock ledger service instance
func NewMockLedgerService() *MockLedgerService {
	return &MockLedgerService{}
}
