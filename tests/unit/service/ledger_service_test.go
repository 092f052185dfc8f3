package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	ledgerService "github.com/sjktech/odledger/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sjktech/odledger/internal/cache"
	"github.com/sjktech/odledger/internal/config"
	"github.com/sjktech/odledger/internal/domain"
	"github.com/sjktech/odledger/internal/report"
	apperrors "github.com/sjktech/odledger/pkg/errors"
	"github.com/sjktech/odledger/tests/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		Redis: config.RedisConfig{CacheTTL: "1h"},
		Business: config.BusinessConfig{
			MaxPrincipal:   "10000000000",
			MaxRatePercent: "100",
			MaxTenureYears: "50",
			MaxEvents:      500,
		},
	}
}

func mustDate(t *testing.T, s string) domain.Date {
	t.Helper()
	date, err := domain.ParseDate(s)
	require.NoError(t, err)
	return date
}

// tenYearRequest is the reference loan: 1,000,000 at 8.5% over 10 years
// disbursed 01-01-2025, which computes to an EMI of 12700.64 and a ledger of
// 121 rows (Start plus 120 debits).
func tenYearRequest(t *testing.T) *domain.SimulationRequest {
	t.Helper()
	return &domain.SimulationRequest{
		Principal:         decimal.NewFromInt(1_000_000),
		AnnualRatePercent: decimal.NewFromFloat(8.5),
		TenureYears:       decimal.NewFromInt(10),
		DisbursementDate:  mustDate(t, "01-01-25"),
	}
}

func TestRun(t *testing.T) {
	override := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}

	tests := []struct {
		name           string
		request        func(*testing.T) *domain.SimulationRequest
		config         *config.Config
		expectedError  error
		errorContains  string
		validateResult func(*testing.T, *domain.SimulationResult)
	}{
		{
			name:    "Success - Computed installment",
			request: tenYearRequest,
			validateResult: func(t *testing.T, result *domain.SimulationResult) {
				assert.Equal(t, "12700.64", result.Installment.StringFixed(2))
				assert.Len(t, result.Rows, 121)
				assert.Equal(t, domain.EventStart, result.Rows[0].Type)
				assert.Equal(t, "01-01-2035", result.Rows[120].Date.String())
				assert.NotEqual(t, uuid.Nil, result.RunID)
				assert.False(t, result.GeneratedAt.IsZero())
			},
		},
		{
			name: "Success - Override above minimum",
			request: func(t *testing.T) *domain.SimulationRequest {
				request := tenYearRequest(t)
				request.Installment = override(13000)
				return request
			},
			validateResult: func(t *testing.T, result *domain.SimulationResult) {
				assert.Equal(t, "13000.00", result.Installment.StringFixed(2))
				assert.Len(t, result.Rows, 121)
				assert.NotNil(t, result.ClosureDate)
			},
		},
		{
			name: "Failure - Override below minimum",
			request: func(t *testing.T) *domain.SimulationRequest {
				request := tenYearRequest(t)
				request.Installment = override(12000)
				return request
			},
			expectedError: apperrors.ErrLowInstallment,
			errorContains: "12700.64",
		},
		{
			name: "Failure - Principal over configured limit",
			request: func(t *testing.T) *domain.SimulationRequest {
				request := tenYearRequest(t)
				request.Principal = decimal.NewFromInt(2_000_000)
				return request
			},
			config: &config.Config{
				Business: config.BusinessConfig{
					MaxPrincipal:   "1500000",
					MaxRatePercent: "100",
					MaxTenureYears: "50",
					MaxEvents:      500,
				},
			},
			expectedError: apperrors.ErrInvalidTerms,
			errorContains: "exceeds the maximum",
		},
		{
			name: "Failure - Too many events",
			request: func(t *testing.T) *domain.SimulationRequest {
				request := tenYearRequest(t)
				request.Events = []domain.Event{
					{Date: mustDate(t, "15-02-25"), Kind: domain.EventDeposit, Amount: decimal.NewFromInt(1000)},
					{Date: mustDate(t, "15-03-25"), Kind: domain.EventDeposit, Amount: decimal.NewFromInt(1000)},
				}
				return request
			},
			config: &config.Config{
				Business: config.BusinessConfig{
					MaxPrincipal:   "10000000000",
					MaxRatePercent: "100",
					MaxTenureYears: "50",
					MaxEvents:      1,
				},
			},
			expectedError: apperrors.ErrInvalidEvent,
			errorContains: "exceed the maximum",
		},
		{
			name: "Failure - Zero principal",
			request: func(t *testing.T) *domain.SimulationRequest {
				request := tenYearRequest(t)
				request.Principal = decimal.Zero
				return request
			},
			expectedError: apperrors.ErrInvalidTerms,
		},
		{
			name: "Failure - Engine event kind",
			request: func(t *testing.T) *domain.SimulationRequest {
				request := tenYearRequest(t)
				request.Events = []domain.Event{
					{Date: mustDate(t, "15-02-25"), Kind: domain.EventEMI, Amount: decimal.NewFromInt(1000)},
				}
				return request
			},
			expectedError: apperrors.ErrInvalidEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cfg := tt.config
			if cfg == nil {
				cfg = testConfig()
			}
			service := ledgerService.NewLedgerService(nil, cfg)

			// Act
			result, err := service.Run(context.Background(), tt.request(t))

			// Assert
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				if tt.errorContains != "" {
					assert.Contains(t, err.Error(), tt.errorContains)
				}
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			tt.validateResult(t, result)
		})
	}
}

func TestRun_CacheHit(t *testing.T) {
	mockCache := mocks.NewMockResultCache()
	service := ledgerService.NewLedgerService(mockCache, testConfig())

	request := tenYearRequest(t)
	key, err := cache.Fingerprint(request)
	require.NoError(t, err)

	cached := &domain.SimulationResult{
		RunID:       uuid.New(),
		Installment: decimal.NewFromInt(12700),
	}
	mockCache.On("Get", mock.Anything, key).Return(cached, nil)

	// Act
	result, err := service.Run(context.Background(), request)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, cached.RunID, result.RunID)
	mockCache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	mockCache.AssertExpectations(t)
}

func TestRun_CacheMiss(t *testing.T) {
	mockCache := mocks.NewMockResultCache()
	service := ledgerService.NewLedgerService(mockCache, testConfig())

	request := tenYearRequest(t)
	key, err := cache.Fingerprint(request)
	require.NoError(t, err)

	mockCache.On("Get", mock.Anything, key).Return(nil, nil)
	mockCache.On("Set", mock.Anything, key, mock.MatchedBy(func(result *domain.SimulationResult) bool {
		return len(result.Rows) == 121
	})).Return(nil)

	// Act
	result, err := service.Run(context.Background(), request)

	// Assert
	require.NoError(t, err)
	assert.Len(t, result.Rows, 121)
	mockCache.AssertExpectations(t)
}

func TestRun_CacheFailOpen(t *testing.T) {
	mockCache := mocks.NewMockResultCache()
	service := ledgerService.NewLedgerService(mockCache, testConfig())

	mockCache.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	mockCache.On("Set", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	// Act
	result, err := service.Run(context.Background(), tenYearRequest(t))

	// Assert: a broken cache degrades to recomputation, never to a failure.
	require.NoError(t, err)
	assert.Equal(t, "12700.64", result.Installment.StringFixed(2))
	mockCache.AssertExpectations(t)
}

func TestAggregate(t *testing.T) {
	service := ledgerService.NewLedgerService(nil, testConfig())

	request := tenYearRequest(t)
	request.Events = []domain.Event{
		{Date: mustDate(t, "15-02-25"), Kind: domain.EventDeposit, Amount: decimal.NewFromInt(50_000)},
		{Date: mustDate(t, "15-03-25"), Kind: domain.EventDeposit, Amount: decimal.NewFromInt(70_000)},
	}

	// Act: only the March deposit falls inside the window.
	result, err := service.Aggregate(context.Background(), request, report.Query{
		Kind: report.QueryTotalDeposits,
		From: mustDate(t, "01-03-25"),
		To:   mustDate(t, "31-03-25"),
	})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, result.Amount)
	assert.Equal(t, "70000.00", result.Amount.StringFixed(2))
	assert.Nil(t, result.Date)
}

func TestAggregate_InvalidKind(t *testing.T) {
	service := ledgerService.NewLedgerService(nil, testConfig())

	_, err := service.Aggregate(context.Background(), tenYearRequest(t), report.Query{Kind: "median_interest"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidQuery)
}
