package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sjktech/odledger/internal/config"
	"github.com/sjktech/odledger/internal/domain"
	"github.com/sjktech/odledger/internal/handler"
	"github.com/sjktech/odledger/internal/logger"
	"github.com/sjktech/odledger/internal/report"
	apperrors "github.com/sjktech/odledger/pkg/errors"
	"github.com/sjktech/odledger/tests/mocks"
)

func date(t *testing.T, s string) domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func validRequest(t *testing.T) domain.SimulationRequest {
	t.Helper()
	return domain.SimulationRequest{
		Principal:         decimal.NewFromInt(1_000_000),
		AnnualRatePercent: decimal.NewFromFloat(8.5),
		TenureYears:       decimal.NewFromInt(10),
		DisbursementDate:  date(t, "01-01-25"),
	}
}

func sampleResult(t *testing.T) *domain.SimulationResult {
	t.Helper()
	amt := func(v string) decimal.Decimal {
		d, err := decimal.NewFromString(v)
		require.NoError(t, err)
		return d
	}
	return &domain.SimulationResult{
		RunID:       uuid.New(),
		Installment: amt("12700.64"),
		Rows: []domain.LedgerRow{
			{
				Date: date(t, "01-01-25"), Type: domain.EventStart,
				Outstanding: amt("1000000.00"), Adjusted: amt("1000000.00"),
			},
			{
				Date: date(t, "01-02-25"), Type: domain.EventEMI,
				Amount: amt("12700.64"), Principal: amt("5481.60"), Interest: amt("7219.04"),
				Outstanding: amt("994518.40"), Adjusted: amt("994518.40"),
			},
		},
		GeneratedAt: time.Now().UTC(),
	}
}

func TestSimulationHandler_Simulate(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*testing.T, *mocks.MockLedgerService)
		expectedStatus int
		expectedBody   string
		checkResponse  func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "successful simulation",
			requestBody: func(t *testing.T) interface{} { return validRequest(t) },
			setupMock: func(t *testing.T, mockService *mocks.MockLedgerService) {
				mockService.On("Run", mock.Anything, mock.MatchedBy(func(req *domain.SimulationRequest) bool {
					return req.Principal.Equal(decimal.NewFromInt(1_000_000))
				})).Return(sampleResult(t), nil).Once()
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var wrapper struct {
					Success   bool                    `json:"success"`
					Data      domain.SimulationResult `json:"data"`
					Timestamp time.Time               `json:"timestamp"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wrapper))
				assert.True(t, wrapper.Success)
				assert.Equal(t, "12700.64", wrapper.Data.Installment.StringFixed(2))
				assert.Len(t, wrapper.Data.Rows, 2)
				assert.Equal(t, domain.EventStart, wrapper.Data.Rows[0].Type)
			},
		},
		{
			name:           "invalid JSON payload",
			requestBody:    "{not json",
			setupMock:      func(*testing.T, *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "invalid request body",
		},
		{
			name: "validation error - missing principal",
			requestBody: map[string]interface{}{
				"annual_rate_percent": 8.5,
				"tenure_years":        10,
				"disbursement_date":   "01-01-25",
			},
			setupMock:      func(*testing.T, *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "request failed validation",
		},
		{
			name: "validation error - negative principal",
			requestBody: map[string]interface{}{
				"principal":           -5,
				"annual_rate_percent": 8.5,
				"tenure_years":        10,
				"disbursement_date":   "01-01-25",
			},
			setupMock:      func(*testing.T, *mocks.MockLedgerService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "request failed validation",
		},
		{
			name:        "domain error - installment below minimum",
			requestBody: func(t *testing.T) interface{} { return validRequest(t) },
			setupMock: func(t *testing.T, mockService *mocks.MockLedgerService) {
				mockService.On("Run", mock.Anything, mock.Anything).
					Return(nil, apperrors.WrapLowInstallment("12000.00", "12700.64")).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   apperrors.ErrCodeLowInstallment,
		},
		{
			name:        "service error - unexpected failure",
			requestBody: func(t *testing.T) interface{} { return validRequest(t) },
			setupMock: func(t *testing.T, mockService *mocks.MockLedgerService) {
				mockService.On("Run", mock.Anything, mock.Anything).
					Return(nil, assert.AnError).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "simulation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := mocks.NewMockLedgerService()
			tt.setupMock(t, mockService)

			simulationHandler := handler.NewSimulationHandler(mockService)

			var body bytes.Buffer
			switch payload := tt.requestBody.(type) {
			case string:
				body.WriteString(payload)
			case func(*testing.T) interface{}:
				require.NoError(t, json.NewEncoder(&body).Encode(payload(t)))
			default:
				require.NoError(t, json.NewEncoder(&body).Encode(payload))
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations", &body)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			simulationHandler.Simulate(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectedBody)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestSimulationHandler_Aggregate(t *testing.T) {
	mockService := mocks.NewMockLedgerService()

	total := decimal.NewFromInt(70_000)
	mockService.On("Aggregate", mock.Anything, mock.Anything, mock.MatchedBy(func(q report.Query) bool {
		return q.Kind == report.QueryTotalDeposits
	})).Return(report.Result{Kind: report.QueryTotalDeposits, Amount: &total}, nil).Once()

	simulationHandler := handler.NewSimulationHandler(mockService)

	payload := handler.AggregateRequest{
		Simulation: validRequest(t),
		Query:      report.Query{Kind: report.QueryTotalDeposits, From: date(t, "01-03-25"), To: date(t, "31-03-25")},
	}
	var body bytes.Buffer
	require.NoError(t, json.NewEncoder(&body).Encode(payload))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations/aggregate", &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	simulationHandler.Aggregate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var wrapper struct {
		Success bool          `json:"success"`
		Data    report.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wrapper))
	assert.True(t, wrapper.Success)
	assert.Equal(t, report.QueryTotalDeposits, wrapper.Data.Kind)
	require.NotNil(t, wrapper.Data.Amount)
	assert.Equal(t, "70000.00", wrapper.Data.Amount.StringFixed(2))

	mockService.AssertExpectations(t)
}

func TestSimulationHandler_Aggregate_InvalidQuery(t *testing.T) {
	mockService := mocks.NewMockLedgerService()
	mockService.On("Aggregate", mock.Anything, mock.Anything, mock.Anything).
		Return(report.Result{}, apperrors.WrapInvalidQuery(`unknown query kind "median_interest"`)).Once()

	simulationHandler := handler.NewSimulationHandler(mockService)

	payload := handler.AggregateRequest{
		Simulation: validRequest(t),
		Query:      report.Query{Kind: "median_interest"},
	}
	var body bytes.Buffer
	require.NoError(t, json.NewEncoder(&body).Encode(payload))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations/aggregate", &body)
	w := httptest.NewRecorder()

	simulationHandler.Aggregate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), apperrors.ErrCodeInvalidQuery)
	mockService.AssertExpectations(t)
}

func TestSimulationHandler_Export(t *testing.T) {
	tests := []struct {
		name          string
		format        string
		expectedType  string
		expectedFile  string
		expectedInDoc string
	}{
		{
			name:          "csv export",
			format:        "",
			expectedType:  "text/csv",
			expectedFile:  "loan_ledger.csv",
			expectedInDoc: "Date,Type,Amount,Principal,Interest,Outstanding Principal,Deposit Balance,Adjusted Principal",
		},
		{
			name:          "statement export",
			format:        "statement",
			expectedType:  "text/plain",
			expectedFile:  "loan_statement.txt",
			expectedInDoc: "Overdraft EMI Ledger Statement",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := mocks.NewMockLedgerService()
			mockService.On("Run", mock.Anything, mock.Anything).Return(sampleResult(t), nil).Once()

			simulationHandler := handler.NewSimulationHandler(mockService)

			var body bytes.Buffer
			require.NoError(t, json.NewEncoder(&body).Encode(validRequest(t)))

			target := "/api/v1/simulations/export"
			if tt.format != "" {
				target += "?format=" + tt.format
			}
			req := httptest.NewRequest(http.MethodPost, target, &body)
			w := httptest.NewRecorder()

			simulationHandler.Export(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.expectedType, w.Header().Get("Content-Type"))
			assert.Contains(t, w.Header().Get("Content-Disposition"), tt.expectedFile)
			assert.Contains(t, w.Body.String(), tt.expectedInDoc)
			mockService.AssertExpectations(t)
		})
	}
}

func TestSimulationHandler_Export_UnknownFormat(t *testing.T) {
	mockService := mocks.NewMockLedgerService()
	mockService.On("Run", mock.Anything, mock.Anything).Return(sampleResult(t), nil).Once()

	simulationHandler := handler.NewSimulationHandler(mockService)

	var body bytes.Buffer
	require.NoError(t, json.NewEncoder(&body).Encode(validRequest(t)))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/simulations/export?format=pdf", &body)
	w := httptest.NewRecorder()

	simulationHandler.Export(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown export format")
}

func TestRouter(t *testing.T) {
	mockService := mocks.NewMockLedgerService()
	mockService.On("Run", mock.Anything, mock.Anything).Return(sampleResult(t), nil).Once()

	cfg := &config.Config{Health: config.HealthConfig{Timeout: "1s"}}
	router := handler.NewRouter(
		handler.NewSimulationHandler(mockService),
		handler.NewHealthHandler(nil, cfg),
		logger.NewWithWriter(&bytes.Buffer{}),
	)
	server := httptest.NewServer(router)
	defer server.Close()

	t.Run("health endpoint", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("readiness reports cache disabled", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/health/ready")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("simulation carries request id", func(t *testing.T) {
		var body bytes.Buffer
		require.NoError(t, json.NewEncoder(&body).Encode(validRequest(t)))

		resp, err := http.Post(server.URL+"/api/v1/simulations", "application/json", &body)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})

	t.Run("preflight allowed by CORS", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/v1/simulations", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Methods"))
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
