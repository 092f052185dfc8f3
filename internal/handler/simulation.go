package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/sjktech/odledger/internal/domain"
	"github.com/sjktech/odledger/internal/logger"
	"github.com/sjktech/odledger/internal/metrics"
	"github.com/sjktech/odledger/internal/report"
	apperrors "github.com/sjktech/odledger/pkg/errors"
	"github.com/sjktech/odledger/pkg/response"
)

// LedgerService is the slice of the service layer the HTTP surface consumes.
type LedgerService interface {
	Run(ctx context.Context, request *domain.SimulationRequest) (*domain.SimulationResult, error)
	Aggregate(ctx context.Context, request *domain.SimulationRequest, query report.Query) (report.Result, error)
}

type SimulationHandler struct {
	service   LedgerService
	validator *validator.Validate
}

func NewSimulationHandler(service LedgerService) *SimulationHandler {
	return &SimulationHandler{
		service:   service,
		validator: newValidator(),
	}
}

// AggregateRequest pairs a simulation with one derived query over its rows.
type AggregateRequest struct {
	Simulation domain.SimulationRequest `json:"simulation"`
	Query      report.Query             `json:"query"`
}

// Simulate runs one full ledger simulation and returns the result envelope.
func (h *SimulationHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var request domain.SimulationRequest
	if !h.decode(w, r, &request) {
		return
	}

	result, err := h.service.Run(r.Context(), &request)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.Success(w, result)
}

// Aggregate runs a simulation and evaluates one derived query over its rows.
func (h *SimulationHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	var request AggregateRequest
	if !h.decode(w, r, &request) {
		return
	}

	result, err := h.service.Aggregate(r.Context(), &request.Simulation, request.Query)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	response.Success(w, result)
}

// Export runs a simulation and streams the rendered ledger as an attachment.
// The render lands in a buffer first, so a rendering failure produces a clean
// error response instead of a truncated download.
func (h *SimulationHandler) Export(w http.ResponseWriter, r *http.Request) {
	var request domain.SimulationRequest
	if !h.decode(w, r, &request) {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	result, err := h.service.Run(r.Context(), &request)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	var buf bytes.Buffer
	var contentType, filename string
	switch format {
	case "csv":
		contentType, filename = "text/csv", "loan_ledger.csv"
		err = report.WriteCSV(&buf, result.Rows)
	case "statement":
		contentType, filename = "text/plain", "loan_statement.txt"
		err = report.WriteStatement(&buf, exportMeta(&request, result), result.Rows)
	default:
		response.BadRequest(w, "unknown export format "+strconv.Quote(format), nil)
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	metrics.ExportsTotal.WithLabelValues(format).Inc()
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		lg := logger.FromContext(r.Context())
		lg.Error().Err(err).Msg("writing export body failed")
	}
}

func exportMeta(request *domain.SimulationRequest, result *domain.SimulationResult) report.Meta {
	return report.Meta{
		Principal:    request.Principal,
		RatePercent:  request.AnnualRatePercent,
		TenureYears:  request.TenureYears,
		Installment:  result.Installment,
		Disbursement: request.DisbursementDate,
		GeneratedAt:  result.GeneratedAt,
	}
}

// decode unmarshals the body into dst and applies the struct validations.
// It writes the 400 itself so callers only continue on success.
func (h *SimulationHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		response.BadRequest(w, "request failed validation", err)
		return false
	}
	return true
}

// writeDomainError maps coded domain failures to 400s and everything else to
// a logged 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case apperrors.ErrCodeInvalidTerms,
			apperrors.ErrCodeInvalidEvent,
			apperrors.ErrCodeInvalidQuery,
			apperrors.ErrCodeLowInstallment:
			response.ErrorCode(w, http.StatusBadRequest, domainErr.Code, domainErr.Message, domainErr.Err)
			return
		}
	}
	lg := logger.FromContext(r.Context())
	lg.Error().Err(err).Msg("simulation request failed")
	response.InternalServerError(w, "simulation failed", err)
}
