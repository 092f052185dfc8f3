package report

import (
	"encoding/csv"
	"io"

	"github.com/sjktech/odledger/internal/domain"
	apperrors "github.com/sjktech/odledger/pkg/errors"
)

// csvHeader keeps the ledger table column order.
var csvHeader = []string{
	"Date", "Type", "Amount", "Principal", "Interest",
	"Outstanding Principal", "Deposit Balance", "Adjusted Principal",
}

// WriteCSV renders the rows as a CSV document with one header record.
// Monetary values are fixed to 2 decimal places, dates to dd-mm-yyyy.
func WriteCSV(w io.Writer, rows []domain.LedgerRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return apperrors.WrapExportError("csv", err)
	}
	for _, row := range rows {
		record := []string{
			row.Date.String(),
			row.Type.String(),
			row.Amount.StringFixed(2),
			row.Principal.StringFixed(2),
			row.Interest.StringFixed(2),
			row.Outstanding.StringFixed(2),
			row.Deposit.StringFixed(2),
			row.Adjusted.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return apperrors.WrapExportError("csv", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperrors.WrapExportError("csv", err)
	}
	return nil
}
