package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sjktech/odledger/internal/domain"
	apperrors "github.com/sjktech/odledger/pkg/errors"
	"github.com/sjktech/odledger/pkg/utils"
)

const (
	statementRowsPerPage = 40
	statementWidth       = 96
	statementTimeLayout  = "02-01-2006 15:04"
)

var statementRule = strings.Repeat("-", statementWidth)

// Meta is the loan header block repeated on every statement page.
type Meta struct {
	Principal    decimal.Decimal
	RatePercent  decimal.Decimal
	TenureYears  decimal.Decimal
	Installment  decimal.Decimal
	Disbursement domain.Date
	GeneratedAt  time.Time
}

// WriteStatement renders the rows as a paginated fixed-width text statement:
// a loan header block on every page, 40 rows per page, a right-aligned page
// number per page, and a tool footer at the end. Amount columns use the
// compact rupee form.
func WriteStatement(w io.Writer, meta Meta, rows []domain.LedgerRow) error {
	bw := bufio.NewWriter(w)
	pages := paginate(rows, statementRowsPerPage)
	for i, page := range pages {
		if i > 0 {
			fmt.Fprintln(bw)
		}
		writePageHeader(bw, meta)
		for _, row := range page {
			writeStatementRow(bw, row)
		}
		fmt.Fprintf(bw, "%*s\n", statementWidth, fmt.Sprintf("Page %d", i+1))
	}
	fmt.Fprintln(bw, "Generated by EMI Ledger Tool | www.sreejakumar.dev")
	if err := bw.Flush(); err != nil {
		return apperrors.WrapExportError("statement", err)
	}
	return nil
}

func writePageHeader(w io.Writer, meta Meta) {
	fmt.Fprintln(w, "Overdraft EMI Ledger Statement")
	fmt.Fprintln(w, "Powered by Sreejakumar Technologies")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Principal: %s\n", utils.FormatShort(meta.Principal))
	fmt.Fprintf(w, "Rate: %s%% | Tenure: %s yrs | EMI: %s\n",
		meta.RatePercent, meta.TenureYears, utils.FormatShort(meta.Installment))
	fmt.Fprintf(w, "Disbursement: %s\n", meta.Disbursement)
	fmt.Fprintf(w, "Generated on: %s\n", meta.GeneratedAt.Format(statementTimeLayout))
	fmt.Fprintln(w, statementRule)
	fmt.Fprintf(w, "%-12s%-10s%12s%12s%12s%13s%12s%13s\n",
		"Date", "Type", "Amount", "Principal", "Interest", "Outstanding", "Deposit", "Adjusted")
	fmt.Fprintln(w, statementRule)
}

func writeStatementRow(w io.Writer, row domain.LedgerRow) {
	fmt.Fprintf(w, "%-12s%-10s%12s%12s%12s%13s%12s%13s\n",
		row.Date,
		row.Type,
		utils.FormatShort(row.Amount),
		utils.FormatShort(row.Principal),
		utils.FormatShort(row.Interest),
		utils.FormatShort(row.Outstanding),
		utils.FormatShort(row.Deposit),
		utils.FormatShort(row.Adjusted),
	)
}

// paginate slices rows into fixed-size pages. An empty ledger still renders
// one page so the header block always appears.
func paginate(rows []domain.LedgerRow, size int) [][]domain.LedgerRow {
	if len(rows) == 0 {
		return make([][]domain.LedgerRow, 1)
	}
	var pages [][]domain.LedgerRow
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		pages = append(pages, rows[start:end])
	}
	return pages
}
