package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sjktech/odledger/internal/config"
	"github.com/sjktech/odledger/internal/domain"
	"github.com/sjktech/odledger/internal/logger"
	"github.com/sjktech/odledger/internal/report"
	"github.com/sjktech/odledger/internal/service"
	"github.com/sjktech/odledger/pkg/utils"
)

func main() {
	log := logger.New("warn", "console")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "simulate":
		runSimulate(log)
	case "query":
		runQuery(log)
	case "export":
		runExport(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Overdraft EMI Ledger CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  odledger <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  simulate   Run a simulation and print the ledger schedule")
	fmt.Println("  query      Evaluate one derived query over a simulation")
	fmt.Println("  export     Render a ledger export to a file")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nRun 'odledger <command> -h' for more information on a command.")
}

// eventList collects repeated -event flags of the form kind:date:amount.
type eventList struct {
	events []domain.Event
}

func (e *eventList) String() string {
	return fmt.Sprintf("%d events", len(e.events))
}

func (e *eventList) Set(value string) error {
	parts := strings.SplitN(value, ":", 3)
	if len(parts) != 3 {
		return fmt.Errorf("invalid event %q: want kind:date:amount", value)
	}
	kind, err := domain.ParseEventKind(strings.TrimSpace(parts[0]))
	if err != nil {
		return err
	}
	date, err := domain.ParseDate(parts[1])
	if err != nil {
		return err
	}
	amount, err := utils.ParseAmount(parts[2])
	if err != nil {
		return err
	}
	e.events = append(e.events, domain.Event{Date: date, Kind: kind, Amount: amount})
	return nil
}

// loanFlags holds the loan-term flags shared by every subcommand.
type loanFlags struct {
	principal   *string
	rate        *string
	tenure      *string
	disburse    *string
	installment *string
	eventsFile  *string
	events      eventList
}

func registerLoanFlags(fs *flag.FlagSet) *loanFlags {
	lf := &loanFlags{}
	lf.principal = fs.String("principal", "", "loan principal; unit suffixes allowed: 750K, 2.5L, 1.2Cr")
	lf.rate = fs.String("rate", "", "annual interest rate percent, e.g. 8.5")
	lf.tenure = fs.String("tenure", "", "tenure in years, e.g. 10")
	lf.disburse = fs.String("disburse", "", "disbursement date, dd-mm-yy or dd-mm-yyyy")
	lf.installment = fs.String("installment", "", "EMI override; must be at least the computed minimum")
	lf.eventsFile = fs.String("events", "", "path to a JSON file holding the event list")
	fs.Var(&lf.events, "event", "event as kind:date:amount, e.g. Deposit:15-02-25:50K (repeatable)")
	return lf
}

func (lf *loanFlags) buildRequest() (*domain.SimulationRequest, error) {
	if *lf.principal == "" || *lf.rate == "" || *lf.tenure == "" || *lf.disburse == "" {
		return nil, fmt.Errorf("-principal, -rate, -tenure and -disburse are required")
	}

	principal, err := utils.ParseAmount(*lf.principal)
	if err != nil {
		return nil, err
	}
	rate, err := decimal.NewFromString(*lf.rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate %q: %w", *lf.rate, err)
	}
	tenure, err := decimal.NewFromString(*lf.tenure)
	if err != nil {
		return nil, fmt.Errorf("invalid tenure %q: %w", *lf.tenure, err)
	}
	disburse, err := domain.ParseDate(*lf.disburse)
	if err != nil {
		return nil, err
	}

	request := &domain.SimulationRequest{
		Principal:         principal,
		AnnualRatePercent: rate,
		TenureYears:       tenure,
		DisbursementDate:  disburse,
		Events:            lf.events.events,
	}

	if *lf.installment != "" {
		override, err := utils.ParseAmount(*lf.installment)
		if err != nil {
			return nil, err
		}
		request.Installment = &override
	}

	if *lf.eventsFile != "" {
		payload, err := os.ReadFile(*lf.eventsFile)
		if err != nil {
			return nil, fmt.Errorf("reading events file: %w", err)
		}
		var events []domain.Event
		if err := json.Unmarshal(payload, &events); err != nil {
			return nil, fmt.Errorf("parsing events file %s: %w", *lf.eventsFile, err)
		}
		request.Events = append(request.Events, events...)
	}

	return request, nil
}

// simulate builds the request from flags and runs it through the full service
// path, so CLI runs obey the same business limits as API calls.
func simulate(log zerolog.Logger, loan *loanFlags) (*domain.SimulationRequest, *domain.SimulationResult) {
	request, err := loan.buildRequest()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid arguments")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := logger.WithContext(context.Background(), log)
	result, err := service.NewLedgerService(nil, cfg).Run(ctx, request)
	if err != nil {
		log.Fatal().Err(err).Msg("Simulation failed")
	}
	return request, result
}

func runSimulate(log zerolog.Logger) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	loan := registerLoanFlags(fs)
	fs.Parse(os.Args[2:])

	_, result := simulate(log, loan)

	fmt.Printf("EMI: %s\n\n", result.Installment.StringFixed(2))
	printRows(result.Rows)

	for _, transition := range result.Transitions {
		switch transition.Kind {
		case domain.TransitionAdjustedZero:
			fmt.Printf("\n%s: deposits fully cover the outstanding principal; consider withdrawing or closing\n", transition.Date)
		case domain.TransitionLoanClosed:
			fmt.Printf("\n%s: loan fully paid\n", transition.Date)
		}
	}
	if result.ClosureDate == nil {
		fmt.Println("\nLoan still open at end of schedule")
	}
}

func runQuery(log zerolog.Logger) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	loan := registerLoanFlags(fs)
	kind := fs.String("type", "", "query kind: loan_closure_date, total_interest_paid, total_principal_paid, total_deposits, total_withdrawals")
	from := fs.String("from", "", "window start date, inclusive (dd-mm-yy or dd-mm-yyyy)")
	to := fs.String("to", "", "window end date, inclusive")
	fs.Parse(os.Args[2:])

	queryKind, err := report.ParseQueryKind(*kind)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid query")
	}
	query := report.Query{Kind: queryKind}
	if *from != "" {
		if query.From, err = domain.ParseDate(*from); err != nil {
			log.Fatal().Err(err).Msg("Invalid -from date")
		}
	}
	if *to != "" {
		if query.To, err = domain.ParseDate(*to); err != nil {
			log.Fatal().Err(err).Msg("Invalid -to date")
		}
	}

	_, result := simulate(log, loan)
	answer, err := report.Evaluate(result.Rows, query.Kind, query.From, query.To)
	if err != nil {
		log.Fatal().Err(err).Msg("Query failed")
	}

	switch {
	case answer.Amount != nil:
		fmt.Printf("%s: %s\n", answer.Kind, answer.Amount.StringFixed(2))
	case answer.Date != nil:
		fmt.Printf("%s: %s\n", answer.Kind, answer.Date)
	default:
		fmt.Printf("%s: loan still open at end of schedule\n", answer.Kind)
	}
}

func runExport(log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	loan := registerLoanFlags(fs)
	format := fs.String("format", "csv", "export format: csv or statement")
	out := fs.String("out", "", "output path (defaults to loan_ledger.csv or loan_statement.txt)")
	fs.Parse(os.Args[2:])

	if *format != "csv" && *format != "statement" {
		log.Fatal().Str("format", *format).Msg("Unknown export format")
	}
	if *out == "" {
		*out = "loan_ledger.csv"
		if *format == "statement" {
			*out = "loan_statement.txt"
		}
	}

	request, result := simulate(log, loan)

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot create output file")
	}
	defer f.Close()

	switch *format {
	case "csv":
		err = report.WriteCSV(f, result.Rows)
	case "statement":
		err = report.WriteStatement(f, report.Meta{
			Principal:    request.Principal,
			RatePercent:  request.AnnualRatePercent,
			TenureYears:  request.TenureYears,
			Installment:  result.Installment,
			Disbursement: request.DisbursementDate,
			GeneratedAt:  result.GeneratedAt,
		}, result.Rows)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}

	fmt.Printf("Wrote %d rows to %s\n", len(result.Rows), *out)
}

func printRows(rows []domain.LedgerRow) {
	fmt.Printf("%-12s %-9s %12s %12s %12s %13s %12s %13s\n",
		"Date", "Type", "Amount", "Principal", "Interest", "Outstanding", "Deposit", "Adjusted")
	for _, row := range rows {
		fmt.Printf("%-12s %-9s %12s %12s %12s %13s %12s %13s\n",
			row.Date,
			row.Type,
			row.Amount.StringFixed(2),
			row.Principal.StringFixed(2),
			row.Interest.StringFixed(2),
			row.Outstanding.StringFixed(2),
			row.Deposit.StringFixed(2),
			row.Adjusted.StringFixed(2),
		)
	}
}
