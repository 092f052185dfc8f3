package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sjktech/odledger/internal/config"
	"github.com/sjktech/odledger/internal/domain"
	"github.com/sjktech/odledger/internal/logger"
	"github.com/sjktech/odledger/internal/metrics"
	"github.com/sjktech/odledger/internal/report"
)

// Runner is the piece of the service layer the exporter consumes.
type Runner interface {
	Run(ctx context.Context, request *domain.SimulationRequest) (*domain.SimulationResult, error)
}

// Exporter renders ledger exports in bulk: every JSON simulation request
// found in the request directory becomes a `<name>_ledger.csv` and a
// `<name>_statement.txt` in the output directory. A bad request file is
// logged and skipped; it never stops the sweep.
type Exporter struct {
	runner     Runner
	requestDir string
	outputDir  string
}

func NewExporter(runner Runner, cfg *config.Config) *Exporter {
	return &Exporter{
		runner:     runner,
		requestDir: cfg.Export.RequestDir,
		outputDir:  cfg.Export.OutputDir,
	}
}

// Run sweeps the request directory once. It returns an error only when the
// sweep itself cannot proceed; per-file failures are logged and counted.
func (e *Exporter) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	entries, err := os.ReadDir(e.requestDir)
	if err != nil {
		return fmt.Errorf("reading request directory %s: %w", e.requestDir, err)
	}
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", e.outputDir, err)
	}

	exported, failed := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := e.exportOne(ctx, entry.Name()); err != nil {
			failed++
			log.Error().Err(err).Str("request", entry.Name()).Msg("export failed")
			continue
		}
		exported++
	}

	log.Info().Int("exported", exported).Int("failed", failed).Msg("export sweep finished")
	return nil
}

func (e *Exporter) exportOne(ctx context.Context, name string) error {
	payload, err := os.ReadFile(filepath.Join(e.requestDir, name))
	if err != nil {
		return fmt.Errorf("reading request: %w", err)
	}

	var request domain.SimulationRequest
	if err := json.Unmarshal(payload, &request); err != nil {
		return fmt.Errorf("parsing request: %w", err)
	}

	result, err := e.runner.Run(ctx, &request)
	if err != nil {
		return fmt.Errorf("simulating: %w", err)
	}

	stem := strings.TrimSuffix(name, ".json")
	if err := e.writeExport(stem+"_ledger.csv", "csv", func(f *os.File) error {
		return report.WriteCSV(f, result.Rows)
	}); err != nil {
		return err
	}

	meta := report.Meta{
		Principal:    request.Principal,
		RatePercent:  request.AnnualRatePercent,
		TenureYears:  request.TenureYears,
		Installment:  result.Installment,
		Disbursement: request.DisbursementDate,
		GeneratedAt:  result.GeneratedAt,
	}
	return e.writeExport(stem+"_statement.txt", "statement", func(f *os.File) error {
		return report.WriteStatement(f, meta, result.Rows)
	})
}

func (e *Exporter) writeExport(filename, format string, render func(*os.File) error) error {
	f, err := os.Create(filepath.Join(e.outputDir, filename))
	if err != nil {
		return fmt.Errorf("creating %s: %w", filename, err)
	}
	defer f.Close()

	if err := render(f); err != nil {
		return fmt.Errorf("rendering %s: %w", filename, err)
	}

	metrics.ExportsTotal.WithLabelValues(format).Inc()
	return nil
}
