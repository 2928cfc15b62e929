package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"storefront-admin-service/internal/models"
)

const (
	// DefaultBatchSize bounds the number of create calls in flight at
	// once; a batch must settle before the next one starts.
	DefaultBatchSize = 5
	// PreviewRows is how many mapped drafts a preview returns.
	PreviewRows = 10
)

// ErrImportRunning is returned when a run is started while another one
// is still in flight. Runs are deliberately exclusive: two concurrent
// imports would interleave their outcome counts.
var ErrImportRunning = errors.New("importer: an import run is already in progress")

// ProductCreator is the single operation the pipeline needs from the
// products client.
type ProductCreator interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
}

// Pipeline parses delimited files into product drafts and drives the
// batched create loop. One run at a time; a run is cancellable between
// batches but every row in a started batch is attempted.
type Pipeline struct {
	products ProductCreator
	log      *logrus.Entry

	// OnProgress, when set, is invoked with a snapshot after each batch
	// settles. Set before the first Start; not synchronized afterwards.
	OnProgress func(models.ImportRun)

	mu     sync.Mutex
	run    *models.ImportRun
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPipeline creates an import pipeline.
func NewPipeline(products ProductCreator, logger *logrus.Logger) *Pipeline {
	return &Pipeline{
		products: products,
		log:      logger.WithField("component", "importer"),
	}
}

// Preview parses the file and returns up to PreviewRows mapped drafts
// for user review. Re-selecting a file simply re-parses from scratch.
func (p *Pipeline) Preview(filename string, file io.Reader) ([]*models.Product, error) {
	headers, rows, err := parseFile(filename, file)
	if err != nil {
		return nil, err
	}

	plan := BuildPlan(headers)
	limit := len(rows)
	if limit > PreviewRows {
		limit = PreviewRows
	}

	drafts := make([]*models.Product, 0, limit)
	for _, row := range rows[:limit] {
		drafts = append(drafts, plan.MapRow(row))
	}
	return drafts, nil
}

// Start parses the file synchronously, then launches the batched create
// loop in the background and returns the initial run snapshot. A second
// Start while a run is processing fails with ErrImportRunning.
func (p *Pipeline) Start(filename string, file io.Reader, batchSize int) (models.ImportRun, error) {
	headers, rows, err := parseFile(filename, file)
	if err != nil {
		return models.ImportRun{}, err
	}
	if len(rows) == 0 {
		return models.ImportRun{}, errors.New("importer: the file contains no data rows")
	}
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	plan := BuildPlan(headers)

	p.mu.Lock()
	if p.run != nil && p.run.Status == models.ImportStatusProcessing {
		p.mu.Unlock()
		return models.ImportRun{}, ErrImportRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	run := &models.ImportRun{
		ID:        uuid.NewString(),
		Status:    models.ImportStatusProcessing,
		TotalRows: len(rows),
		BatchSize: batchSize,
		StartedAt: time.Now().UTC(),
	}
	p.run = run
	p.cancel = cancel
	p.done = make(chan struct{})
	snapshot := *run
	p.mu.Unlock()

	p.log.WithFields(logrus.Fields{"run": run.ID, "rows": run.TotalRows, "batchSize": batchSize}).Info("Import run started")
	go p.process(ctx, plan, rows, batchSize)

	return snapshot, nil
}

// Status returns a snapshot of the most recent run, which may still be
// processing. The bool is false when no run has happened yet.
func (p *Pipeline) Status() (models.ImportRun, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.run == nil {
		return models.ImportRun{}, false
	}
	return *p.run, true
}

// Cancel requests cancellation of the in-flight run. The run stops
// after the current batch settles. Returns false when nothing is
// processing.
func (p *Pipeline) Cancel() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.run == nil || p.run.Status != models.ImportStatusProcessing || p.cancel == nil {
		return false
	}
	p.cancel()
	return true
}

// Wait blocks until the current run finishes. Used by shutdown and
// tests; returns immediately when nothing is running.
func (p *Pipeline) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// process drives the batch loop. Batches are strictly sequential;
// requests within a batch run concurrently and may complete in any
// order. Per-row failures only increment the counter - the run never
// stops early for them and no row is retried.
func (p *Pipeline) process(ctx context.Context, plan *Plan, rows []map[string]string, batchSize int) {
	total := len(rows)
	cancelled := false

	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		batch := rows[start:end]

		var wg sync.WaitGroup
		var batchMu sync.Mutex
		succeeded, failed := 0, 0

		for _, row := range batch {
			draft := plan.MapRow(row)
			if draft.Name == "" {
				// Required field missing: rejected locally, no network call.
				batchMu.Lock()
				failed++
				batchMu.Unlock()
				continue
			}

			wg.Add(1)
			go func(draft *models.Product) {
				defer wg.Done()
				_, err := p.products.Create(ctx, draft)
				batchMu.Lock()
				if err != nil {
					failed++
				} else {
					succeeded++
				}
				batchMu.Unlock()
			}(draft)
		}
		wg.Wait()

		p.mu.Lock()
		p.run.Succeeded += succeeded
		p.run.Failed += failed
		p.run.Processed = end
		p.run.Progress = int(math.Round(float64(end) / float64(total) * 100))
		snapshot := *p.run
		p.mu.Unlock()

		if p.OnProgress != nil {
			p.OnProgress(snapshot)
		}

		if ctx.Err() != nil {
			cancelled = true
			break
		}
	}

	p.mu.Lock()
	now := time.Now().UTC()
	p.run.FinishedAt = &now
	if cancelled {
		p.run.Status = models.ImportStatusCancelled
	} else {
		p.run.Status = models.ImportStatusCompleted
	}
	final := *p.run
	p.cancel = nil
	done := p.done
	p.mu.Unlock()

	p.log.WithFields(logrus.Fields{
		"run":       final.ID,
		"status":    final.Status,
		"succeeded": final.Succeeded,
		"failed":    final.Failed,
	}).Info("Import run finished")
	close(done)
}

// parseFile reads the whole file into header-keyed rows. The first line
// is the header row; blank lines are skipped. Headers are lowercased so
// lookups match the template regardless of capitalization.
func parseFile(filename string, file io.Reader) ([]string, []map[string]string, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return parseXLSX(file)
	}
	return parseCSV(file)
}

func parseCSV(file io.Reader) ([]string, []map[string]string, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	normalizeHeaders(headers)

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		if row, ok := recordToRow(headers, record); ok {
			rows = append(rows, row)
		}
	}
	return headers, rows, nil
}

func parseXLSX(file io.Reader) ([]string, []map[string]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("no sheets found in Excel file")
	}
	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, "Products") {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(excelRows) == 0 {
		return nil, nil, errors.New("file must have a header row")
	}

	headers := excelRows[0]
	normalizeHeaders(headers)

	var rows []map[string]string
	for _, excelRow := range excelRows[1:] {
		if row, ok := recordToRow(headers, excelRow); ok {
			rows = append(rows, row)
		}
	}
	return headers, rows, nil
}

func normalizeHeaders(headers []string) {
	for i := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(headers[i]))
	}
}

// recordToRow maps one record onto the headers. Returns false for blank
// lines.
func recordToRow(headers, record []string) (map[string]string, bool) {
	row := make(map[string]string, len(headers))
	empty := true
	for i, value := range record {
		if i >= len(headers) {
			break
		}
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			empty = false
		}
		row[headers[i]] = trimmed
	}
	if empty {
		return nil, false
	}
	return row, true
}
