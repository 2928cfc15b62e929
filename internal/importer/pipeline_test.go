package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-admin-service/internal/models"
)

// fakeCreator records create calls and can be told to fail or block.
type fakeCreator struct {
	mu      sync.Mutex
	calls   []*models.Product
	err     error
	started chan struct{}
	gate    chan struct{}
}

func (f *fakeCreator) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	f.mu.Lock()
	f.calls = append(f.calls, product)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return product, nil
}

func (f *fakeCreator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func csvFile(rows int) string {
	var b strings.Builder
	b.WriteString("name,sku,regular_price\n")
	for i := 1; i <= rows; i++ {
		fmt.Fprintf(&b, "Product %d,SKU-%03d,9.99\n", i, i)
	}
	return b.String()
}

func TestPipelineRunsInSequentialBatches(t *testing.T) {
	creator := &fakeCreator{}
	pipeline := NewPipeline(creator, testLogger())

	var progressMu sync.Mutex
	var progress []int
	pipeline.OnProgress = func(run models.ImportRun) {
		progressMu.Lock()
		progress = append(progress, run.Progress)
		progressMu.Unlock()
	}

	run, err := pipeline.Start("products.csv", strings.NewReader(csvFile(12)), 5)
	require.NoError(t, err)
	assert.Equal(t, models.ImportStatusProcessing, run.Status)
	assert.Equal(t, 12, run.TotalRows)

	pipeline.Wait()

	final, ok := pipeline.Status()
	require.True(t, ok)
	assert.Equal(t, models.ImportStatusCompleted, final.Status)
	assert.Equal(t, 12, final.Processed)
	assert.Equal(t, 12, final.Succeeded)
	assert.Equal(t, 0, final.Failed)
	assert.Equal(t, 100, final.Progress)
	assert.NotNil(t, final.FinishedAt)
	assert.Equal(t, 12, creator.callCount())

	progressMu.Lock()
	defer progressMu.Unlock()
	assert.Equal(t, []int{42, 83, 100}, progress)
}

func TestPipelineCountsFailures(t *testing.T) {
	creator := &fakeCreator{err: errors.New("store rejected the product")}
	pipeline := NewPipeline(creator, testLogger())

	_, err := pipeline.Start("products.csv", strings.NewReader(csvFile(3)), 5)
	require.NoError(t, err)
	pipeline.Wait()

	final, _ := pipeline.Status()
	assert.Equal(t, models.ImportStatusCompleted, final.Status)
	assert.Equal(t, 3, final.Processed)
	assert.Equal(t, 0, final.Succeeded)
	assert.Equal(t, 3, final.Failed)
}

func TestPipelineRejectsNamelessRowsLocally(t *testing.T) {
	creator := &fakeCreator{}
	pipeline := NewPipeline(creator, testLogger())

	file := "name,sku\nWidget,WID-001\n,NO-NAME\nGadget,GAD-001\n"
	_, err := pipeline.Start("products.csv", strings.NewReader(file), 5)
	require.NoError(t, err)
	pipeline.Wait()

	final, _ := pipeline.Status()
	assert.Equal(t, 2, final.Succeeded)
	assert.Equal(t, 1, final.Failed)
	// The nameless row never reaches the store
	assert.Equal(t, 2, creator.callCount())
}

func TestPipelineRejectsConcurrentRuns(t *testing.T) {
	creator := &fakeCreator{gate: make(chan struct{})}
	pipeline := NewPipeline(creator, testLogger())

	_, err := pipeline.Start("products.csv", strings.NewReader(csvFile(12)), 5)
	require.NoError(t, err)

	_, err = pipeline.Start("products.csv", strings.NewReader(csvFile(2)), 5)
	assert.ErrorIs(t, err, ErrImportRunning)

	close(creator.gate)
	pipeline.Wait()

	// With the first run finished a new one is accepted again
	_, err = pipeline.Start("products.csv", strings.NewReader(csvFile(2)), 5)
	require.NoError(t, err)
	pipeline.Wait()
}

func TestPipelineCancelStopsBetweenBatches(t *testing.T) {
	creator := &fakeCreator{
		started: make(chan struct{}, 12),
		gate:    make(chan struct{}),
	}
	pipeline := NewPipeline(creator, testLogger())

	_, err := pipeline.Start("products.csv", strings.NewReader(csvFile(12)), 5)
	require.NoError(t, err)

	// Wait for the whole first batch to be in flight, then cancel
	for i := 0; i < 5; i++ {
		select {
		case <-creator.started:
		case <-time.After(2 * time.Second):
			t.Fatal("first batch never started")
		}
	}
	require.True(t, pipeline.Cancel())
	close(creator.gate)
	pipeline.Wait()

	final, _ := pipeline.Status()
	assert.Equal(t, models.ImportStatusCancelled, final.Status)
	// The in-flight batch settles, later batches never start
	assert.Equal(t, 5, final.Processed)
	assert.Equal(t, 5, creator.callCount())
	assert.NotNil(t, final.FinishedAt)
}

func TestPipelineCancelWithoutRun(t *testing.T) {
	pipeline := NewPipeline(&fakeCreator{}, testLogger())
	assert.False(t, pipeline.Cancel())
}

func TestPipelineRejectsEmptyFile(t *testing.T) {
	pipeline := NewPipeline(&fakeCreator{}, testLogger())

	_, err := pipeline.Start("products.csv", strings.NewReader("name,sku\n"), 5)
	assert.Error(t, err)
}

func TestPreviewReturnsAtMostTenRows(t *testing.T) {
	pipeline := NewPipeline(&fakeCreator{}, testLogger())

	drafts, err := pipeline.Preview("products.csv", strings.NewReader(csvFile(25)))
	require.NoError(t, err)
	require.Len(t, drafts, PreviewRows)
	assert.Equal(t, "Product 1", drafts[0].Name)
	assert.Equal(t, "Product 10", drafts[9].Name)
}

func TestParseCSVSkipsBlankLines(t *testing.T) {
	file := "name,sku\nWidget,WID-001\n,\nGadget,GAD-001\n"
	headers, rows, err := parseCSV(strings.NewReader(file))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "sku"}, headers)
	assert.Len(t, rows, 2)
}
