package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront-admin-service/internal/importer"
	"storefront-admin-service/internal/models"
)

// ImportHandler drives the bulk import pipeline: template download,
// preview, run, progress and cancel.
type ImportHandler struct {
	pipeline     *importer.Pipeline
	batchSize    int
	maxBatchSize int
	log          *logrus.Entry
}

func NewImportHandler(pipeline *importer.Pipeline, batchSize, maxBatchSize int, logger *logrus.Logger) *ImportHandler {
	if batchSize < 1 {
		batchSize = importer.DefaultBatchSize
	}
	return &ImportHandler{
		pipeline:     pipeline,
		batchSize:    batchSize,
		maxBatchSize: maxBatchSize,
		log:          logger.WithField("component", "import_handler"),
	}
}

// GetImportTemplate returns the import template definition or file.
// GET /api/v1/products/import/template?format=csv|xlsx|json
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")

	switch models.ImportFormat(format) {
	case models.ImportFormatCSV:
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", "attachment; filename=products_import_template.csv")
		if err := importer.WriteCSVTemplate(c.Writer); err != nil {
			h.log.WithError(err).Error("Failed to write CSV template")
		}
	case models.ImportFormatXLSX:
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=products_import_template.xlsx")
		if err := importer.WriteXLSXTemplate(c.Writer); err != nil {
			h.log.WithError(err).Error("Failed to write XLSX template")
		}
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "template": importer.Template()})
	}
}

// PreviewImport parses the uploaded file and returns the first mapped
// drafts for review. Selecting a new file just re-parses from scratch.
// POST /api/v1/products/import/preview
func (h *ImportHandler) PreviewImport(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		badRequest(c, "FILE_REQUIRED", "Please upload a CSV or Excel file")
		return
	}
	defer file.Close()

	drafts, err := h.pipeline.Preview(header.Filename, file)
	if err != nil {
		badRequest(c, "PARSE_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "rows": drafts})
}

// RunImport starts a background import run and returns its initial
// snapshot. While a run is processing, a second request is rejected.
// POST /api/v1/products/import
func (h *ImportHandler) RunImport(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		badRequest(c, "FILE_REQUIRED", "Please upload a CSV or Excel file")
		return
	}
	defer file.Close()

	batchSize := h.batchSize
	if bs := c.DefaultPostForm("batchSize", ""); bs != "" {
		if parsed, err := strconv.Atoi(bs); err == nil && parsed > 0 {
			batchSize = parsed
			if h.maxBatchSize > 0 && batchSize > h.maxBatchSize {
				batchSize = h.maxBatchSize
			}
		}
	}

	run, err := h.pipeline.Start(header.Filename, file, batchSize)
	if err != nil {
		if errors.Is(err, importer.ErrImportRunning) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Success: false,
				Error:   models.Error{Code: "IMPORT_RUNNING", Message: err.Error()},
			})
			return
		}
		badRequest(c, "PARSE_ERROR", err.Error())
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true, "run": run})
}

// GetImportStatus reports the latest run snapshot, processing or done.
// GET /api/v1/products/import/status
func (h *ImportHandler) GetImportStatus(c *gin.Context) {
	run, ok := h.pipeline.Status()
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "NO_IMPORT", Message: "No import has been run"},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "run": run})
}

// CancelImport requests cancellation of the in-flight run; the run
// stops once the current batch settles.
// POST /api/v1/products/import/cancel
func (h *ImportHandler) CancelImport(c *gin.Context) {
	if !h.pipeline.Cancel() {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "NO_ACTIVE_IMPORT", Message: "No import run is processing"},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
