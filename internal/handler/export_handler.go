package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rcman/internal/export"
	"rcman/internal/service"
)

// ExportHandler serves downloadable renderings of stored analyses.
type ExportHandler struct {
	analysisService service.AnalysisService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(analysisService service.AnalysisService) *ExportHandler {
	return &ExportHandler{analysisService: analysisService}
}

// CSV handles GET /api/v1/analyses/:id/export/csv
func (h *ExportHandler) CSV(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	analysis, err := h.analysisService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	buf.Write(export.BOM)
	w := export.NewCSVWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		HandleError(c, err)
		return
	}
	if err := w.WriteObjectives(analysis.Objectives); err != nil {
		HandleError(c, err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		HandleError(c, err)
		return
	}

	sendAttachment(c, export.BuildFilename(analysis.FileName, "csv"), "text/csv; charset=utf-8", buf.Bytes())
}

// XLSX handles GET /api/v1/analyses/:id/export/xlsx
func (h *ExportHandler) XLSX(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	analysis, err := h.analysisService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(analysis, &buf); err != nil {
		HandleError(c, err)
		return
	}

	sendAttachment(c, export.BuildFilename(analysis.FileName, "xlsx"),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// Summary handles GET /api/v1/analyses/:id/export/summary
func (h *ExportHandler) Summary(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	analysis, err := h.analysisService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	text := export.ExecutiveSummary(analysis, time.Now())
	sendAttachment(c, export.BuildFilename(analysis.FileName, "txt"), "text/plain; charset=utf-8", []byte(text))
}

func sendAttachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}
