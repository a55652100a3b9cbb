package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rcman/internal/service"
)

// AnalysisHandler handles document analysis endpoints.
type AnalysisHandler struct {
	analysisService service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// Create handles POST /api/v1/analyses. It accepts a multipart upload in the
// "file" field, runs the extraction pipeline, and returns the stored analysis.
func (h *AnalysisHandler) Create(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return
	}

	analysis, err := h.analysisService.Analyze(c.Request.Context(), &service.AnalyzeInput{
		FileName: header.Filename,
		Data:     data,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, analysis)
}

// List handles GET /api/v1/analyses
func (h *AnalysisHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	summaries, total, err := h.analysisService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, summaries, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Get handles GET /api/v1/analyses/:id
func (h *AnalysisHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	analysis, err := h.analysisService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, analysis)
}

// Search handles GET /api/v1/analyses/:id/search?q=...&limit=...
func (h *AnalysisHandler) Search(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	query := c.Query("q")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	matches, err := h.analysisService.Search(c.Request.Context(), id, query, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, matches)
}

// Delete handles DELETE /api/v1/analyses/:id
func (h *AnalysisHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.analysisService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": id})
}

// parseIDParam parses the :id path parameter. Returns false if invalid
// (error response already written).
func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid analysis id")
		return uuid.Nil, false
	}
	return id, true
}
