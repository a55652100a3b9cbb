package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rcman/internal/config"
	"rcman/internal/domain"
	"rcman/internal/router"
	"rcman/internal/service"
	"rcman/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(svc *mocks.MockAnalysisService) *gin.Engine {
	cfg := &config.Config{}
	return router.New(cfg, nil, svc)
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestCreateAnalysis(t *testing.T) {
	svc := new(mocks.MockAnalysisService)
	analysis := &domain.Analysis{
		ID:            uuid.New(),
		FileName:      "rcm.xlsx",
		FileKind:      domain.FileKindExcel,
		TotalControls: 3,
		RiskScore:     "6.7",
	}
	svc.On("Analyze", mock.Anything, mock.MatchedBy(func(in *service.AnalyzeInput) bool {
		return in.FileName == "rcm.xlsx" && len(in.Data) > 0
	})).Return(analysis, nil)

	body, contentType := multipartUpload(t, "file", "rcm.xlsx", []byte("workbook bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope["success"])
	data := envelope["data"].(map[string]any)
	assert.Equal(t, "rcm.xlsx", data["file_name"])
	assert.Equal(t, "6.7", data["risk_score"])
}

func TestCreateAnalysis_MissingFile(t *testing.T) {
	svc := new(mocks.MockAnalysisService)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	errObj := envelope["error"].(map[string]any)
	assert.Equal(t, "MISSING_FILE", errObj["code"])
	svc.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
}

func TestCreateAnalysis_UnsupportedFormat(t *testing.T) {
	svc := new(mocks.MockAnalysisService)
	svc.On("Analyze", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("wrapped: %w", domain.ErrUnsupportedFormat))

	body, contentType := multipartUpload(t, "file", "notes.txt", []byte("text"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec)
	errObj := envelope["error"].(map[string]any)
	assert.Equal(t, "UNSUPPORTED_FORMAT", errObj["code"])
}

func TestGetAnalysis_NotFound(t *testing.T) {
	svc := new(mocks.MockAnalysisService)
	id := uuid.New()
	svc.On("GetByID", mock.Anything, id).Return(nil, domain.ErrAnalysisNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+id.String(), nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	envelope := decodeEnvelope(t, rec)
	errObj := envelope["error"].(map[string]any)
	assert.Equal(t, "ANALYSIS_NOT_FOUND", errObj["code"])
}

func TestGetAnalysis_InvalidID(t *testing.T) {
	svc := new(mocks.MockAnalysisService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestListAnalyses_Pagination(t *testing.T) {
	svc := new(mocks.MockAnalysisService)
	summaries := []domain.AnalysisSummary{{ID: uuid.New(), FileName: "a.csv"}}
	svc.On("List", mock.Anything, 10, 5).Return(summaries, 42, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses?offset=10&limit=5", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	meta := envelope["meta"].(map[string]any)
	assert.Equal(t, float64(42), meta["total"])
	assert.Equal(t, float64(10), meta["offset"])
}

func TestSearchAnalysis_EmptyQuery(t *testing.T) {
	svc := new(mocks.MockAnalysisService)
	id := uuid.New()
	svc.On("Search", mock.Anything, id, "", 5).Return(nil, domain.ErrEmptyQuery)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+id.String()+"/search", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchAnalysis_Unavailable(t *testing.T) {
	svc := new(mocks.MockAnalysisService)
	id := uuid.New()
	svc.On("Search", mock.Anything, id, "payroll", 5).Return(nil, domain.ErrSearchUnavailable)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+id.String()+"/search?q=payroll", nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDeleteAnalysis(t *testing.T) {
	svc := new(mocks.MockAnalysisService)
	id := uuid.New()
	svc.On("Delete", mock.Anything, id).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/analyses/"+id.String(), nil)
	rec := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestAPIKeyAuth(t *testing.T) {
	svc := new(mocks.MockAnalysisService)
	svc.On("List", mock.Anything, 0, 20).Return([]domain.AnalysisSummary{}, 0, nil)

	cfg := &config.Config{}
	cfg.Auth.APIKey = "sekrit"
	r := router.New(cfg, nil, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil)
	req.Header.Set("X-API-Key", "sekrit")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health endpoints stay open.
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
