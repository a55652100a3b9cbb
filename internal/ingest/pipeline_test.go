package ingest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rcman/internal/config"
	"rcman/internal/domain"
)

// buildWorkbook renders rows into an in-memory xlsx file.
func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestPipeline_UnsupportedExtension(t *testing.T) {
	p := NewPipeline(nil)

	_, err := p.Analyze("report.txt", []byte("x"))

	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestPipeline_CorruptWorkbook(t *testing.T) {
	p := NewPipeline(nil)

	_, err := p.Analyze("report.xlsx", []byte("not a zip archive"))

	assert.ErrorIs(t, err, domain.ErrUnreadableFile)
}

func TestPipeline_TwoColumnSheet(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Area", "Risk/What Can Go Wrong"},
		{"Payroll", "Unauthorized access to payroll master"},
		{"HR", "Minor delay in leave approval"},
	})
	p := NewPipeline(nil)

	res, err := p.Analyze("rcm.xlsx", data)
	require.NoError(t, err)
	a := res.Analysis

	require.Len(t, a.Objectives, 2)

	first := a.Objectives[0]
	assert.Equal(t, "Payroll", first.Department)
	assert.Equal(t, domain.RiskHigh, first.RiskLevel)
	assert.True(t, first.IsGap)

	second := a.Objectives[1]
	assert.Equal(t, "HR", second.Department)
	assert.Equal(t, domain.RiskLow, second.RiskLevel)
	assert.False(t, second.IsGap)

	assert.Equal(t, domain.RiskDistribution{
		domain.RiskHigh:   1,
		domain.RiskMedium: 0,
		domain.RiskLow:    1,
	}, a.RiskDistribution)
	assert.Equal(t, []string{"Payroll", "HR"}, a.Departments)
	assert.Equal(t, 2, a.TotalControls)
	assert.Equal(t, 1, a.ControlGaps)
}

func TestPipeline_SheetWithFewerThanThreeRows(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Area", "Risk"},
		{"Payroll", "Unauthorized change"},
	})
	p := NewPipeline(nil)

	res, err := p.Analyze("rcm.xlsx", data)
	require.NoError(t, err)

	assert.Empty(t, res.Analysis.Objectives)
}

func TestPipeline_EmptyWorkbookGetsDefaultDepartments(t *testing.T) {
	f := excelize.NewFile()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	p := NewPipeline(nil)

	res, err := p.Analyze("empty.xlsx", buf.Bytes())
	require.NoError(t, err)
	a := res.Analysis

	assert.Equal(t, config.DefaultDepartments, a.Departments)
	assert.Equal(t, "N/A", a.RiskScore)
	for _, dept := range a.Departments {
		for _, cat := range domain.RiskCategories {
			assert.Equal(t, 1, a.DepartmentRisks[dept][cat], "%s/%s", dept, cat)
		}
	}
}

// fallbackSheet builds a workbook whose first row only the fallback pass can
// read, followed by a structured header and n extractable data rows.
func fallbackSheet(t *testing.T, n int) []byte {
	rows := [][]interface{}{
		{"Payroll Department", "Review of timesheet details", "Incorrect data entry"},
		{"Area", "Control Objective", "Risk/What Can Go Wrong"},
	}
	for i := 0; i < n; i++ {
		rows = append(rows, []interface{}{
			"HR",
			fmt.Sprintf("Salaries approved before disbursement %d", i),
			"Major misstatement in reports",
		})
	}
	return buildWorkbook(t, rows)
}

func TestPipeline_FallbackRunsBelowThreshold(t *testing.T) {
	p := NewPipeline(nil)

	res, err := p.Analyze("rcm.xlsx", fallbackSheet(t, 4))
	require.NoError(t, err)

	// 4 structured records plus the one the fallback pass recovers.
	assert.Len(t, res.Analysis.Objectives, 5)
	assert.Contains(t, res.Analysis.Departments, "Payroll Department")
}

func TestPipeline_FallbackSkippedAtThreshold(t *testing.T) {
	p := NewPipeline(nil)

	res, err := p.Analyze("rcm.xlsx", fallbackSheet(t, 5))
	require.NoError(t, err)

	assert.Len(t, res.Analysis.Objectives, 5)
	assert.NotContains(t, res.Analysis.Departments, "Payroll Department")
}

func TestPipeline_ConfigOverridesThreshold(t *testing.T) {
	p := NewPipeline(&config.ExtractConfig{MinObjectives: 2})

	res, err := p.Analyze("rcm.xlsx", fallbackSheet(t, 4))
	require.NoError(t, err)

	// Structured pass met the lowered threshold, so the fallback row stays out.
	assert.Len(t, res.Analysis.Objectives, 4)
}

func TestPipeline_RiskTypeTagging(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Area", "Control Objective", "Risk/What Can Go Wrong"},
		{"Compensation", "Salary payments reconciled monthly", "Unauthorized salary disbursement"},
		{"HR", "Staffing records maintained", "Stale records"},
	})
	p := NewPipeline(nil)

	res, err := p.Analyze("rcm.xlsx", data)
	require.NoError(t, err)
	a := res.Analysis

	require.Len(t, a.Objectives, 2)
	assert.Contains(t, a.Objectives[0].RiskTypes, "Financial")
	assert.Contains(t, a.Objectives[0].RiskTypes, "Fraud")
	assert.GreaterOrEqual(t, a.RiskTypeCounts["Financial"], 1)
}
