package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rcman/internal/domain"
)

func sampleAnalysis() *domain.Analysis {
	return &domain.Analysis{
		FileName:    "rcm_finance.xlsx",
		FileKind:    domain.FileKindExcel,
		Departments: []string{"Finance", "IT"},
		Objectives: []domain.ControlObjective{
			{
				Department:        "Finance",
				Objective:         "Invoices approved before payment",
				WhatCanGoWrong:    "Unauthorized payments processed",
				RiskLevel:         domain.RiskHigh,
				ControlActivities: "Two-step approval in the ERP",
				IsGap:             true,
				GapDetails:        "No secondary approver configured",
				ProposedControl:   "Enable four-eyes approval",
			},
			{
				Department:     "IT",
				Objective:      "Backups verified weekly",
				WhatCanGoWrong: "Database corruption goes unnoticed",
				RiskLevel:      domain.RiskMedium,
			},
		},
		Gaps: []domain.Gap{
			{
				Department:       "Finance",
				ControlObjective: "Invoices approved before payment",
				GapTitle:         "No secondary approver configured",
				Description:      "No secondary approver configured",
				RiskImpact:       "Unauthorized payments processed",
				ProposedSolution: "Enable four-eyes approval",
			},
		},
		RiskDistribution: domain.RiskDistribution{
			domain.RiskHigh:   1,
			domain.RiskMedium: 1,
			domain.RiskLow:    0,
		},
		DepartmentRisks: map[string]domain.RiskProfile{
			"Finance": {
				domain.CategoryFinancial:     4,
				domain.CategoryOperational:   3,
				domain.CategoryCompliance:    1,
				domain.CategoryStrategic:     1,
				domain.CategoryTechnological: 1,
			},
			"IT": {
				domain.CategoryFinancial:     1,
				domain.CategoryOperational:   3,
				domain.CategoryCompliance:    1,
				domain.CategoryStrategic:     1,
				domain.CategoryTechnological: 4,
			},
		},
		RiskScore: "8.3",
		Recommendations: []domain.Recommendation{
			{
				Department:  "Finance",
				Title:       "Strengthen payment approvals",
				Description: "Configure a mandatory second approver for payments above threshold.",
				Impact:      "Reduced fraud exposure",
				Priority:    "High",
			},
		},
	}
}

func TestBuildWorkbook_Sheets(t *testing.T) {
	f, err := BuildWorkbook(sampleAnalysis())
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"Risk Summary",
		"Control Objectives",
		"Gaps",
		"Department Risk Analysis",
		"Recommendations",
	}, f.GetSheetList())
}

func TestBuildWorkbook_SummarySheet(t *testing.T) {
	f, err := BuildWorkbook(sampleAnalysis())
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Risk Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Risk Control Matrix Analysis Summary", title)

	depts, err := f.GetCellValue("Risk Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Finance, IT", depts)

	high, err := f.GetCellValue("Risk Summary", "B5")
	require.NoError(t, err)
	assert.Equal(t, "1", high)

	low, err := f.GetCellValue("Risk Summary", "B7")
	require.NoError(t, err)
	assert.Equal(t, "0", low)

	score, err := f.GetCellValue("Risk Summary", "B9")
	require.NoError(t, err)
	assert.Equal(t, "8.3", score)
}

func TestBuildWorkbook_ObjectiveRows(t *testing.T) {
	f, err := BuildWorkbook(sampleAnalysis())
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Control Objectives")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, objectiveHeaders, rows[0])
	assert.Equal(t, "Finance", rows[1][0])
	assert.Equal(t, "High", rows[1][3])
	assert.Equal(t, "Yes", rows[1][5])
	assert.Equal(t, "Enable four-eyes approval", rows[1][7])

	// Blank activities get a generated description keyed off the risk text.
	assert.Contains(t, rows[2][4], "database")
	assert.Contains(t, rows[2][7], "database activity monitoring")
}

func TestBuildWorkbook_DepartmentRiskLevels(t *testing.T) {
	f, err := BuildWorkbook(sampleAnalysis())
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Department Risk Analysis")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Finance", rows[1][0])
	assert.Equal(t, "High", rows[1][1])   // Financial = 4
	assert.Equal(t, "Medium", rows[1][2]) // Operational = 3
	assert.Equal(t, "Low", rows[1][3])    // Compliance = 1
	assert.Equal(t, "Medium", rows[1][6]) // avg 2.0

	assert.Equal(t, "IT", rows[2][0])
	assert.Equal(t, "High", rows[2][5]) // Technological = 4
}

func TestBuildWorkbook_Recommendations(t *testing.T) {
	f, err := BuildWorkbook(sampleAnalysis())
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Recommendations")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, recommendationHeaders, rows[0])
	assert.Equal(t, "Finance", rows[1][0])
	assert.Equal(t, "High", rows[1][2])
	assert.Equal(t, "Reduced fraud exposure", rows[1][3])
}

func TestWriteWorkbook_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(sampleAnalysis(), &buf))
	require.NotZero(t, buf.Len())

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Len(t, f.GetSheetList(), 5)
}
