package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rcman/internal/domain"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 8)
	assert.Equal(t, "Department", row[0])
	assert.Equal(t, "Risk Level", row[3])
	assert.Equal(t, "Proposed Control", row[7])
}

func TestWriteObjectives(t *testing.T) {
	objectives := []domain.ControlObjective{
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
			Department:     "HR",
			Objective:      "Timesheets reviewed monthly",
			WhatCanGoWrong: "Overpayment of salaries",
			RiskLevel:      domain.RiskLow,
		},
	}

	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	require.NoError(t, w.WriteObjectives(objectives))
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Finance", rows[0][0])
	assert.Equal(t, "Invoices approved before payment", rows[0][1])
	assert.Equal(t, "Unauthorized payments processed", rows[0][2])
	assert.Equal(t, "High", rows[0][3])
	assert.Equal(t, "Two-step approval in the ERP", rows[0][4])
	assert.Equal(t, "Yes", rows[0][5])
	assert.Equal(t, "No secondary approver configured", rows[0][6])
	assert.Equal(t, "Enable four-eyes approval", rows[0][7])

	assert.Equal(t, "HR", rows[1][0])
	assert.Equal(t, "Low", rows[1][3])
	assert.Equal(t, "No", rows[1][5])
	assert.Empty(t, rows[1][6])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Q3 Risk Control Matrix", "Q3_Risk_Control_Matrix"},
		{"special chars", "FY 2024-25 / RCM (Oct)", "FY_2024-25_RCM_Oct"},
		{"hyphens and underscores preserved", "rcm-finance_2025", "rcm-finance_2025"},
		{"consecutive underscores collapsed", "rcm___finance", "rcm_finance"},
		{"leading/trailing cleaned", "  hello  ", "hello"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	today := time.Now().Format("2006-01-02")

	assert.Equal(t, "Q3_RCM_"+today+".csv", BuildFilename("Q3 RCM.xlsx", "csv"))
	assert.Equal(t, "controls_"+today+".xlsx", BuildFilename("controls.csv", "xlsx"))
	assert.Equal(t, "analysis_"+today+".txt", BuildFilename("", "txt"))
}
