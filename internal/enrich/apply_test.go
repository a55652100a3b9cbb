package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rcman/internal/domain"
	"rcman/internal/ingest"
)

func tabularResult() *ingest.Result {
	return &ingest.Result{
		Analysis: &domain.Analysis{
			FileName:    "rcm.xlsx",
			FileKind:    domain.FileKindExcel,
			Departments: []string{"Payroll", "HR"},
			Objectives: []domain.ControlObjective{
				{Department: "Payroll", Objective: "Salaries verified", WhatCanGoWrong: "Incorrect pay", RiskLevel: domain.RiskHigh},
			},
			DepartmentRisks: map[string]domain.RiskProfile{
				"Payroll": {domain.CategoryFinancial: 4, domain.CategoryOperational: 3, domain.CategoryCompliance: 1, domain.CategoryStrategic: 1, domain.CategoryTechnological: 1},
				"HR":      {domain.CategoryFinancial: 1, domain.CategoryOperational: 1, domain.CategoryCompliance: 1, domain.CategoryStrategic: 1, domain.CategoryTechnological: 1},
			},
			TotalControls: 1,
		},
		Sheets: []ingest.Sheet{{Name: "Sheet1", Columns: []string{"Area"}, Rows: [][]string{{"Payroll"}}}},
	}
}

const tableResponse = "```json\n" + `{
  "departments": [
    {
      "name": "Payroll",
      "overall_risk_level": "High",
      "key_risks": ["Unauthorized master changes"],
      "risk_analysis": {
        "Financial": ["Incorrect disbursements"],
        "Operational": []
      },
      "control_gaps": [
        {"gap_title": "No maker-checker on master edits", "impact": "Fraudulent payments", "recommendation": "Enforce dual approval"}
      ],
      "summary": "High financial exposure."
    }
  ],
  "overall_recommendations": [
    {"title": "Automate payroll reconciliation", "priority": "High", "description": "Reconcile monthly.", "impact": "Fewer errors"}
  ]
}` + "\n```"

func TestEnrichAnalysis_Tabular(t *testing.T) {
	res := tabularResult()
	svc := NewService(&stubEnricher{out: tableResponse, model: "model-x"}, 0)

	err := svc.EnrichAnalysis(context.Background(), res)
	require.NoError(t, err)
	a := res.Analysis

	assert.True(t, a.Enriched)
	assert.Equal(t, "model-x", a.EnrichmentModel)

	payroll := a.DepartmentAnalyses["Payroll"]
	assert.Equal(t, domain.RiskHigh, payroll.OverallRiskLevel)
	assert.Equal(t, []string{"Unauthorized master changes"}, payroll.KeyRisks)
	assert.Equal(t, 4, payroll.RiskCategories[domain.CategoryFinancial])
	assert.Equal(t, 2, payroll.RiskCategories[domain.CategoryOperational])
	assert.Equal(t, 3, payroll.RiskCategories[domain.CategoryCompliance])

	// DepartmentRisks is kept in sync with enriched profiles.
	assert.Equal(t, payroll.RiskCategories, a.DepartmentRisks["Payroll"])

	// HR was missing from the model output and received a default entry.
	hr, ok := a.DepartmentAnalyses["HR"]
	require.True(t, ok)
	assert.Equal(t, domain.RiskMedium, hr.OverallRiskLevel)

	require.Len(t, a.Gaps, 1)
	assert.Equal(t, "No maker-checker on master edits", a.Gaps[0].GapTitle)
	assert.Equal(t, "Enforce dual approval", a.Gaps[0].ProposedSolution)
	assert.Equal(t, 1, a.ControlGaps)

	require.Len(t, a.Recommendations, 1)
	assert.Equal(t, "Automate payroll reconciliation", a.Recommendations[0].Title)
}

func TestEnrichAnalysis_TabularUnparseableFallsBackLocally(t *testing.T) {
	res := tabularResult()
	svc := NewService(&stubEnricher{out: "I could not produce JSON, sorry."}, 0)

	err := svc.EnrichAnalysis(context.Background(), res)
	require.NoError(t, err)
	a := res.Analysis

	assert.False(t, a.Enriched)
	require.Contains(t, a.DepartmentAnalyses, "Payroll")
	require.Contains(t, a.DepartmentAnalyses, "HR")
	assert.NotEmpty(t, a.DepartmentAnalyses["Payroll"].KeyRisks)
	assert.Len(t, a.Recommendations, 2)
}

func TestEnrichAnalysis_TransportErrorStillFallsBack(t *testing.T) {
	res := tabularResult()
	svc := NewService(&stubEnricher{err: errors.New("connection refused")}, 0)

	err := svc.EnrichAnalysis(context.Background(), res)

	require.Error(t, err)
	assert.Contains(t, res.Analysis.DepartmentAnalyses, "Payroll")
	assert.NotEmpty(t, res.Analysis.Recommendations)
}

const rawTextResponse = `{
  "departments": ["Payroll"],
  "control_objectives": [
    {"department": "Payroll", "objective": "Salaries verified", "what_can_go_wrong": "Incorrect pay", "risk_level": "High", "is_gap": true, "gap_details": "No review"}
  ],
  "gaps": [
    {"department": "Payroll", "gap_title": "No review", "description": "Payroll runs unreviewed"}
  ],
  "department_risks": {
    "Payroll": {
      "overall_risk_level": "High",
      "risk_categories": {"Financial": 4, "Operational": 3, "Compliance": 2, "Strategic": 2, "Technological": 2},
      "key_risks": ["Incorrect pay"],
      "summary": "Needs review controls."
    }
  }
}`

func TestEnrichAnalysis_RawText(t *testing.T) {
	res := &ingest.Result{
		Analysis: &domain.Analysis{
			FileName:           "rcm.pdf",
			FileKind:           domain.FileKindPDF,
			Departments:        []string{"Finance", "IT", "Operations", "HR"},
			RequiresEnrichment: true,
			ExtractedText:      "Payroll controls...",
			RiskScore:          "N/A",
		},
	}
	svc := NewService(&stubEnricher{out: rawTextResponse, model: "model-x"}, 0)

	err := svc.EnrichAnalysis(context.Background(), res)
	require.NoError(t, err)
	a := res.Analysis

	assert.False(t, a.RequiresEnrichment)
	assert.True(t, a.Enriched)
	assert.Equal(t, []string{"Payroll"}, a.Departments)
	assert.Equal(t, 1, a.TotalControls)
	assert.Equal(t, 1, a.ControlGaps)
	assert.Equal(t, 1, a.RiskDistribution[domain.RiskHigh])
	assert.Equal(t, "10.0", a.RiskScore)
	assert.Equal(t, 4, a.DepartmentRisks["Payroll"][domain.CategoryFinancial])
	assert.Equal(t, domain.RiskHigh, a.DepartmentAnalyses["Payroll"].OverallRiskLevel)
	assert.NotEmpty(t, a.Recommendations)
}

func TestEnrichAnalysis_RawTextParseFailure(t *testing.T) {
	res := &ingest.Result{
		Analysis: &domain.Analysis{
			FileKind:           domain.FileKindPDF,
			RequiresEnrichment: true,
			ExtractedText:      "text",
		},
	}
	svc := NewService(&stubEnricher{out: "not json"}, 0)

	err := svc.EnrichAnalysis(context.Background(), res)

	require.Error(t, err)
	assert.True(t, res.Analysis.RequiresEnrichment)
	assert.False(t, res.Analysis.Enriched)
}

func TestBuildRawTextPrompt_Truncates(t *testing.T) {
	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}

	prompt := BuildRawTextPrompt(string(long), 10)

	assert.Contains(t, prompt, "aaaaaaaaaa...")
	assert.NotContains(t, prompt, string(long))
}
