package domain

import (
	"time"

	"github.com/google/uuid"
)

// ControlObjective is the canonical extracted record: one control objective
// with its associated risk, inferred severity, and gap status. At least one
// of Objective/WhatCanGoWrong is non-empty.
type ControlObjective struct {
	Department        string    `json:"department"`
	Objective         string    `json:"objective"`
	WhatCanGoWrong    string    `json:"what_can_go_wrong"`
	RiskLevel         RiskLevel `json:"risk_level"`
	ControlActivities string    `json:"control_activities"`
	IsGap             bool      `json:"is_gap"`
	GapDetails        string    `json:"gap_details"`
	ProposedControl   string    `json:"proposed_control"`
	AreaSubprocess    string    `json:"area_subprocess,omitempty"`
	RiskTypes         []string  `json:"risk_types,omitempty"`
}

// Gap is a control deficiency derived from a ControlObjective whose gap flag
// is set.
type Gap struct {
	Department       string `json:"department"`
	ControlObjective string `json:"control_objective"`
	GapTitle         string `json:"gap_title"`
	Description      string `json:"description"`
	RiskImpact       string `json:"risk_impact"`
	ProposedSolution string `json:"proposed_solution"`
	AreaSubprocess   string `json:"area_subprocess,omitempty"`
}

// RiskDistribution counts objectives per risk level. All three levels are
// always present, defaulting to 0.
type RiskDistribution map[RiskLevel]int

// RiskProfile scores a department across the fixed risk categories (0-4).
type RiskProfile map[RiskCategory]int

// DepartmentAnalysis is the enriched per-department assessment produced by
// the enrichment collaborator (or its local fallback).
type DepartmentAnalysis struct {
	OverallRiskLevel RiskLevel           `json:"overall_risk_level"`
	KeyRisks         []string            `json:"key_risks"`
	RiskTypes        map[string][]string `json:"risk_types,omitempty"`
	Summary          string              `json:"summary"`
	RiskCategories   RiskProfile         `json:"risk_categories,omitempty"`
}

// Recommendation is a remediation suggestion, usually department-scoped.
type Recommendation struct {
	Department  string `json:"department,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
	Priority    string `json:"priority"`
}

// Analysis is the finalized record produced by one document's extraction
// pipeline. It is the sole contract with the enrichment and presentation
// collaborators.
type Analysis struct {
	ID         uuid.UUID `json:"id"`
	FileName   string    `json:"file_name"`
	FileKind   FileKind  `json:"file_kind"`
	SheetCount int       `json:"sheet_count,omitempty"`

	Objectives  []ControlObjective `json:"control_objectives"`
	Gaps        []Gap              `json:"gaps"`
	Departments []string           `json:"departments"`

	RiskDistribution RiskDistribution       `json:"risk_distribution"`
	DepartmentRisks  map[string]RiskProfile `json:"department_risks"`
	RiskScore        string                 `json:"risk_score"`

	TotalControls  int            `json:"total_controls"`
	ControlGaps    int            `json:"control_gaps"`
	RiskTypeCounts map[string]int `json:"risk_type_counts,omitempty"`

	// RequiresEnrichment marks documents (PDF/DOCX) whose structure must be
	// recovered by the enrichment collaborator rather than the heuristic pass.
	RequiresEnrichment bool   `json:"requires_enrichment,omitempty"`
	ExtractedText      string `json:"extracted_text,omitempty"`

	DepartmentAnalyses map[string]DepartmentAnalysis `json:"department_analyses,omitempty"`
	Recommendations    []Recommendation              `json:"recommendations,omitempty"`
	Enriched           bool                          `json:"enriched"`
	EnrichmentModel    string                        `json:"enrichment_model,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// AnalysisSummary is the list-view projection of an Analysis.
type AnalysisSummary struct {
	ID            uuid.UUID `db:"id" json:"id"`
	FileName      string    `db:"file_name" json:"file_name"`
	FileKind      FileKind  `db:"file_kind" json:"file_kind"`
	RiskScore     string    `db:"risk_score" json:"risk_score"`
	TotalControls int       `db:"total_controls" json:"total_controls"`
	ControlGaps   int       `db:"control_gaps" json:"control_gaps"`
	Enriched      bool      `db:"enriched" json:"enriched"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Chunk is a text fragment of an analysis prepared for vector indexing.
type Chunk struct {
	ID         uuid.UUID `json:"id"`
	AnalysisID uuid.UUID `json:"analysis_id"`
	Kind       string    `json:"kind"` // control_objective, gap, or text
	Department string    `json:"department,omitempty"`
	RiskLevel  string    `json:"risk_level,omitempty"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"-"`
}

// ChunkMatch is a similarity search hit against indexed chunks.
type ChunkMatch struct {
	Chunk
	Distance float64 `json:"distance"`
}
