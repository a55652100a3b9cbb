// Package ingest implements the heuristic document-structure inference
// engine: it loads risk-control-matrix documents into a uniform row/column
// representation, locates header rows, infers column roles, extracts control
// objectives and risks, and aggregates department risk profiles.
package ingest

import (
	"fmt"
	"path/filepath"
	"strings"

	"rcman/internal/config"
	"rcman/internal/domain"
)

// Sheet is one tab of a tabular document: ordered rows of cell text beneath
// a row of column labels. Rows may be ragged; labels are not guaranteed
// unique.
type Sheet struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Result is the outcome of one document's extraction. Sheets carries the raw
// tabular data for downstream enrichment prompts and is nil for PDF/DOCX.
type Result struct {
	Analysis *domain.Analysis
	Sheets   []Sheet
}

// Pipeline runs the extraction passes for a single document. It holds only
// configuration; every invocation constructs fresh state, so a Pipeline is
// safe to share.
type Pipeline struct {
	headerScanRows     int
	minObjectives      int
	defaultDepartments []string
}

// NewPipeline creates a Pipeline from extraction config, applying defaults
// for zero values.
func NewPipeline(cfg *config.ExtractConfig) *Pipeline {
	p := &Pipeline{
		headerScanRows:     10,
		minObjectives:      5,
		defaultDepartments: config.DefaultDepartments,
	}
	if cfg == nil {
		return p
	}
	if cfg.HeaderScanRows > 0 {
		p.headerScanRows = cfg.HeaderScanRows
	}
	if cfg.MinObjectives > 0 {
		p.minObjectives = cfg.MinObjectives
	}
	if len(cfg.DefaultDepartments) > 0 {
		p.defaultDepartments = cfg.DefaultDepartments
	}
	return p
}

// Analyze extracts a structured analysis from a document's raw bytes. The
// file extension selects the ingestion branch; unknown extensions fail with
// domain.ErrUnsupportedFormat and unreadable files with a wrapped read error.
func (p *Pipeline) Analyze(fileName string, data []byte) (*Result, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	kind, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("%w: .%s", domain.ErrUnsupportedFormat, ext)
	}

	base := filepath.Base(fileName)
	switch kind {
	case domain.FileKindExcel:
		return p.analyzeExcel(base, data)
	case domain.FileKindCSV:
		return p.analyzeCSV(base, data)
	case domain.FileKindPDF:
		return p.analyzePDF(base, data)
	default:
		return p.analyzeDOCX(base, data)
	}
}

// accumulator collects extraction output across sheets and passes.
// Departments keep first-discovery order.
type accumulator struct {
	objectives []domain.ControlObjective
	gaps       []domain.Gap
	depts      []string
	seen       map[string]bool
}

func newAccumulator() *accumulator {
	return &accumulator{seen: make(map[string]bool)}
}

func (a *accumulator) addDepartment(name string) {
	if name == "" || a.seen[name] {
		return
	}
	a.seen[name] = true
	a.depts = append(a.depts, name)
}

// finalize fills the aggregate fields of an analysis from its extracted
// records.
func finalize(a *domain.Analysis) {
	a.TotalControls = len(a.Objectives)
	a.ControlGaps = len(a.Gaps)
	a.RiskDistribution = BuildRiskDistribution(a.Objectives)
	a.DepartmentRisks = BuildDepartmentRisks(a.Objectives, a.Departments)
	a.RiskScore = ComputeRiskScore(a.RiskDistribution)
}

// containsAny reports whether s contains any of the keywords. Callers are
// expected to lower-case s; keywords are stored lower-case.
func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// nonEmptyCount counts cells with non-whitespace content.
func nonEmptyCount(row []string) int {
	n := 0
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			n++
		}
	}
	return n
}

// truncateTitle shortens s to max runes, appending an ellipsis when truncated.
func truncateTitle(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
