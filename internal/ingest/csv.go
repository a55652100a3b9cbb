package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"rcman/internal/domain"
)

// csvField is the standardized record field a CSV column can map to.
type csvField int

const (
	fieldDepartment csvField = iota
	fieldObjective
	fieldRisk
	fieldRiskLevel
	fieldControlActivity
	fieldControlGap
	fieldProposedControl
)

// csvColumnRules map free-form CSV column names onto standardized fields by
// keyword containment. Each field binds to the first matching column.
var csvColumnRules = []struct {
	field    csvField
	keywords []string
}{
	{fieldDepartment, []string{"department", "dept", "function", "area", "business unit"}},
	{fieldObjective, []string{"control objective", "objective", "control obj"}},
	{fieldRisk, []string{"what can go wrong", "risk", "risk description", "potential risk"}},
	{fieldRiskLevel, []string{"risk level", "risk rating", "risk priority", "priority", "severity"}},
	{fieldControlActivity, []string{"control activity", "control", "mitigating control", "control description"}},
	{fieldControlGap, []string{"control/design gap", "gap", "control gap", "design gap"}},
	{fieldProposedControl, []string{"proposed control", "recommendation", "remediation", "action plan"}},
}

// mapCSVColumns binds standardized fields to column positions. Unlike the
// workbook role classifier this walks field-major: for each field, the first
// column whose name matches wins.
func mapCSVColumns(header []string) map[csvField]int {
	mapping := make(map[csvField]int)
	for _, rule := range csvColumnRules {
		for i, col := range header {
			if containsAny(strings.ToLower(col), rule.keywords) {
				mapping[rule.field] = i
				break
			}
		}
	}
	return mapping
}

func (p *Pipeline) analyzeCSV(fileName string, data []byte) (*Result, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnreadableFile, err)
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty csv", domain.ErrUnreadableFile)
	}

	header := make([]string, len(records[0]))
	for i, col := range records[0] {
		header[i] = strings.TrimSpace(col)
	}
	var rows [][]string
	for _, record := range records[1:] {
		if nonEmptyCount(record) == 0 {
			continue
		}
		rows = append(rows, record)
	}

	acc := newAccumulator()
	mapping := mapCSVColumns(header)
	if len(mapping) >= 3 {
		log.Printf("ingest.Pipeline: csv matched %d standardized columns", len(mapping))
		extractCSVRows(rows, mapping, acc)
	}

	if len(acc.objectives) == 0 {
		log.Printf("ingest.Pipeline: no standardized csv columns, trying positional extraction")
		extractCSVPositional(rows, acc)
	}

	analysis := &domain.Analysis{
		FileName:    fileName,
		FileKind:    domain.FileKindCSV,
		Objectives:  acc.objectives,
		Gaps:        acc.gaps,
		Departments: acc.depts,
	}
	finalize(analysis)

	sheets := []Sheet{{Name: "csv", Columns: header, Rows: rows}}
	return &Result{Analysis: analysis, Sheets: sheets}, nil
}

// extractCSVRows pulls records through the standardized column mapping. The
// risk level is carried verbatim from the document; normalization happens
// during aggregation so the distribution still lands on High/Medium/Low.
func extractCSVRows(rows [][]string, mapping map[csvField]int, acc *accumulator) {
	for _, row := range rows {
		if nonEmptyCount(row) < 3 {
			continue
		}

		get := func(field csvField) string {
			c, ok := mapping[field]
			if !ok || c >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[c])
		}

		objective := get(fieldObjective)
		risk := get(fieldRisk)
		if objective == "" && risk == "" {
			continue
		}

		dept := get(fieldDepartment)
		if dept == "" {
			dept = "Unknown"
		}
		if objective == "" {
			objective = "Unknown"
		}
		level := get(fieldRiskLevel)
		if level == "" {
			level = string(domain.RiskMedium)
		}
		gapDetails := get(fieldControlGap)

		obj := domain.ControlObjective{
			Department:        dept,
			Objective:         objective,
			WhatCanGoWrong:    risk,
			RiskLevel:         domain.RiskLevel(level),
			ControlActivities: get(fieldControlActivity),
			IsGap:             gapDetails != "",
			GapDetails:        gapDetails,
			ProposedControl:   get(fieldProposedControl),
		}
		acc.objectives = append(acc.objectives, obj)
		acc.addDepartment(dept)

		if obj.IsGap {
			acc.gaps = append(acc.gaps, domain.Gap{
				Department:       dept,
				ControlObjective: objective,
				GapTitle:         truncateTitle(gapDetails, gapTitleMax),
				Description:      gapDetails,
				RiskImpact:       risk,
				ProposedSolution: obj.ProposedControl,
			})
		}
	}
}

// extractCSVPositional is the last-resort CSV path: treat columns 0..4 as
// objective, risk, control activity, gap details, proposed control. It runs
// only when the standardized mapping yielded nothing, and assigns every
// record to a single "General" department.
func extractCSVPositional(rows [][]string, acc *accumulator) {
	at := func(row []string, i int) string {
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	for _, row := range rows {
		if nonEmptyCount(row) < 3 {
			continue
		}

		objective := at(row, 0)
		if objective == "" {
			objective = "Unknown"
		}
		gapDetails := at(row, 3)

		acc.objectives = append(acc.objectives, domain.ControlObjective{
			Department:        "Unknown",
			Objective:         objective,
			WhatCanGoWrong:    at(row, 1),
			RiskLevel:         domain.RiskMedium,
			ControlActivities: at(row, 2),
			IsGap:             gapDetails != "",
			GapDetails:        gapDetails,
			ProposedControl:   at(row, 4),
		})
		acc.addDepartment("General")
	}
}
